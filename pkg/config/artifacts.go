/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"github.com/radius-project/spoke/pkg/charts"
	"github.com/radius-project/spoke/pkg/mirror"
)

// Pinned versions for the built-in artifact sets.
const (
	radiusVersion  = "0.45"
	recipesVersion = "0.45.0"
	contourVersion = "11.1.1"
)

// recipeNames are the local-dev recipe modules published per resource type.
var recipeNames = []string{
	"rediscaches",
	"mongodatabases",
	"sqldatabases",
	"rabbitmqqueues",
	"pubsubbrokers",
	"statestores",
	"secretstores",
	"extenders",
}

// DefaultRecipes returns the built-in recipe artifact list.
func DefaultRecipes() []mirror.ArtifactSpec {
	specs := make([]mirror.ArtifactSpec, 0, len(recipeNames))
	for _, name := range recipeNames {
		specs = append(specs, mirror.ArtifactSpec{
			Source: "ghcr.io/radius-project/recipes/local-dev/" + name,
			Tag:    recipesVersion,
		})
	}
	return specs
}

// DefaultImages returns the built-in image mirror list: the Radius control
// plane, its contour ingress dependency, and the utility images the
// local-dev recipes and the connectivity check depend on.
func DefaultImages() []string {
	return []string{
		"ghcr.io/radius-project/ucpd:" + radiusVersion,
		"ghcr.io/radius-project/applications-rp:" + radiusVersion,
		"ghcr.io/radius-project/dynamic-rp:" + radiusVersion,
		"ghcr.io/radius-project/controller:" + radiusVersion,
		"ghcr.io/radius-project/deployment-engine:" + radiusVersion,
		"ghcr.io/radius-project/dashboard:" + radiusVersion,
		"ghcr.io/radius-project/bicep:" + radiusVersion,
		"docker.io/library/redis:6.2",
		"docker.io/library/busybox:1.36",
		"docker.io/bitnami/contour:" + contourVersion,
		"docker.io/bitnami/envoy:1.25.1",
		"docker.io/rancher/mirrored-pause:3.6",
	}
}

// DefaultCharts returns the built-in chart list.
func DefaultCharts() []charts.Spec {
	return []charts.Spec{
		{
			Ref:     "oci://ghcr.io/radius-project/helm-chart/radius",
			Version: recipesVersion,
		},
		{
			Ref:      "contour",
			Version:  contourVersion,
			RepoName: "bitnami",
			RepoURL:  "https://charts.bitnami.com/bitnami",
		},
	}
}
