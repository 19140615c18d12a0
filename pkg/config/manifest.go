/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/radius-project/spoke/pkg/charts"
	"github.com/radius-project/spoke/pkg/mirror"
)

// Manifest overrides the built-in artifact lists. Lists left empty keep
// their defaults, so a manifest can override just the images, say, without
// repeating the recipe set.
type Manifest struct {
	Recipes []mirror.ArtifactSpec `yaml:"recipes,omitempty"`
	Images  []string              `yaml:"images,omitempty"`
	Charts  []charts.Spec         `yaml:"charts,omitempty"`
}

// LoadManifest reads and validates a YAML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	for i, r := range m.Recipes {
		if r.Source == "" {
			return nil, fmt.Errorf("manifest %s: recipe %d has no source", path, i)
		}
	}
	for i, img := range m.Images {
		if img == "" {
			return nil, fmt.Errorf("manifest %s: image %d is empty", path, i)
		}
	}
	for i, ch := range m.Charts {
		if ch.Ref == "" || ch.Version == "" {
			return nil, fmt.Errorf("manifest %s: chart %d needs ref and version", path, i)
		}
	}

	return &m, nil
}
