/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package oci pulls recipe artifacts from public registries and republishes
// them to the local mirror registry using ORAS.
//
// # Overview
//
// The package provides three operations:
//   - Derivation: map a public artifact reference to its local registry
//     repository and tag (see RecipeRepository and LocalImageRef).
//   - Pull: fetch an artifact into a staging directory, trying a file-store
//     copy, then an OCI-layout copy, then a bare manifest fetch. Artifact
//     availability and tooling compatibility vary across registries, so the
//     strategies are ordered from most to least convenient and the first
//     success wins.
//   - Push: publish staged files to the local registry as an OCI 1.1
//     artifact annotated with the original source reference.
//
// # Authentication
//
// Remote registries are accessed with Docker credential-store credentials
// (~/.docker/config.json). The local registry is accessed over TLS with the
// mkcert CA pool provisioned for the run.
package oci
