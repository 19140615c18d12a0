/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package oci

import (
	"context"
	"crypto/x509"
	"fmt"
	"path/filepath"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"

	"github.com/radius-project/spoke/pkg/defaults"
)

// PushOptions configures a recipe artifact push to the local registry.
type PushOptions struct {
	// Registry is the local registry address (e.g. "localhost:6060").
	Registry string
	// Repository is the derived repository path (e.g. "recipes/local-dev/rediscaches").
	Repository string
	// Tag is the artifact tag.
	Tag string
	// Root is the staging directory the files live in.
	Root string
	// Files are the staged file paths to include, relative to or under Root.
	Files []string
	// Annotations are attached to the packed manifest. The provenance
	// annotation naming the original source belongs here.
	Annotations map[string]string
	// CAPool trusts the local registry's TLS certificate.
	CAPool *x509.CertPool
}

// PushResult describes a completed push.
type PushResult struct {
	// Digest is the digest of the pushed manifest.
	Digest string
	// Reference is the full local reference (registry/repository:tag).
	Reference string
}

// PushFiles publishes staged files to the local registry as an OCI 1.1
// artifact of the recipe artifact type, tagged and annotated per opts.
func PushFiles(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if opts.Tag == "" {
		return nil, fmt.Errorf("tag is required to push an artifact")
	}
	if len(opts.Files) == 0 {
		return nil, fmt.Errorf("no files to push")
	}

	refString := fmt.Sprintf("%s/%s:%s", opts.Registry, opts.Repository, opts.Tag)
	if _, err := reference.ParseNormalizedNamed(refString); err != nil {
		return nil, fmt.Errorf("invalid local reference %q: %w", refString, err)
	}

	absRoot, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staging directory: %w", err)
	}

	fs, err := file.New(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to create file store: %w", err)
	}
	defer func() { _ = fs.Close() }()

	layers := make([]ociv1.Descriptor, 0, len(opts.Files))
	for _, f := range opts.Files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(absRoot, path)
		}
		name, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil, fmt.Errorf("file %s is outside the staging directory: %w", f, err)
		}
		desc, err := fs.Add(ctx, filepath.ToSlash(name), "", path)
		if err != nil {
			return nil, fmt.Errorf("failed to stage %s: %w", name, err)
		}
		layers = append(layers, desc)
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1,
		defaults.RecipeArtifactType, oras.PackManifestOptions{
			Layers:              layers,
			ManifestAnnotations: opts.Annotations,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to pack manifest: %w", err)
	}

	if err := fs.Tag(ctx, manifestDesc, opts.Tag); err != nil {
		return nil, fmt.Errorf("failed to tag manifest in local store: %w", err)
	}

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", opts.Registry, opts.Repository))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote repository: %w", err)
	}
	repo.Client = authClient(opts.CAPool)

	// Copying by tag overwrites any previous push of the same tag, which is
	// what keeps re-runs of the mirror loop idempotent.
	desc, err := oras.Copy(ctx, fs, opts.Tag, repo, opts.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to push artifact to registry: %w", err)
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: refString,
	}, nil
}
