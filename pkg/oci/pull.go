/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package oci

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/file"
	layout "oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"

	apperrors "github.com/radius-project/spoke/pkg/errors"
)

// Strategy identifies which pull mechanism materialized an artifact.
type Strategy string

const (
	// StrategyFileStore copies into an ORAS file store, which writes the
	// named layer files directly.
	StrategyFileStore Strategy = "file-store"

	// StrategyLayout copies into an OCI image layout and extracts layer
	// blobs by their title annotation.
	StrategyLayout Strategy = "oci-layout"

	// StrategyFetch resolves the manifest and fetches layer blobs one by
	// one off the repository.
	StrategyFetch Strategy = "manifest-fetch"
)

// Pull fetches the artifact at ref into destDir, attempting the file-store,
// OCI-layout and bare-fetch strategies in order. The first success wins; the
// error of the last failing strategy is returned when all three fail.
func Pull(ctx context.Context, ref, destDir string) (Strategy, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrCodeInvalidRequest, err, "invalid artifact reference %q", ref)
	}
	tagged, ok := named.(reference.Tagged)
	if !ok {
		return "", apperrors.Newf(apperrors.ErrCodeInvalidRequest, "artifact reference %q has no tag", ref)
	}
	tag := tagged.Tag()

	repo, err := remote.NewRepository(reference.TrimNamed(named).String())
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrCodeInvalidRequest, err, "invalid repository in %q", ref)
	}
	repo.Client = authClient(nil)

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	var lastErr error
	for _, strategy := range []Strategy{StrategyFileStore, StrategyLayout, StrategyFetch} {
		var err error
		switch strategy {
		case StrategyFileStore:
			err = pullFileStore(ctx, repo, tag, destDir)
		case StrategyLayout:
			err = pullLayout(ctx, repo, tag, destDir)
		case StrategyFetch:
			err = pullFetch(ctx, repo, tag, destDir)
		}
		if err == nil {
			slog.Debug("artifact pulled", "ref", ref, "strategy", strategy)
			return strategy, nil
		}
		slog.Debug("pull strategy failed", "ref", ref, "strategy", strategy, "error", err)
		lastErr = err
	}
	return "", lastErr
}

func pullFileStore(ctx context.Context, repo *remote.Repository, tag, destDir string) error {
	fs, err := file.New(destDir)
	if err != nil {
		return fmt.Errorf("failed to create file store: %w", err)
	}
	defer func() { _ = fs.Close() }()

	if _, err := oras.Copy(ctx, repo, tag, fs, tag, oras.DefaultCopyOptions); err != nil {
		return fmt.Errorf("file-store copy failed: %w", err)
	}
	return nil
}

func pullLayout(ctx context.Context, repo *remote.Repository, tag, destDir string) error {
	layoutDir, err := os.MkdirTemp(destDir, ".layout-*")
	if err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(layoutDir) }()

	store, err := layout.New(layoutDir)
	if err != nil {
		return fmt.Errorf("failed to create layout store: %w", err)
	}

	desc, err := oras.Copy(ctx, repo, tag, store, tag, oras.DefaultCopyOptions)
	if err != nil {
		return fmt.Errorf("layout copy failed: %w", err)
	}

	return extractLayers(ctx, store, desc, destDir)
}

func pullFetch(ctx context.Context, repo *remote.Repository, tag, destDir string) error {
	desc, rc, err := repo.FetchReference(ctx, tag)
	if err != nil {
		return fmt.Errorf("manifest fetch failed: %w", err)
	}
	defer func() { _ = rc.Close() }()

	manifestBytes, err := content.ReadAll(rc, desc)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest ociv1.Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	for _, lyr := range manifest.Layers {
		blob, err := repo.Blobs().Fetch(ctx, lyr)
		if err != nil {
			return fmt.Errorf("failed to fetch layer %s: %w", lyr.Digest, err)
		}
		err = writeLayer(destDir, lyr, blob)
		_ = blob.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extractLayers writes every layer of the manifest at desc into destDir,
// named by its title annotation.
func extractLayers(ctx context.Context, fetcher content.Fetcher, desc ociv1.Descriptor, destDir string) error {
	manifestBytes, err := content.FetchAll(ctx, fetcher, desc)
	if err != nil {
		return fmt.Errorf("failed to fetch manifest: %w", err)
	}

	var manifest ociv1.Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	for _, lyr := range manifest.Layers {
		blob, err := fetcher.Fetch(ctx, lyr)
		if err != nil {
			return fmt.Errorf("failed to fetch layer %s: %w", lyr.Digest, err)
		}
		err = writeLayer(destDir, lyr, blob)
		_ = blob.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// writeLayer stores one layer blob under its title annotation, falling back
// to the digest hex when untitled. Titles may carry subdirectory paths;
// anything escaping destDir is rejected.
func writeLayer(destDir string, desc ociv1.Descriptor, blob io.Reader) error {
	name := desc.Annotations[ociv1.AnnotationTitle]
	if name == "" {
		name = desc.Digest.Encoded()
	}

	path := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(destDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("layer title %q escapes staging directory", name)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create layer directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create layer file: %w", err)
	}
	if _, err := io.Copy(out, blob); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write layer %s: %w", name, err)
	}
	return out.Close()
}
