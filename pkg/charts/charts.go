/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package charts downloads the Helm charts the offline installer needs,
// using Helm's own downloader so both OCI and classic HTTPS repositories
// work with whatever credentials the operator's Helm config already carries.
package charts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/downloader"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/repo"
	"sigs.k8s.io/yaml"

	"github.com/radius-project/spoke/pkg/checksum"
	apperrors "github.com/radius-project/spoke/pkg/errors"
)

// Spec identifies one chart to fetch. OCI charts set Ref to the full
// `oci://` reference and leave the repo fields empty; classic repo charts
// set Ref to the chart name plus RepoName/RepoURL.
type Spec struct {
	Ref      string `yaml:"ref"`
	Version  string `yaml:"version"`
	RepoName string `yaml:"repoName,omitempty"`
	RepoURL  string `yaml:"repoURL,omitempty"`
}

// chartRef returns the reference the Helm downloader resolves.
func (s Spec) chartRef() string {
	if s.RepoName != "" {
		return s.RepoName + "/" + s.Ref
	}
	return s.Ref
}

// Fetcher downloads chart archives. Repository state (repo file and index
// cache) lives under its own directory inside the work directory, so the
// operator's Helm configuration is never mutated.
type Fetcher struct {
	settings *cli.EnvSettings
}

// NewFetcher creates a Fetcher with repository state under workDir.
func NewFetcher(workDir string) (*Fetcher, error) {
	helmDir := filepath.Join(workDir, ".helm")
	cacheDir := filepath.Join(helmDir, "cache")
	if err := os.MkdirAll(cacheDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create helm cache directory: %w", err)
	}

	settings := cli.New()
	settings.RepositoryConfig = filepath.Join(helmDir, "repositories.yaml")
	settings.RepositoryCache = cacheDir

	return &Fetcher{settings: settings}, nil
}

// Fetch downloads every chart into dir and records checksums alongside the
// archives. Unlike the mirror loops, any failure here is immediately fatal:
// an installer with a missing chart is useless.
func (f *Fetcher) Fetch(ctx context.Context, dir string, specs []Spec) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeChartFetch, "failed to create charts directory", err)
	}

	dl := downloader.ChartDownloader{
		Out:              io.Discard,
		Verify:           downloader.VerifyNever,
		Getters:          getter.All(f.settings),
		RepositoryConfig: f.settings.RepositoryConfig,
		RepositoryCache:  f.settings.RepositoryCache,
	}

	archives := make([]string, 0, len(specs))
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if spec.RepoName != "" {
			if err := f.ensureRepo(spec.RepoName, spec.RepoURL); err != nil {
				return nil, apperrors.Wrapf(apperrors.ErrCodeChartFetch, err,
					"failed to register chart repository %s", spec.RepoName)
			}
		}

		ref := spec.chartRef()
		slog.Info("fetching chart", "ref", ref, "version", spec.Version)
		path, _, err := dl.DownloadTo(ref, spec.Version, dir)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrCodeChartFetch, err,
				"failed to fetch chart %s %s", ref, spec.Version)
		}
		archives = append(archives, path)
	}

	if _, err := checksum.Write(ctx, dir, archives); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeChartFetch, "failed to record chart checksums", err)
	}

	slog.Info("charts fetched", "count", len(archives), "dir", dir)
	return archives, nil
}

// ensureRepo adds a repository entry to the private repo file and refreshes
// its index so the downloader can resolve chart versions.
func (f *Fetcher) ensureRepo(name, url string) error {
	repoFile := repo.NewFile()
	if data, err := os.ReadFile(f.settings.RepositoryConfig); err == nil {
		if err := yaml.Unmarshal(data, repoFile); err != nil {
			return fmt.Errorf("failed to parse repo file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	entry := &repo.Entry{Name: name, URL: url}
	if !repoFile.Has(name) {
		repoFile.Update(entry)
		if err := repoFile.WriteFile(f.settings.RepositoryConfig, 0644); err != nil {
			return fmt.Errorf("failed to write repo file: %w", err)
		}
	}

	chartRepo, err := repo.NewChartRepository(entry, getter.All(f.settings))
	if err != nil {
		return fmt.Errorf("failed to build chart repository: %w", err)
	}
	chartRepo.CachePath = f.settings.RepositoryCache
	if _, err := chartRepo.DownloadIndexFile(); err != nil {
		return fmt.Errorf("failed to download repository index: %w", err)
	}
	return nil
}
