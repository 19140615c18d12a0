/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package charts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/repo"

	"github.com/radius-project/spoke/pkg/defaults"
)

func TestChartRef(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want string
	}{
		{
			name: "oci reference passes through",
			spec: Spec{Ref: "oci://ghcr.io/radius-project/helm-chart/radius", Version: "0.45.0"},
			want: "oci://ghcr.io/radius-project/helm-chart/radius",
		},
		{
			name: "repo chart joins repo name",
			spec: Spec{Ref: "contour", Version: "11.1.1", RepoName: "bitnami", RepoURL: "https://charts.bitnami.com/bitnami"},
			want: "bitnami/contour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.chartRef(); got != tt.want {
				t.Errorf("chartRef() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewFetcherCreatesState(t *testing.T) {
	workDir := t.TempDir()

	f, err := NewFetcher(workDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(workDir, ".helm", "repositories.yaml"), f.settings.RepositoryConfig)
	info, err := os.Stat(f.settings.RepositoryCache)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFetchFromLocalRepository(t *testing.T) {
	repoDir := t.TempDir()

	ch := &chart.Chart{
		Metadata: &chart.Metadata{
			APIVersion: chart.APIVersionV2,
			Name:       "testchart",
			Version:    "0.1.0",
		},
	}
	_, err := chartutil.Save(ch, repoDir)
	require.NoError(t, err)

	srv := httptest.NewServer(http.FileServer(http.Dir(repoDir)))
	defer srv.Close()

	idx, err := repo.IndexDirectory(repoDir, srv.URL)
	require.NoError(t, err)
	require.NoError(t, idx.WriteFile(filepath.Join(repoDir, "index.yaml"), 0644))

	workDir := t.TempDir()
	f, err := NewFetcher(workDir)
	require.NoError(t, err)

	dest := filepath.Join(workDir, defaults.ChartsDirName)
	specs := []Spec{{Ref: "testchart", Version: "0.1.0", RepoName: "local", RepoURL: srv.URL}}

	archives, err := f.Fetch(context.Background(), dest, specs)
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.True(t, strings.HasSuffix(archives[0], "testchart-0.1.0.tgz"))

	_, err = os.Stat(archives[0])
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dest, defaults.ChecksumsFileName))
	assert.NoError(t, err)
}

func TestFetchUnknownChartFails(t *testing.T) {
	workDir := t.TempDir()
	f, err := NewFetcher(workDir)
	require.NoError(t, err)

	dest := filepath.Join(workDir, defaults.ChartsDirName)
	_, err = f.Fetch(context.Background(), dest, []Spec{
		{Ref: "nope", Version: "0.0.1", RepoName: "missing", RepoURL: "http://127.0.0.1:1/no-such-repo"},
	})
	require.Error(t, err)
}
