/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radius-project/spoke/pkg/certs"
	"github.com/radius-project/spoke/pkg/charts"
	"github.com/radius-project/spoke/pkg/cluster"
	"github.com/radius-project/spoke/pkg/config"
	apperrors "github.com/radius-project/spoke/pkg/errors"
	"github.com/radius-project/spoke/pkg/installer"
	"github.com/radius-project/spoke/pkg/mirror"
	"github.com/radius-project/spoke/pkg/registry"
	"github.com/radius-project/spoke/pkg/tools"
	"github.com/radius-project/spoke/pkg/verify"
)

type stubChecker struct {
	toolsErr error
	caErr    error
}

func (s *stubChecker) CheckTools(context.Context) ([]tools.Tool, error) {
	return []tools.Tool{{Name: "docker", Found: true}}, s.toolsErr
}

func (s *stubChecker) CheckCA(context.Context) (string, error) {
	return "/home/user/.local/share/mkcert/rootCA.pem", s.caErr
}

type stubCerts struct {
	caPath string
}

func (s *stubCerts) Provision(_ context.Context, dir, _ string) (*certs.Paths, error) {
	return &certs.Paths{Dir: dir, CA: s.caPath}, nil
}

type stubRegistry struct {
	started []string
	stopped []string
}

func (s *stubRegistry) Start(_ context.Context, host string, port int, networkName string, _ *certs.Paths) (*registry.Session, error) {
	s.started = append(s.started, host)
	return &registry.Session{ContainerName: host, Host: host, Port: port, Network: networkName}, nil
}

func (s *stubRegistry) Stop(_ context.Context, host, _ string) error {
	s.stopped = append(s.stopped, host)
	return nil
}

type stubCharts struct {
	paths []string
	calls int
}

func (s *stubCharts) Fetch(context.Context, string, []charts.Spec) ([]string, error) {
	s.calls++
	return s.paths, nil
}

type stubMirror struct {
	summary *mirror.Summary
	err     error
	calls   int
}

func (s *stubMirror) Mirror(context.Context, []mirror.ArtifactSpec) (*mirror.Summary, error) {
	s.calls++
	return s.summary, s.err
}

type stubImageMirror struct {
	summary *mirror.Summary
	err     error
	calls   int
}

func (s *stubImageMirror) Mirror(context.Context, []string) (*mirror.Summary, error) {
	s.calls++
	return s.summary, s.err
}

type stubCluster struct {
	exists  bool
	created []string
	deleted []string
}

func (s *stubCluster) Create(_ context.Context, name, _ string, _ int, _ string) (*cluster.Session, error) {
	s.created = append(s.created, name)
	return &cluster.Session{Name: name, Context: "kind-" + name, RegistryTrustConfigured: true}, nil
}

func (s *stubCluster) Delete(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return nil
}

func (s *stubCluster) Exists(string) (bool, error) { return s.exists, nil }

type stubVerifier struct {
	err   error
	calls int
}

func (s *stubVerifier) Run(context.Context, string) (*verify.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &verify.Result{Pod: "registry-verify-abc12345"}, nil
}

func (s *stubVerifier) Close() error { return nil }

type fixture struct {
	engine    *Engine
	registry  *stubRegistry
	charts    *stubCharts
	recipes   *stubMirror
	images    *stubImageMirror
	cluster   *stubCluster
	verifier  *stubVerifier
	installed *installer.Data
}

// writeTestCA stages a parseable CA certificate and returns its path.
func writeTestCA(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test root CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ca.crt")
	require.NoError(t, os.WriteFile(path,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0644))
	return path
}

// stageCA places a CA where the mirror command expects one.
func stageCA(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.CertsDir(), 0750))
	src := writeTestCA(t)
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.CertsDir(), "ca.crt"), data, 0644))
}

// stageChart drops a chart archive where a previous fetch would have left it.
func stageChart(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.ChartsDir(), 0750))
	path := filepath.Join(cfg.ChartsDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0644))
	return path
}

func summaryOf(succeeded int) *mirror.Summary {
	s := &mirror.Summary{}
	for i := 0; i < succeeded; i++ {
		s.Results = append(s.Results, mirror.Result{Outcome: mirror.OutcomeSuccess})
	}
	return s
}

func newFixture(t *testing.T, opts ...config.Option) *fixture {
	t.Helper()

	caPath := writeTestCA(t)
	opts = append([]config.Option{config.WithWorkDir(t.TempDir())}, opts...)
	cfg, err := config.New(opts...)
	require.NoError(t, err)

	f := &fixture{
		registry: &stubRegistry{},
		charts:   &stubCharts{paths: []string{"/work/charts/radius-0.45.0.tgz", "/work/charts/contour-11.1.1.tgz"}},
		recipes:  &stubMirror{summary: summaryOf(8)},
		images:   &stubImageMirror{summary: summaryOf(12)},
		cluster:  &stubCluster{},
		verifier: &stubVerifier{},
	}
	f.engine = &Engine{
		cfg:      cfg,
		checker:  &stubChecker{},
		certs:    &stubCerts{caPath: caPath},
		registry: f.registry,
		charts:   f.charts,
		cluster:  f.cluster,
		recipes:  func(*x509.CertPool) recipeMirror { return f.recipes },
		images:   func(*x509.CertPool) imageMirror { return f.images },
		verifier: func(string) (connectivityVerifier, error) { return f.verifier, nil },
		installFn: func(path string, data installer.Data) (string, error) {
			f.installed = &data
			return path, nil
		},
		now: time.Now,
	}
	return f
}

func stepStatuses(report *RunReport) map[string]StepStatus {
	out := make(map[string]StepStatus, len(report.Steps))
	for _, s := range report.Steps {
		out[s.Name] = s.Status
	}
	return out
}

func TestUpRunsStepsInOrder(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Up(context.Background())
	require.NoError(t, err)

	var names []string
	for _, s := range report.Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Tools", "Reset", "Certificates", "Registry", "Charts",
		"Recipes", "Images", "Cluster", "Verify", "Installer",
	}, names)

	for _, s := range report.Steps {
		assert.Equal(t, StepOK, s.Status, "step %s", s.Name)
	}

	assert.Equal(t, "8/8", report.RecipeSummary)
	assert.Equal(t, "12/12", report.ImageSummary)
	assert.Equal(t, "localhost:6060", report.RegistryAddr)
	assert.Equal(t, "kind-radius", report.KubeContext)
	assert.NotEmpty(t, report.InstallerPath)
	assert.Equal(t, 1, f.verifier.calls)
}

func TestUpSkipsChartsAndVerify(t *testing.T) {
	f := newFixture(t, config.WithSkipCharts(true), config.WithSkipVerify(true))
	radius := stageChart(t, f.engine.cfg, "radius-0.45.0.tgz")
	contour := stageChart(t, f.engine.cfg, "contour-11.1.1.tgz")

	report, err := f.engine.Up(context.Background())
	require.NoError(t, err)

	statuses := stepStatuses(report)
	assert.Equal(t, StepSkipped, statuses["Charts"])
	assert.Equal(t, StepSkipped, statuses["Verify"])
	assert.Equal(t, 0, f.charts.calls)
	assert.Equal(t, 0, f.verifier.calls)

	assert.ElementsMatch(t, []string{radius, contour}, report.ChartPaths)
	require.NotNil(t, f.installed)
	assert.Equal(t, radius, f.installed.RadiusChart)
	assert.Equal(t, contour, f.installed.ContourChart)
}

func TestUpSkipChartsWithoutStagedArchivesFails(t *testing.T) {
	f := newFixture(t, config.WithSkipCharts(true), config.WithSkipVerify(true))

	report, err := f.engine.Up(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeChartFetch, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "--skip-charts")

	statuses := stepStatuses(report)
	assert.Equal(t, StepSkipped, statuses["Charts"])
	assert.Equal(t, StepFailed, statuses["Installer"])
	assert.Empty(t, report.InstallerPath)
}

func TestUpRecordsCertPoolFailure(t *testing.T) {
	f := newFixture(t)
	f.engine.certs = &stubCerts{caPath: filepath.Join(t.TempDir(), "missing.crt")}

	report, err := f.engine.Up(context.Background())
	require.Error(t, err)

	statuses := stepStatuses(report)
	assert.Equal(t, StepFailed, statuses["Recipes"])
	assert.Equal(t, 0, f.recipes.calls)
}

func TestUpStopsOnMirrorFailure(t *testing.T) {
	f := newFixture(t)
	f.images.err = apperrors.New(apperrors.ErrCodeNoImagesMirrored, "no images could be mirrored")

	report, err := f.engine.Up(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNoImagesMirrored, apperrors.CodeOf(err))

	statuses := stepStatuses(report)
	assert.Equal(t, StepFailed, statuses["Images"])
	_, clusterRan := statuses["Cluster"]
	assert.False(t, clusterRan, "cluster step must not run after a fatal mirror failure")
	assert.Empty(t, f.cluster.created)
}

func TestUpResetDeletesExistingCluster(t *testing.T) {
	f := newFixture(t)
	f.cluster.exists = true

	_, err := f.engine.Up(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"radius"}, f.cluster.deleted)
	assert.Equal(t, []string{"registry.localhost"}, f.registry.stopped)
}

func TestDown(t *testing.T) {
	f := newFixture(t)
	f.cluster.exists = true

	report, err := f.engine.Down(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "down", report.Command)
	assert.Equal(t, []string{"radius"}, f.cluster.deleted)
	assert.Equal(t, []string{"registry.localhost"}, f.registry.stopped)
	assert.Empty(t, f.registry.started)
}

func TestMirrorOnlyFlags(t *testing.T) {
	f := newFixture(t)
	stageCA(t, f.engine.cfg)

	report, err := f.engine.Mirror(context.Background(), true, false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.recipes.calls)
	assert.Equal(t, 0, f.images.calls)
	assert.Equal(t, StepSkipped, stepStatuses(report)["Images"])

	f = newFixture(t)
	stageCA(t, f.engine.cfg)
	report, err = f.engine.Mirror(context.Background(), false, true)
	require.NoError(t, err)
	assert.Equal(t, 0, f.recipes.calls)
	assert.Equal(t, 1, f.images.calls)
	assert.Equal(t, StepSkipped, stepStatuses(report)["Recipes"])
}

func TestMirrorFailsWithoutCA(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Mirror(context.Background(), false, false)
	require.Error(t, err)

	statuses := stepStatuses(report)
	assert.Equal(t, StepFailed, statuses["Certificates"])
	assert.Equal(t, 0, f.recipes.calls)
	assert.Equal(t, 0, f.images.calls)
}

func TestVerifyCommand(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.verifier.calls)
	assert.Equal(t, "kind-radius", report.KubeContext)
}

func TestVerifyFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.verifier.err = apperrors.New(apperrors.ErrCodeConnectivityTimeout, "pod did not complete")

	_, err := f.engine.Verify(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConnectivityTimeout, apperrors.CodeOf(err))
}
