/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package workflow sequences the bootstrap steps and produces the run
// report. Each step gets its dependencies handed forward; nothing is
// re-derived by name.
package workflow

import (
	"context"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/radius-project/spoke/pkg/certs"
	"github.com/radius-project/spoke/pkg/charts"
	"github.com/radius-project/spoke/pkg/cluster"
	"github.com/radius-project/spoke/pkg/config"
	"github.com/radius-project/spoke/pkg/defaults"
	"github.com/radius-project/spoke/pkg/docker"
	apperrors "github.com/radius-project/spoke/pkg/errors"
	"github.com/radius-project/spoke/pkg/installer"
	"github.com/radius-project/spoke/pkg/k8s"
	"github.com/radius-project/spoke/pkg/mirror"
	"github.com/radius-project/spoke/pkg/oci"
	"github.com/radius-project/spoke/pkg/registry"
	"github.com/radius-project/spoke/pkg/tools"
	"github.com/radius-project/spoke/pkg/verify"
)

// Step names as they appear in the run report.
const (
	stepTools     = "tools"
	stepReset     = "reset"
	stepCerts     = "certificates"
	stepRegistry  = "registry"
	stepCharts    = "charts"
	stepRecipes   = "recipes"
	stepImages    = "images"
	stepCluster   = "cluster"
	stepVerify    = "verify"
	stepInstaller = "installer"
)

type prereqChecker interface {
	CheckTools(ctx context.Context) ([]tools.Tool, error)
	CheckCA(ctx context.Context) (string, error)
}

type certProvisioner interface {
	Provision(ctx context.Context, dir, host string) (*certs.Paths, error)
}

type registryManager interface {
	Start(ctx context.Context, host string, port int, networkName string, certPaths *certs.Paths) (*registry.Session, error)
	Stop(ctx context.Context, host, networkName string) error
}

type chartFetcher interface {
	Fetch(ctx context.Context, dir string, specs []charts.Spec) ([]string, error)
}

type recipeMirror interface {
	Mirror(ctx context.Context, specs []mirror.ArtifactSpec) (*mirror.Summary, error)
}

type imageMirror interface {
	Mirror(ctx context.Context, images []string) (*mirror.Summary, error)
}

type clusterProvisioner interface {
	Create(ctx context.Context, name, registryHost string, registryPort int, caPath string) (*cluster.Session, error)
	Delete(ctx context.Context, name string) error
	Exists(name string) (bool, error)
}

type connectivityVerifier interface {
	Run(ctx context.Context, registryAddr string) (*verify.Result, error)
	Close() error
}

// Engine runs the bootstrap workflow.
type Engine struct {
	cfg *config.Config

	checker   prereqChecker
	certs     certProvisioner
	registry  registryManager
	charts    chartFetcher
	cluster   clusterProvisioner
	recipes   func(pool *x509.CertPool) recipeMirror
	images    func(pool *x509.CertPool) imageMirror
	verifier  func(kubeContext string) (connectivityVerifier, error)
	installFn func(path string, data installer.Data) (string, error)
	now       func() time.Time
}

// NewEngine wires an Engine against the real host.
func NewEngine(cfg *config.Config) (*Engine, error) {
	eng, err := docker.NewEngine()
	if err != nil {
		return nil, err
	}

	fetcher, err := charts.NewFetcher(cfg.WorkDir())
	if err != nil {
		return nil, err
	}

	// Shared across recipe and image mirroring so the pacing budget covers
	// all source pulls.
	limiter := rate.NewLimiter(rate.Limit(defaults.MirrorPullsPerSecond), defaults.MirrorPullBurst)
	registryAddr := fmt.Sprintf("localhost:%d", cfg.RegistryPort())

	return &Engine{
		cfg:      cfg,
		checker:  tools.NewChecker(),
		certs:    certs.NewProvisioner(),
		registry: registry.NewManager(eng),
		charts:   fetcher,
		cluster:  cluster.NewProvisioner(eng, cfg.NodeImage(), cfg.SettleDelay()),
		recipes: func(pool *x509.CertPool) recipeMirror {
			return mirror.NewRecipeMirror(registryAddr, pool, limiter)
		},
		images: func(pool *x509.CertPool) imageMirror {
			return mirror.NewImageMirror(registryAddr, pool, limiter)
		},
		verifier: func(kubeContext string) (connectivityVerifier, error) {
			client, err := k8s.ClientForContext(kubeContext)
			if err != nil {
				return nil, err
			}
			return verify.NewVerifier(client), nil
		},
		installFn: installer.Generate,
		now:       time.Now,
	}, nil
}

// step runs fn, records its outcome, and returns fn's error.
func (e *Engine) step(report *RunReport, name string, fn func() error) error {
	start := e.now()
	err := fn()
	duration := e.now().Sub(start)
	if err != nil {
		report.record(name, StepFailed, duration, err.Error())
		return err
	}
	report.record(name, StepOK, duration, "")
	return nil
}

func (e *Engine) skip(report *RunReport, name, reason string) {
	report.record(name, StepSkipped, 0, reason)
}

// Up runs the full bootstrap: prerequisites, reset, certificates, registry,
// charts, recipes, images, cluster, verification, installer.
func (e *Engine) Up(ctx context.Context) (*RunReport, error) {
	report := newRunReport("up", e.now())
	defer func() { report.Duration = e.now().Sub(report.StartedAt) }()

	if err := e.step(report, stepTools, func() error {
		results, err := e.checker.CheckTools(ctx)
		report.Tools = results
		if err != nil {
			return err
		}
		_, err = e.checker.CheckCA(ctx)
		return err
	}); err != nil {
		return report, err
	}

	if err := e.step(report, stepReset, func() error {
		return e.reset(ctx)
	}); err != nil {
		return report, err
	}

	var certPaths *certs.Paths
	if err := e.step(report, stepCerts, func() error {
		var err error
		certPaths, err = e.certs.Provision(ctx, e.cfg.CertsDir(), e.cfg.RegistryHost())
		return err
	}); err != nil {
		return report, err
	}

	var regSession *registry.Session
	if err := e.step(report, stepRegistry, func() error {
		var err error
		regSession, err = e.registry.Start(ctx, e.cfg.RegistryHost(), e.cfg.RegistryPort(), e.cfg.Network(), certPaths)
		if regSession != nil {
			report.RegistryAddr = regSession.Addr()
		}
		return err
	}); err != nil {
		return report, err
	}

	var chartPaths []string
	if e.cfg.SkipCharts() {
		chartPaths = stagedCharts(e.cfg.ChartsDir())
		report.ChartPaths = chartPaths
		e.skip(report, stepCharts, "chart fetch disabled, reusing staged archives")
	} else if err := e.step(report, stepCharts, func() error {
		var err error
		chartPaths, err = e.charts.Fetch(ctx, e.cfg.ChartsDir(), e.cfg.Charts())
		report.ChartPaths = chartPaths
		return err
	}); err != nil {
		return report, err
	}

	var pool *x509.CertPool
	if err := e.step(report, stepRecipes, func() error {
		var err error
		pool, err = certs.Pool(certPaths.CA)
		if err != nil {
			return err
		}
		summary, err := e.recipes(pool).Mirror(ctx, e.cfg.Recipes())
		if summary != nil {
			report.RecipeSummary = summary.String()
		}
		return err
	}); err != nil {
		return report, err
	}

	if err := e.step(report, stepImages, func() error {
		summary, err := e.images(pool).Mirror(ctx, e.cfg.Images())
		if summary != nil {
			report.ImageSummary = summary.String()
		}
		return err
	}); err != nil {
		return report, err
	}

	var clusterSession *cluster.Session
	if err := e.step(report, stepCluster, func() error {
		var err error
		clusterSession, err = e.cluster.Create(ctx, e.cfg.ClusterName(), e.cfg.RegistryHost(), e.cfg.RegistryPort(), certPaths.CA)
		if clusterSession != nil {
			report.KubeContext = clusterSession.Context
		}
		return err
	}); err != nil {
		return report, err
	}

	if e.cfg.SkipVerify() {
		e.skip(report, stepVerify, "connectivity verification disabled")
	} else if err := e.step(report, stepVerify, func() error {
		v, err := e.verifier(clusterSession.Context)
		if err != nil {
			return err
		}
		defer v.Close()
		_, err = v.Run(ctx, regSession.Addr())
		return err
	}); err != nil {
		return report, err
	}

	if err := e.step(report, stepInstaller, func() error {
		path, err := e.generateInstaller(clusterSession.Context, regSession.Addr(), chartPaths)
		report.InstallerPath = path
		return err
	}); err != nil {
		return report, err
	}

	slog.Info("bootstrap complete", "registry", report.RegistryAddr, "context", report.KubeContext)
	return report, nil
}

// Down tears the environment back down.
func (e *Engine) Down(ctx context.Context) (*RunReport, error) {
	report := newRunReport("down", e.now())
	defer func() { report.Duration = e.now().Sub(report.StartedAt) }()

	err := e.step(report, stepReset, func() error {
		return e.reset(ctx)
	})
	return report, err
}

// Mirror re-runs artifact mirroring against an already running registry.
func (e *Engine) Mirror(ctx context.Context, recipesOnly, imagesOnly bool) (*RunReport, error) {
	report := newRunReport("mirror", e.now())
	defer func() { report.Duration = e.now().Sub(report.StartedAt) }()

	caPath := filepath.Join(e.cfg.CertsDir(), defaults.CAFileName)
	var pool *x509.CertPool
	if err := e.step(report, stepCerts, func() error {
		var err error
		pool, err = certs.Pool(caPath)
		return err
	}); err != nil {
		return report, err
	}
	report.RegistryAddr = fmt.Sprintf("localhost:%d", e.cfg.RegistryPort())

	if imagesOnly {
		e.skip(report, stepRecipes, "images only")
	} else if err := e.step(report, stepRecipes, func() error {
		summary, err := e.recipes(pool).Mirror(ctx, e.cfg.Recipes())
		if summary != nil {
			report.RecipeSummary = summary.String()
		}
		return err
	}); err != nil {
		return report, err
	}

	if recipesOnly {
		e.skip(report, stepImages, "recipes only")
	} else if err := e.step(report, stepImages, func() error {
		summary, err := e.images(pool).Mirror(ctx, e.cfg.Images())
		if summary != nil {
			report.ImageSummary = summary.String()
		}
		return err
	}); err != nil {
		return report, err
	}

	return report, nil
}

// Verify runs the connectivity check against an existing cluster.
func (e *Engine) Verify(ctx context.Context) (*RunReport, error) {
	report := newRunReport("verify", e.now())
	defer func() { report.Duration = e.now().Sub(report.StartedAt) }()

	report.KubeContext = e.cfg.KubeContext()
	report.RegistryAddr = fmt.Sprintf("localhost:%d", e.cfg.RegistryPort())

	err := e.step(report, stepVerify, func() error {
		v, err := e.verifier(e.cfg.KubeContext())
		if err != nil {
			return err
		}
		defer v.Close()
		_, err = v.Run(ctx, report.RegistryAddr)
		return err
	})
	return report, err
}

// reset tears down any previous environment: cluster, registry container,
// dedicated network, and certificate directory. Every part tolerates absence.
func (e *Engine) reset(ctx context.Context) error {
	exists, err := e.cluster.Exists(e.cfg.ClusterName())
	if err != nil {
		return err
	}
	if exists {
		if err := e.cluster.Delete(ctx, e.cfg.ClusterName()); err != nil {
			return err
		}
	}

	if err := e.registry.Stop(ctx, e.cfg.RegistryHost(), e.cfg.Network()); err != nil {
		return err
	}

	if err := os.RemoveAll(e.cfg.CertsDir()); err != nil {
		return fmt.Errorf("failed to remove certificate directory: %w", err)
	}
	return nil
}

// generateInstaller renders the install script from the staged artifacts.
func (e *Engine) generateInstaller(kubeContext, registryAddr string, chartPaths []string) (string, error) {
	data := installer.Data{
		KubeContext:  kubeContext,
		RegistryAddr: registryAddr,
	}
	for _, p := range chartPaths {
		base := filepath.Base(p)
		switch {
		case strings.HasPrefix(base, "radius-"):
			data.RadiusChart = p
		case strings.HasPrefix(base, "contour-"):
			data.ContourChart = p
		}
	}
	if data.RadiusChart == "" {
		return "", apperrors.Newf(apperrors.ErrCodeChartFetch,
			"no radius chart archive staged under %s; run up without --skip-charts first", e.cfg.ChartsDir())
	}

	for _, source := range e.cfg.Images() {
		if !strings.Contains(source, "radius-project/") {
			continue
		}
		local, err := oci.LocalImageRef(registryAddr, source)
		if err != nil {
			return "", err
		}
		key := "images." + imageKey(source)
		data.ImageOverrides = append(data.ImageOverrides, installer.ImageOverride{Key: key, Reference: local})
	}

	return e.installFn(e.cfg.InstallerPath(), data)
}

// stagedCharts lists chart archives left by a previous fetch, in sorted
// order.
func stagedCharts(dir string) []string {
	paths, err := filepath.Glob(filepath.Join(dir, "*.tgz"))
	if err != nil {
		return nil
	}
	return paths
}

// imageKey derives a Helm value key segment from an image reference.
func imageKey(source string) string {
	base := source
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, ":"); i >= 0 {
		base = base[:i]
	}
	return strings.ReplaceAll(base, "-", "")
}
