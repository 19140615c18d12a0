/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/radius-project/spoke/pkg/charts"
	"github.com/radius-project/spoke/pkg/defaults"
	"github.com/radius-project/spoke/pkg/mirror"
)

// Config provides immutable configuration for the bootstrap workflow.
// All fields are read-only after creation; each step receives the Config and
// reads only the fields it needs. Use the functional options to override
// defaults at construction time.
type Config struct {
	// clusterName is the Kind cluster name.
	clusterName string

	// registryHost is the registry hostname, doubling as its container name.
	registryHost string

	// registryPort is the TLS port the registry listens on.
	registryPort int

	// network is the dedicated bridge network the registry starts on.
	network string

	// workDir is the root for certificates, charts and the installer.
	workDir string

	// nodeImage overrides the Kind node image; empty uses the Kind default.
	nodeImage string

	// settleDelay is the wait after cluster trust configuration.
	settleDelay time.Duration

	// skipCharts skips the chart fetch step.
	skipCharts bool

	// skipVerify skips the connectivity verification step.
	skipVerify bool

	// recipes are the recipe artifacts to mirror.
	recipes []mirror.ArtifactSpec

	// images are the container image references to mirror.
	images []string

	// charts are the Helm charts to fetch.
	charts []charts.Spec
}

// New creates a validated Config starting from the built-in defaults.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		clusterName:  defaults.ClusterName,
		registryHost: defaults.RegistryHost,
		registryPort: defaults.RegistryPort,
		network:      defaults.NetworkName,
		workDir:      ".",
		nodeImage:    defaults.NodeImage,
		settleDelay:  defaults.ClusterSettleDelay,
		recipes:      DefaultRecipes(),
		images:       DefaultImages(),
		charts:       DefaultCharts(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ClusterName returns the Kind cluster name.
func (c *Config) ClusterName() string {
	return c.clusterName
}

// KubeContext returns the kubeconfig context Kind writes for the cluster.
func (c *Config) KubeContext() string {
	return "kind-" + c.clusterName
}

// RegistryHost returns the registry hostname.
func (c *Config) RegistryHost() string {
	return c.registryHost
}

// RegistryPort returns the registry TLS port.
func (c *Config) RegistryPort() int {
	return c.registryPort
}

// Network returns the dedicated registry network name.
func (c *Config) Network() string {
	return c.network
}

// WorkDir returns the working directory root.
func (c *Config) WorkDir() string {
	return c.workDir
}

// CertsDir returns the certificate directory under the work directory.
func (c *Config) CertsDir() string {
	return filepath.Join(c.workDir, defaults.CertsDirName)
}

// ChartsDir returns the chart directory under the work directory.
func (c *Config) ChartsDir() string {
	return filepath.Join(c.workDir, defaults.ChartsDirName)
}

// InstallerPath returns the path of the generated installer script.
func (c *Config) InstallerPath() string {
	return filepath.Join(c.workDir, defaults.InstallerFileName)
}

// NodeImage returns the Kind node image override, empty for the default.
func (c *Config) NodeImage() string {
	return c.nodeImage
}

// SettleDelay returns the post-provisioning settling delay.
func (c *Config) SettleDelay() time.Duration {
	return c.settleDelay
}

// SkipCharts reports whether the chart fetch step is skipped.
func (c *Config) SkipCharts() bool {
	return c.skipCharts
}

// SkipVerify reports whether connectivity verification is skipped.
func (c *Config) SkipVerify() bool {
	return c.skipVerify
}

// Recipes returns a copy of the recipe artifact list.
func (c *Config) Recipes() []mirror.ArtifactSpec {
	out := make([]mirror.ArtifactSpec, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// Images returns a copy of the image reference list.
func (c *Config) Images() []string {
	out := make([]string, len(c.images))
	copy(out, c.images)
	return out
}

// Charts returns a copy of the chart list.
func (c *Config) Charts() []charts.Spec {
	out := make([]charts.Spec, len(c.charts))
	copy(out, c.charts)
	return out
}

// Validate checks the Config for settings no step could work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.clusterName) == "" {
		return fmt.Errorf("cluster name cannot be empty")
	}
	if strings.TrimSpace(c.registryHost) == "" {
		return fmt.Errorf("registry host cannot be empty")
	}
	if strings.Contains(c.registryHost, "/") || strings.Contains(c.registryHost, ":") {
		return fmt.Errorf("registry host %q must be a bare hostname", c.registryHost)
	}
	if c.registryPort < 1 || c.registryPort > 65535 {
		return fmt.Errorf("registry port %d out of range", c.registryPort)
	}
	if strings.TrimSpace(c.network) == "" {
		return fmt.Errorf("network name cannot be empty")
	}
	if strings.TrimSpace(c.workDir) == "" {
		return fmt.Errorf("work directory cannot be empty")
	}
	if c.settleDelay < 0 {
		return fmt.Errorf("settle delay cannot be negative")
	}
	return nil
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithClusterName sets the Kind cluster name.
func WithClusterName(name string) Option {
	return func(c *Config) {
		c.clusterName = name
	}
}

// WithRegistryHost sets the registry hostname and container name.
func WithRegistryHost(host string) Option {
	return func(c *Config) {
		c.registryHost = host
	}
}

// WithRegistryPort sets the registry TLS port.
func WithRegistryPort(port int) Option {
	return func(c *Config) {
		c.registryPort = port
	}
}

// WithNetwork sets the dedicated registry network name.
func WithNetwork(name string) Option {
	return func(c *Config) {
		c.network = name
	}
}

// WithWorkDir sets the working directory root.
func WithWorkDir(dir string) Option {
	return func(c *Config) {
		c.workDir = dir
	}
}

// WithNodeImage sets the Kind node image.
func WithNodeImage(image string) Option {
	return func(c *Config) {
		c.nodeImage = image
	}
}

// WithSettleDelay sets the post-provisioning settling delay.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		c.settleDelay = d
	}
}

// WithSkipCharts skips the chart fetch step.
func WithSkipCharts(skip bool) Option {
	return func(c *Config) {
		c.skipCharts = skip
	}
}

// WithSkipVerify skips the connectivity verification step.
func WithSkipVerify(skip bool) Option {
	return func(c *Config) {
		c.skipVerify = skip
	}
}

// WithManifest overrides the built-in artifact lists with the non-empty
// lists of a loaded manifest.
func WithManifest(m *Manifest) Option {
	return func(c *Config) {
		if m == nil {
			return
		}
		if len(m.Recipes) > 0 {
			c.recipes = m.Recipes
		}
		if len(m.Images) > 0 {
			c.images = m.Images
		}
		if len(m.Charts) > 0 {
			c.charts = m.Charts
		}
	}
}
