/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/radius-project/spoke/pkg/config"
	"github.com/radius-project/spoke/pkg/defaults"
	"github.com/radius-project/spoke/pkg/logging"
	"github.com/radius-project/spoke/pkg/serializer"
	"github.com/radius-project/spoke/pkg/version"
	"github.com/radius-project/spoke/pkg/workflow"
)

const name = "spoke"

// Global flags shared by every command. Marked persistent so they can be
// placed before or after the subcommand name.
var (
	nameFlag = &cli.StringFlag{
		Name:    "name",
		Aliases: []string{"n"},
		Value:   defaults.ClusterName,
		Usage:   "Kind cluster name",
		Sources: cli.EnvVars("SPOKE_NAME"),
	}

	registryHostFlag = &cli.StringFlag{
		Name:    "registry-host",
		Value:   defaults.RegistryHost,
		Usage:   "Local registry hostname, also used as its container name",
		Sources: cli.EnvVars("SPOKE_REGISTRY_HOST"),
	}

	portFlag = &cli.IntFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Value:   defaults.RegistryPort,
		Usage:   "TLS port the local registry listens on",
		Sources: cli.EnvVars("SPOKE_PORT"),
	}

	networkFlag = &cli.StringFlag{
		Name:    "network",
		Value:   defaults.NetworkName,
		Usage:   "Docker bridge network the registry starts on",
		Sources: cli.EnvVars("SPOKE_NETWORK"),
	}

	workDirFlag = &cli.StringFlag{
		Name:    "work-dir",
		Aliases: []string{"d"},
		Value:   ".",
		Usage:   "Directory for certificates, charts, and the installer script",
		Sources: cli.EnvVars("SPOKE_WORK_DIR"),
	}

	manifestFlag = &cli.StringFlag{
		Name:    "manifest",
		Aliases: []string{"m"},
		Usage:   "YAML manifest overriding the built-in recipe/image/chart lists",
		Sources: cli.EnvVars("SPOKE_MANIFEST"),
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   string(serializer.FormatTable),
		Usage:   fmt.Sprintf("Run report output format (supported values: %v)", serializer.SupportedFormats()),
		Sources: cli.EnvVars("SPOKE_FORMAT"),
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Run report output file path (default: stdout)",
		Sources: cli.EnvVars("SPOKE_OUTPUT"),
	}

	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		Usage:   "Log level (debug, info, warn, error)",
		Sources: cli.EnvVars("SPOKE_LOG_LEVEL", logging.LevelEnvVar),
	}
)

// bootstrapEngine is the surface of workflow.Engine the commands drive.
type bootstrapEngine interface {
	Up(ctx context.Context) (*workflow.RunReport, error)
	Down(ctx context.Context) (*workflow.RunReport, error)
	Mirror(ctx context.Context, recipesOnly, imagesOnly bool) (*workflow.RunReport, error)
	Verify(ctx context.Context) (*workflow.RunReport, error)
}

// newEngine is swapped in tests.
var newEngine = func(cfg *config.Config) (bootstrapEngine, error) {
	return workflow.NewEngine(cfg)
}

// Run executes the spoke CLI with the given arguments.
func Run(ctx context.Context, args []string) error {
	return rootCmd().Run(ctx, args)
}

func rootCmd() *cli.Command {
	info := version.Get()
	return &cli.Command{
		Name:                  name,
		Usage:                 "Stage Radius for air-gapped installation",
		Version:               info.Version,
		EnableShellCompletion: true,
		Description: `Stages everything the Radius application platform needs to install without
internet access: a local TLS registry, a Kind cluster that trusts it, the
Radius recipes and container images mirrored into it, the Helm charts, and
an installer script that ties them together.

# Commands

  up      - full bootstrap: registry, mirror, cluster, verification, installer
  down    - tear down the cluster, registry, and certificates
  mirror  - re-run recipe and image mirroring against the running registry
  verify  - check pod-level connectivity to the registry
  version - print build version information

# Examples

Bootstrap with the built-in artifact lists:
  spoke up

Bootstrap into a named work directory with a custom manifest:
  spoke up --work-dir ./airgap --manifest artifacts.yaml

Re-mirror only the container images after a partial failure:
  spoke mirror --images-only

Tear everything down:
  spoke down`,
		Flags: []cli.Flag{
			nameFlag,
			registryHostFlag,
			portFlag,
			networkFlag,
			workDirFlag,
			manifestFlag,
			formatFlag,
			outputFlag,
			logLevelFlag,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, info.Version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			upCmd(),
			downCmd(),
			mirrorCmd(),
			verifyCmd(),
			versionCmd(),
		},
	}
}

// rootCmdOptions holds the parsed global options shared by every command.
type rootCmdOptions struct {
	clusterName  string
	registryHost string
	registryPort int
	network      string
	workDir      string
	manifestPath string
	format       serializer.Format
	output       string
}

// parseRootCmdOptions parses and validates the global options.
func parseRootCmdOptions(cmd *cli.Command) (*rootCmdOptions, error) {
	opts := &rootCmdOptions{
		clusterName:  cmd.String("name"),
		registryHost: cmd.String("registry-host"),
		registryPort: cmd.Int("port"),
		network:      cmd.String("network"),
		workDir:      cmd.String("work-dir"),
		manifestPath: cmd.String("manifest"),
		format:       serializer.Format(cmd.String("format")),
		output:       cmd.String("output"),
	}

	if opts.format.IsUnknown() {
		return nil, fmt.Errorf("unknown output format: %q (supported values: %v)",
			opts.format, serializer.SupportedFormats())
	}

	return opts, nil
}

// buildConfig turns the parsed options into a validated workflow Config,
// loading the artifact manifest when one was given.
func (o *rootCmdOptions) buildConfig(extra ...config.Option) (*config.Config, error) {
	cfgOpts := []config.Option{
		config.WithClusterName(o.clusterName),
		config.WithRegistryHost(o.registryHost),
		config.WithRegistryPort(o.registryPort),
		config.WithNetwork(o.network),
		config.WithWorkDir(o.workDir),
	}

	if o.manifestPath != "" {
		m, err := config.LoadManifest(o.manifestPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load manifest from %q: %w", o.manifestPath, err)
		}
		cfgOpts = append(cfgOpts, config.WithManifest(m))
	}

	cfgOpts = append(cfgOpts, extra...)
	return config.New(cfgOpts...)
}

// writeReport serializes v to the configured output destination.
func (o *rootCmdOptions) writeReport(ctx context.Context, v any) error {
	ser := serializer.NewFileWriterOrStdout(o.format, o.output)
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close report writer", "error", err)
		}
	}()

	return ser.Serialize(ctx, v)
}

// runAndReport runs one engine operation and writes its report. The report
// is written even when the run fails, so partial step outcomes are visible.
func runAndReport(ctx context.Context, cmd *cli.Command,
	extraCfg []config.Option,
	run func(ctx context.Context, eng bootstrapEngine) (*workflow.RunReport, error),
) error {
	opts, err := parseRootCmdOptions(cmd)
	if err != nil {
		return err
	}

	cfg, err := opts.buildConfig(extraCfg...)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	report, runErr := run(ctx, eng)
	if report != nil {
		if err := opts.writeReport(ctx, report); err != nil {
			slog.Warn("failed to write run report", "error", err)
		}
	}

	return runErr
}
