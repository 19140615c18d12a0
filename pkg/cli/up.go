/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/radius-project/spoke/pkg/config"
	"github.com/radius-project/spoke/pkg/defaults"
	"github.com/radius-project/spoke/pkg/workflow"
)

// upCmdOptions holds parsed options for the up command.
type upCmdOptions struct {
	skipCharts bool
	skipVerify bool
	nodeImage  string
	settle     time.Duration
}

// parseUpCmdOptions parses and validates command options.
func parseUpCmdOptions(cmd *cli.Command) (*upCmdOptions, error) {
	opts := &upCmdOptions{
		skipCharts: cmd.Bool("skip-charts"),
		skipVerify: cmd.Bool("skip-verify"),
		nodeImage:  cmd.String("node-image"),
		settle:     cmd.Duration("settle"),
	}

	if opts.settle < 0 {
		return nil, fmt.Errorf("--settle cannot be negative, got %s", opts.settle)
	}

	return opts, nil
}

func upCmd() *cli.Command {
	return &cli.Command{
		Name:                  "up",
		EnableShellCompletion: true,
		Usage:                 "Bootstrap the full air-gapped environment",
		Description: `Runs the complete bootstrap sequence:

  1. Check prerequisite tools (docker, kind, kubectl, helm, mkcert)
  2. Reset any previous cluster, registry, and certificates
  3. Provision TLS certificates via the mkcert local CA
  4. Start the local TLS registry container
  5. Fetch the Radius and Contour Helm charts
  6. Mirror the Radius recipe artifacts into the registry
  7. Mirror the container images into the registry
  8. Create the Kind cluster with node-level registry trust
  9. Verify pod-level connectivity to the registry
 10. Generate the installer script

The run report lists every step with its outcome and duration. On failure
the report covers the steps that ran before the failure.

# Examples

Bootstrap with defaults into the current directory:
  spoke up

Bootstrap into a dedicated directory, skipping chart download:
  spoke up --work-dir ./airgap --skip-charts

Pin the Kind node image for reproducible clusters:
  spoke up --node-image kindest/node:v1.32.0`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "skip-charts",
				Usage:   "Skip fetching Helm charts",
				Sources: cli.EnvVars("SPOKE_SKIP_CHARTS"),
			},
			&cli.BoolFlag{
				Name:    "skip-verify",
				Usage:   "Skip the registry connectivity verification pod",
				Sources: cli.EnvVars("SPOKE_SKIP_VERIFY"),
			},
			&cli.StringFlag{
				Name:    "node-image",
				Value:   defaults.NodeImage,
				Usage:   "Kind node image (default: the Kind release default)",
				Sources: cli.EnvVars("SPOKE_NODE_IMAGE"),
			},
			&cli.DurationFlag{
				Name:    "settle",
				Value:   defaults.ClusterSettleDelay,
				Usage:   "Wait after cluster trust configuration before verification",
				Sources: cli.EnvVars("SPOKE_SETTLE"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseUpCmdOptions(cmd)
			if err != nil {
				return err
			}

			extra := []config.Option{
				config.WithSkipCharts(opts.skipCharts),
				config.WithSkipVerify(opts.skipVerify),
				config.WithNodeImage(opts.nodeImage),
				config.WithSettleDelay(opts.settle),
			}

			return runAndReport(ctx, cmd, extra,
				func(ctx context.Context, eng bootstrapEngine) (*workflow.RunReport, error) {
					return eng.Up(ctx)
				})
		},
	}
}
