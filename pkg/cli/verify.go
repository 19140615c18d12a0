/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/radius-project/spoke/pkg/workflow"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:                  "verify",
		EnableShellCompletion: true,
		Usage:                 "Verify pod-level connectivity to the registry",
		Description: `Launches a short-lived pod in the existing cluster that pulls its image
from the local registry, proving the node trust configuration works end to
end. The pod is deleted on success and left in place for inspection on
failure.

Requires a cluster and registry previously created by up.

# Examples

Verify the default environment:
  spoke verify

Verify a named cluster:
  spoke verify --name staging`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runAndReport(ctx, cmd, nil,
				func(ctx context.Context, eng bootstrapEngine) (*workflow.RunReport, error) {
					return eng.Verify(ctx)
				})
		},
	}
}
