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

func downCmd() *cli.Command {
	return &cli.Command{
		Name:                  "down",
		EnableShellCompletion: true,
		Usage:                 "Tear down the cluster, registry, and certificates",
		Description: `Deletes the Kind cluster, stops and removes the registry container and its
dedicated network, and removes the provisioned certificates from the work
directory. Fetched charts and the installer script are left in place.

Safe to run when nothing exists; each step tolerates absent resources.

# Examples

Tear down the default environment:
  spoke down

Tear down a named cluster:
  spoke down --name staging`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runAndReport(ctx, cmd, nil,
				func(ctx context.Context, eng bootstrapEngine) (*workflow.RunReport, error) {
					return eng.Down(ctx)
				})
		},
	}
}
