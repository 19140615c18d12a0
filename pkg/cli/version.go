/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/radius-project/spoke/pkg/version"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:                  "version",
		EnableShellCompletion: true,
		Usage:                 "Print build version information",
		Description: `Prints the version, commit, and build date embedded at link time, in the
configured output format.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseRootCmdOptions(cmd)
			if err != nil {
				return err
			}
			return opts.writeReport(ctx, version.Get())
		},
	}
}
