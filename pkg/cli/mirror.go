/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/radius-project/spoke/pkg/workflow"
)

// mirrorCmdOptions holds parsed options for the mirror command.
type mirrorCmdOptions struct {
	recipesOnly bool
	imagesOnly  bool
}

// parseMirrorCmdOptions parses and validates command options.
func parseMirrorCmdOptions(cmd *cli.Command) (*mirrorCmdOptions, error) {
	opts := &mirrorCmdOptions{
		recipesOnly: cmd.Bool("recipes-only"),
		imagesOnly:  cmd.Bool("images-only"),
	}

	if opts.recipesOnly && opts.imagesOnly {
		return nil, fmt.Errorf("--recipes-only and --images-only are mutually exclusive")
	}

	return opts, nil
}

func mirrorCmd() *cli.Command {
	return &cli.Command{
		Name:                  "mirror",
		EnableShellCompletion: true,
		Usage:                 "Mirror recipes and images into the running registry",
		Description: `Re-runs the artifact mirroring steps against an already running local
registry, without touching the cluster. Useful after a partial mirror
failure during up, or after updating the artifact manifest.

Recipe and image failures are isolated per item: a failed artifact is
reported and the rest continue. Mirroring fails outright only when no
image lands in the registry at all.

# Examples

Mirror everything listed in the defaults or manifest:
  spoke mirror

Retry only the recipe artifacts:
  spoke mirror --recipes-only

Retry only the container images from a manifest:
  spoke mirror --images-only --manifest artifacts.yaml`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "recipes-only",
				Usage:   "Mirror only the recipe artifacts",
				Sources: cli.EnvVars("SPOKE_RECIPES_ONLY"),
			},
			&cli.BoolFlag{
				Name:    "images-only",
				Usage:   "Mirror only the container images",
				Sources: cli.EnvVars("SPOKE_IMAGES_ONLY"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseMirrorCmdOptions(cmd)
			if err != nil {
				return err
			}

			return runAndReport(ctx, cmd, nil,
				func(ctx context.Context, eng bootstrapEngine) (*workflow.RunReport, error) {
					return eng.Mirror(ctx, opts.recipesOnly, opts.imagesOnly)
				})
		},
	}
}
