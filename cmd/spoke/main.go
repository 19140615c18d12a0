/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/radius-project/spoke/pkg/cli"
	"github.com/radius-project/spoke/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, os.Args); err != nil {
		slog.Error("run failed", "code", errors.CodeOf(err), "error", err)
		stop()
		os.Exit(1)
	}
}
