/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package cluster

import (
	"fmt"
	"log/slog"

	kindlog "sigs.k8s.io/kind/pkg/log"
)

// slogAdapter routes Kind's provisioning output through slog so cluster
// creation logs look like the rest of ours.
type slogAdapter struct {
	logger *slog.Logger
}

func newSlogAdapter() slogAdapter {
	return slogAdapter{logger: slog.Default().With("component", "kind")}
}

func (a slogAdapter) Warn(message string) {
	a.logger.Warn(message)
}

func (a slogAdapter) Warnf(format string, args ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, args...))
}

func (a slogAdapter) Error(message string) {
	a.logger.Error(message)
}

func (a slogAdapter) Errorf(format string, args ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, args...))
}

func (a slogAdapter) V(level kindlog.Level) kindlog.InfoLogger {
	return slogInfoLogger{logger: a.logger, enabled: level <= 0}
}

type slogInfoLogger struct {
	logger  *slog.Logger
	enabled bool
}

func (l slogInfoLogger) Info(message string) {
	if l.enabled {
		l.logger.Info(message)
	}
}

func (l slogInfoLogger) Infof(format string, args ...interface{}) {
	if l.enabled {
		l.logger.Info(fmt.Sprintf(format, args...))
	}
}

func (l slogInfoLogger) Enabled() bool {
	return l.enabled
}
