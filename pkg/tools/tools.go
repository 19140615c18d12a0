/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package tools verifies the host prerequisites before any bootstrap work
// starts: the CLIs the workflow shells out to or drives, and the mkcert
// root CA the local registry's TLS chain depends on.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/radius-project/spoke/pkg/errors"
)

// Runner abstracts the host lookups so checks can be tested without the
// real binaries installed.
type Runner interface {
	LookPath(name string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Tool describes one checked binary.
type Tool struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Found    bool   `json:"found" yaml:"found"`
	Optional bool   `json:"optional" yaml:"optional"`
}

var (
	requiredTools = []string{"docker", "kind", "kubectl", "helm", "mkcert"}
	optionalTools = []string{"oras"}
)

// Checker runs prerequisite checks.
type Checker struct {
	runner Runner
}

// NewChecker creates a Checker backed by the real host.
func NewChecker() *Checker {
	return &Checker{runner: execRunner{}}
}

// NewCheckerWithRunner creates a Checker with a custom Runner.
func NewCheckerWithRunner(r Runner) *Checker {
	return &Checker{runner: r}
}

// CheckTools looks up every required and optional tool. Missing optional
// tools only produce a warning; missing required tools fail with a single
// error naming all of them.
func (c *Checker) CheckTools(ctx context.Context) ([]Tool, error) {
	names := make([]string, 0, len(requiredTools)+len(optionalTools))
	names = append(names, requiredTools...)
	names = append(names, optionalTools...)

	results := make([]Tool, len(names))
	g, _ := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			path, err := c.runner.LookPath(name)
			results[i] = Tool{
				Name:     name,
				Path:     path,
				Found:    err == nil,
				Optional: i >= len(requiredTools),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []string
	for _, tool := range results {
		switch {
		case tool.Found:
			slog.Debug("tool found", "name", tool.Name, "path", tool.Path)
		case tool.Optional:
			slog.Warn("optional tool not found", "name", tool.Name)
		default:
			missing = append(missing, tool.Name)
		}
	}
	if len(missing) > 0 {
		return results, apperrors.Newf(apperrors.ErrCodeToolMissing,
			"required tools not found on PATH: %s", strings.Join(missing, ", "))
	}
	return results, nil
}

// CheckCA verifies the mkcert root CA exists, so certificates minted for the
// registry will chain to something the host already trusts.
func (c *Checker) CheckCA(ctx context.Context) (string, error) {
	out, err := c.runner.Output(ctx, "mkcert", "-CAROOT")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeCANotInstalled,
			"failed to locate mkcert CA root", err)
	}

	caRoot := strings.TrimSpace(string(out))
	caPath := filepath.Join(caRoot, "rootCA.pem")
	if _, err := os.Stat(caPath); err != nil {
		return "", apperrors.NewWithContext(apperrors.ErrCodeCANotInstalled,
			fmt.Sprintf("mkcert root CA not found at %s; run 'mkcert -install' first", caPath),
			map[string]any{"caroot": caRoot})
	}

	slog.Debug("mkcert root CA present", "path", caPath)
	return caPath, nil
}
