/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package certs provisions the registry's TLS material with mkcert, so the
// serving certificate chains to a root CA already trusted by the host.
package certs

import (
	"context"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/radius-project/spoke/pkg/defaults"
	apperrors "github.com/radius-project/spoke/pkg/errors"
)

// Paths holds the locations of the provisioned certificate files.
type Paths struct {
	Dir  string `json:"dir" yaml:"dir"`
	Cert string `json:"cert" yaml:"cert"`
	Key  string `json:"key" yaml:"key"`
	CA   string `json:"ca" yaml:"ca"`
}

type runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Provisioner mints the registry certificate and stages the CA alongside it.
type Provisioner struct {
	runner runner
}

// NewProvisioner creates a Provisioner that shells out to mkcert.
func NewProvisioner() *Provisioner {
	return &Provisioner{runner: execRunner{}}
}

// Provision creates dir, mints a certificate for host (plus localhost and
// 127.0.0.1), and copies the mkcert root CA next to it as ca.crt. Re-running
// overwrites the previous material.
func (p *Provisioner) Provision(ctx context.Context, dir, host string) (*Paths, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCertProvision,
			"failed to create certificate directory", err)
	}

	paths := &Paths{
		Dir:  dir,
		Cert: filepath.Join(dir, defaults.CertFileName),
		Key:  filepath.Join(dir, defaults.KeyFileName),
		CA:   filepath.Join(dir, defaults.CAFileName),
	}

	out, err := p.runner.Output(ctx, "mkcert",
		"-cert-file", paths.Cert,
		"-key-file", paths.Key,
		host, "localhost", "127.0.0.1")
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeCertProvision,
			fmt.Sprintf("mkcert failed for host %s", host), err,
			map[string]any{"output": strings.TrimSpace(string(out))})
	}

	caRootOut, err := p.runner.Output(ctx, "mkcert", "-CAROOT")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCertProvision,
			"failed to locate mkcert CA root", err)
	}
	caSource := filepath.Join(strings.TrimSpace(string(caRootOut)), "rootCA.pem")

	caPEM, err := os.ReadFile(caSource)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCertProvision,
			"failed to read mkcert root CA", err)
	}
	// Readable by the registry container and by kind's extra mount.
	if err := os.WriteFile(paths.CA, caPEM, 0644); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCertProvision,
			"failed to stage root CA", err)
	}

	slog.Info("certificates provisioned", "host", host, "dir", dir)
	return paths, nil
}

// Pool loads the staged root CA into a certificate pool for TLS clients.
func Pool(caPath string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCertProvision,
			"failed to read root CA", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, apperrors.Newf(apperrors.ErrCodeCertProvision,
			"no certificates parsed from %s", caPath)
	}
	return pool, nil
}
