/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package registry manages the local TLS registry container that serves
// mirrored artifacts to the cluster.
package registry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/docker/go-connections/nat"

	"github.com/radius-project/spoke/pkg/certs"
	"github.com/radius-project/spoke/pkg/defaults"
	"github.com/radius-project/spoke/pkg/docker"
	apperrors "github.com/radius-project/spoke/pkg/errors"
	"github.com/radius-project/spoke/pkg/poll"
)

// Session describes a running registry.
type Session struct {
	ContainerName string       `json:"containerName" yaml:"containerName"`
	Host          string       `json:"host" yaml:"host"`
	Port          int          `json:"port" yaml:"port"`
	Network       string       `json:"network" yaml:"network"`
	CertPaths     *certs.Paths `json:"certPaths,omitempty" yaml:"certPaths,omitempty"`
}

// Addr returns the host:port clients on the host machine dial.
func (s *Session) Addr() string {
	return "localhost:" + strconv.Itoa(s.Port)
}

// URL returns the registry base URL as cluster workloads address it.
func (s *Session) URL() string {
	return fmt.Sprintf("https://%s:%d", s.Host, s.Port)
}

// engine is the subset of docker.Engine the manager uses.
type engine interface {
	EnsureNetwork(ctx context.Context, name string) error
	RemoveNetwork(ctx context.Context, name string) error
	RemoveContainer(ctx context.Context, name string) error
	RunContainer(ctx context.Context, spec docker.RunSpec) (string, error)
}

// Manager starts and stops the registry container.
type Manager struct {
	engine engine

	// probeAddr overrides the probed host:port, for tests.
	probeAddr     string
	probeInterval time.Duration
	probeAttempts int
}

// NewManager creates a Manager on the given Docker engine.
func NewManager(e *docker.Engine) *Manager {
	return &Manager{
		engine:        e,
		probeInterval: defaults.RegistryProbeInterval,
		probeAttempts: defaults.RegistryProbeAttempts,
	}
}

// Start brings up a fresh registry container and waits until it answers the
// /v2/ endpoint over TLS. Any stale container with the same name is removed
// first so repeated runs converge.
func (m *Manager) Start(ctx context.Context, host string, port int, networkName string, certPaths *certs.Paths) (*Session, error) {
	if err := m.engine.EnsureNetwork(ctx, networkName); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to ensure registry network", err)
	}
	if err := m.engine.RemoveContainer(ctx, host); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to remove stale registry container", err)
	}

	portSpec := nat.Port(fmt.Sprintf("%d/tcp", port))
	spec := docker.RunSpec{
		Name:  host,
		Image: defaults.RegistryImage,
		Env: []string{
			fmt.Sprintf("REGISTRY_HTTP_ADDR=0.0.0.0:%d", port),
			"REGISTRY_HTTP_TLS_CERTIFICATE=/certs/" + defaults.CertFileName,
			"REGISTRY_HTTP_TLS_KEY=/certs/" + defaults.KeyFileName,
		},
		Binds:        []string{certPaths.Dir + ":/certs:ro"},
		ExposedPorts: nat.PortSet{portSpec: struct{}{}},
		PortBindings: nat.PortMap{
			// Loopback only; the cluster reaches the registry over the
			// container network, not the host binding.
			portSpec: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(port)}},
		},
		Network:       networkName,
		NetworkAlias:  []string{host},
		RestartAlways: true,
	}
	if _, err := m.engine.RunContainer(ctx, spec); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to start registry container", err)
	}

	pool, err := certs.Pool(certPaths.CA)
	if err != nil {
		return nil, err
	}
	if err := m.waitReady(ctx, port, pool); err != nil {
		return nil, err
	}

	session := &Session{
		ContainerName: host,
		Host:          host,
		Port:          port,
		Network:       networkName,
		CertPaths:     certPaths,
	}
	slog.Info("registry ready", "addr", session.Addr(), "network", networkName)
	return session, nil
}

// waitReady probes the registry's /v2/ endpoint until it answers. Any status
// below 500 means the registry is serving; 401 in particular is a healthy
// response from an auth-enabled registry.
func (m *Manager) waitReady(ctx context.Context, port int, pool *x509.CertPool) error {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool},
		},
	}
	defer httpClient.CloseIdleConnections()

	addr := m.probeAddr
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", port)
	}
	url := fmt.Sprintf("https://%s/v2/", addr)

	err := poll.Until(ctx, m.probeInterval, m.probeAttempts,
		func(ctx context.Context) (bool, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return false, err
			}
			resp, err := httpClient.Do(req)
			if err != nil {
				slog.Debug("registry not ready", "error", err)
				return false, nil
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 500 {
				slog.Debug("registry not ready", "status", resp.StatusCode)
				return false, nil
			}
			return true, nil
		})
	if err != nil {
		if errors.Is(err, poll.ErrExhausted) {
			return apperrors.Wrapf(apperrors.ErrCodeRegistryStartTimeout, err,
				"registry did not become ready at %s", url)
		}
		return apperrors.Wrap(apperrors.ErrCodeRegistryStartTimeout, "registry readiness probe failed", err)
	}
	return nil
}

// Stop removes the registry container and, when it is the dedicated bootstrap
// network, the network itself. Absent resources are not an error.
func (m *Manager) Stop(ctx context.Context, host, networkName string) error {
	if err := m.engine.RemoveContainer(ctx, host); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to remove registry container", err)
	}
	if networkName != "" && networkName != defaults.KindNetworkName && networkName != defaults.FallbackNetworkName {
		if err := m.engine.RemoveNetwork(ctx, networkName); err != nil {
			// The network may still carry cluster nodes.
			slog.Warn("failed to remove network", "name", networkName, "error", err)
		}
	}
	return nil
}
