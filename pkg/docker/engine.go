/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package docker wraps the Docker SDK with the narrow set of operations the
// bootstrap needs: networks, a long-running container, and address lookup.
package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	apperrors "github.com/radius-project/spoke/pkg/errors"
)

// api is the subset of the Docker client the engine uses. Narrowing the
// surface keeps tests free of a live daemon.
type api interface {
	NetworkInspect(ctx context.Context, networkID string, options network.InspectOptions) (network.Inspect, error)
	NetworkCreate(ctx context.Context, name string, options network.CreateOptions) (network.CreateResponse, error)
	NetworkRemove(ctx context.Context, networkID string) error
	NetworkConnect(ctx context.Context, networkID, containerID string, config *network.EndpointSettings) error
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	Close() error
}

// Engine performs Docker operations for the bootstrap workflow.
type Engine struct {
	client api
}

// NewEngine connects to the Docker daemon using environment configuration.
func NewEngine() (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create docker client", err)
	}
	return &Engine{client: cli}, nil
}

// Close releases the underlying client connection.
func (e *Engine) Close() error {
	return e.client.Close()
}

// EnsureNetwork creates the named bridge network if it does not exist.
func (e *Engine) EnsureNetwork(ctx context.Context, name string) error {
	_, err := e.client.NetworkInspect(ctx, name, network.InspectOptions{})
	if err == nil {
		slog.Debug("network exists", "name", name)
		return nil
	}
	if !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to inspect network %s: %w", name, err)
	}

	if _, err := e.client.NetworkCreate(ctx, name, network.CreateOptions{Driver: "bridge"}); err != nil {
		return fmt.Errorf("failed to create network %s: %w", name, err)
	}
	slog.Info("network created", "name", name)
	return nil
}

// NetworkExists reports whether the named network exists.
func (e *Engine) NetworkExists(ctx context.Context, name string) (bool, error) {
	_, err := e.client.NetworkInspect(ctx, name, network.InspectOptions{})
	if err == nil {
		return true, nil
	}
	if cerrdefs.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to inspect network %s: %w", name, err)
}

// RemoveNetwork removes the named network, tolerating its absence.
func (e *Engine) RemoveNetwork(ctx context.Context, name string) error {
	if err := e.client.NetworkRemove(ctx, name); err != nil && !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove network %s: %w", name, err)
	}
	return nil
}

// RemoveContainer force-removes the named container, tolerating its absence.
func (e *Engine) RemoveContainer(ctx context.Context, name string) error {
	err := e.client.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
	if err != nil && !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove container %s: %w", name, err)
	}
	return nil
}

// Connect attaches a container to a network. Already-connected containers
// are not an error; the daemon's message for that case varies by version.
func (e *Engine) Connect(ctx context.Context, networkName, containerName string) error {
	err := e.client.NetworkConnect(ctx, networkName, containerName, &network.EndpointSettings{})
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "already exists in network") ||
		strings.Contains(msg, "already connected") ||
		strings.Contains(msg, "endpoint with name") {
		slog.Debug("container already connected", "container", containerName, "network", networkName)
		return nil
	}
	return fmt.Errorf("failed to connect %s to network %s: %w", containerName, networkName, err)
}

// RunSpec describes a container to create and start.
type RunSpec struct {
	Name          string
	Image         string
	Env           []string
	Binds         []string
	PortBindings  nat.PortMap
	ExposedPorts  nat.PortSet
	Network       string
	NetworkAlias  []string
	RestartAlways bool
}

// RunContainer pulls the image, creates the container, and starts it.
func (e *Engine) RunContainer(ctx context.Context, spec RunSpec) (string, error) {
	if err := e.pullImage(ctx, spec.Image); err != nil {
		return "", err
	}

	cfg := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		ExposedPorts: spec.ExposedPorts,
	}
	hostCfg := &container.HostConfig{
		Binds:        spec.Binds,
		PortBindings: spec.PortBindings,
	}
	if spec.RestartAlways {
		hostCfg.RestartPolicy = container.RestartPolicy{Name: container.RestartPolicyAlways}
	}

	var netCfg *network.NetworkingConfig
	if spec.Network != "" {
		netCfg = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {Aliases: spec.NetworkAlias},
			},
		}
	}

	resp, err := e.client.ContainerCreate(ctx, cfg, hostCfg, netCfg, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container %s: %w", spec.Name, err)
	}
	if err := e.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container %s: %w", spec.Name, err)
	}
	slog.Info("container started", "name", spec.Name, "id", resp.ID[:12])
	return resp.ID, nil
}

func (e *Engine) pullImage(ctx context.Context, ref string) error {
	reader, err := e.client.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer reader.Close()
	// The pull completes only once the progress stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to read pull response for %s: %w", ref, err)
	}
	return nil
}

// ContainerIP resolves a container's address, trying each preferred network
// by ID, then by name, before falling back to the first network with an
// address.
func (e *Engine) ContainerIP(ctx context.Context, containerName string, preferred ...string) (string, error) {
	resp, err := e.client.ContainerInspect(ctx, containerName)
	if err != nil {
		return "", fmt.Errorf("failed to inspect container %s: %w", containerName, err)
	}
	if resp.NetworkSettings == nil || len(resp.NetworkSettings.Networks) == 0 {
		return "", apperrors.Newf(apperrors.ErrCodeRegistryIPUnresolved,
			"container %s is not attached to any network", containerName)
	}

	for _, name := range preferred {
		// The endpoint map is keyed by network name, but an endpoint can
		// carry a stale name after a network is recreated; the ID match
		// catches those.
		if inspect, err := e.client.NetworkInspect(ctx, name, network.InspectOptions{}); err == nil && inspect.ID != "" {
			for _, ep := range resp.NetworkSettings.Networks {
				if ep.NetworkID == inspect.ID && ep.IPAddress != "" {
					return ep.IPAddress, nil
				}
			}
		}
		if ep, ok := resp.NetworkSettings.Networks[name]; ok && ep.IPAddress != "" {
			return ep.IPAddress, nil
		}
	}
	for name, ep := range resp.NetworkSettings.Networks {
		if ep.IPAddress != "" {
			slog.Debug("using fallback network address", "container", containerName, "network", name)
			return ep.IPAddress, nil
		}
	}
	return "", apperrors.Newf(apperrors.ErrCodeRegistryIPUnresolved,
		"no network of container %s reports an address", containerName)
}
