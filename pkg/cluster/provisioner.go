/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package cluster provisions the Kind cluster and wires its nodes to trust
// and resolve the local registry.
package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
	kindcluster "sigs.k8s.io/kind/pkg/cluster"
	"sigs.k8s.io/kind/pkg/cluster/nodes"
	"sigs.k8s.io/kind/pkg/cluster/nodeutils"

	"github.com/radius-project/spoke/pkg/defaults"
	"github.com/radius-project/spoke/pkg/docker"
	apperrors "github.com/radius-project/spoke/pkg/errors"
	"github.com/radius-project/spoke/pkg/k8s"
)

// Session describes a provisioned cluster.
type Session struct {
	Name                    string   `json:"name" yaml:"name"`
	Context                 string   `json:"context" yaml:"context"`
	Network                 string   `json:"network" yaml:"network"`
	Nodes                   []string `json:"nodes" yaml:"nodes"`
	RegistryIP              string   `json:"registryIP" yaml:"registryIP"`
	RegistryTrustConfigured bool     `json:"registryTrustConfigured" yaml:"registryTrustConfigured"`
}

// kindProvider is the subset of the Kind provider the provisioner drives.
type kindProvider interface {
	Create(name string, options ...kindcluster.CreateOption) error
	Delete(name, explicitKubeconfigPath string) error
	List() ([]string, error)
	ListNodes(name string) ([]nodes.Node, error)
}

// engine is the subset of docker.Engine the provisioner uses.
type engine interface {
	NetworkExists(ctx context.Context, name string) (bool, error)
	Connect(ctx context.Context, networkName, containerName string) error
	ContainerIP(ctx context.Context, containerName string, preferred ...string) (string, error)
}

type clientFactory func(kubeContext string) (kubernetes.Interface, error)

// Provisioner creates and deletes Kind clusters.
type Provisioner struct {
	provider  kindProvider
	engine    engine
	clients   clientFactory
	nodeImage string
	settle    time.Duration
}

// NewProvisioner creates a Provisioner using kind's Docker backend.
func NewProvisioner(e *docker.Engine, nodeImage string, settle time.Duration) *Provisioner {
	provider := kindcluster.NewProvider(
		kindcluster.ProviderWithDocker(),
		kindcluster.ProviderWithLogger(newSlogAdapter()),
	)
	return &Provisioner{
		provider:  provider,
		engine:    e,
		clients:   k8s.ClientForContext,
		nodeImage: nodeImage,
		settle:    settle,
	}
}

// containerd is pointed at certs.d so per-registry hosts.toml files are
// picked up without a containerd config rewrite.
const containerdPatch = `[plugins."io.containerd.grpc.v1.cri".registry]
  config_path = "` + defaults.NodeCertsDir + `"`

// Create provisions the cluster, attaches the registry to the cluster
// network, and configures registry trust on every node.
func (p *Provisioner) Create(ctx context.Context, name, registryHost string, registryPort int, caPath string) (*Session, error) {
	cfg := &v1alpha4.Cluster{
		Nodes: []v1alpha4.Node{{
			Role: v1alpha4.ControlPlaneRole,
			ExtraMounts: []v1alpha4.Mount{{
				HostPath:      caPath,
				ContainerPath: defaults.NodeCAPath,
				Readonly:      true,
			}},
		}},
		ContainerdConfigPatches: []string{containerdPatch},
	}

	opts := []kindcluster.CreateOption{
		kindcluster.CreateWithV1Alpha4Config(cfg),
		kindcluster.CreateWithWaitForReady(defaults.ClusterCreateTimeout),
		kindcluster.CreateWithDisplayUsage(false),
		kindcluster.CreateWithDisplaySalutation(false),
	}
	if p.nodeImage != "" {
		opts = append(opts, kindcluster.CreateWithNodeImage(p.nodeImage))
	}

	slog.Info("creating cluster", "name", name)
	if err := p.provider.Create(name, opts...); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodeClusterProvision, err,
			"failed to create cluster %s", name)
	}

	session := &Session{
		Name:    name,
		Context: "kind-" + name,
	}

	networkName, err := p.clusterNetwork(ctx)
	if err != nil {
		return session, err
	}
	session.Network = networkName

	if err := p.engine.Connect(ctx, networkName, registryHost); err != nil {
		return session, apperrors.Wrap(apperrors.ErrCodeTrustConfig,
			"failed to attach registry to cluster network", err)
	}

	registryIP, err := p.engine.ContainerIP(ctx, registryHost, networkName)
	if err != nil {
		return session, err
	}
	session.RegistryIP = registryIP

	clusterNodes, err := p.provider.ListNodes(name)
	if err != nil {
		return session, apperrors.Wrapf(apperrors.ErrCodeClusterProvision, err,
			"failed to list nodes of cluster %s", name)
	}
	for _, node := range clusterNodes {
		session.Nodes = append(session.Nodes, node.String())
		if err := p.configureNodeTrust(ctx, node, registryHost, registryPort, registryIP); err != nil {
			return session, err
		}
	}
	session.RegistryTrustConfigured = true

	if err := p.publishRegistryHosting(ctx, session.Context, registryHost, registryPort); err != nil {
		return session, err
	}

	// Give containerd and the kubelet a moment to pick up the restarted
	// runtime before anything schedules pods.
	slog.Info("waiting for cluster to settle", "delay", p.settle)
	select {
	case <-time.After(p.settle):
	case <-ctx.Done():
		return session, ctx.Err()
	}

	slog.Info("cluster ready", "name", name, "nodes", len(session.Nodes), "registryIP", registryIP)
	return session, nil
}

// clusterNetwork returns the network Kind attached its nodes to.
func (p *Provisioner) clusterNetwork(ctx context.Context) (string, error) {
	exists, err := p.engine.NetworkExists(ctx, defaults.KindNetworkName)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeTrustConfig,
			"failed to determine cluster network", err)
	}
	if exists {
		return defaults.KindNetworkName, nil
	}
	slog.Warn("kind network not found, falling back", "network", defaults.FallbackNetworkName)
	return defaults.FallbackNetworkName, nil
}

// configureNodeTrust makes one node resolve and trust the registry: a hosts
// entry for name resolution, hosts.toml stanzas for containerd, and a
// containerd restart to load them.
func (p *Provisioner) configureNodeTrust(ctx context.Context, node nodes.Node, registryHost string, registryPort int, registryIP string) error {
	execCtx, cancel := context.WithTimeout(ctx, defaults.NodeExecTimeout)
	defer cancel()

	hostsLine := fmt.Sprintf("%s %s", registryIP, registryHost)
	appendCmd := fmt.Sprintf("grep -qF %q %s || echo %q >> %s",
		registryHost, defaults.NodeHostsFile, hostsLine, defaults.NodeHostsFile)
	if err := node.CommandContext(execCtx, "sh", "-c", appendCmd).Run(); err != nil {
		return apperrors.Wrapf(apperrors.ErrCodeTrustConfig, err,
			"failed to add hosts entry on node %s", node.String())
	}

	content, err := renderHostsTOML(registryHost, registryPort)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeTrustConfig, "failed to render registry trust config", err)
	}
	for _, dir := range trustDirs(registryHost, registryPort) {
		dest := path.Join(defaults.NodeCertsDir, dir, "hosts.toml")
		if err := nodeutils.WriteFile(node, dest, content); err != nil {
			return apperrors.Wrapf(apperrors.ErrCodeTrustConfig, err,
				"failed to write %s on node %s", dest, node.String())
		}
	}

	if err := node.CommandContext(execCtx, "systemctl", "restart", "containerd").Run(); err != nil {
		slog.Debug("systemctl restart failed, signaling init", "node", node.String(), "error", err)
		if err := node.CommandContext(execCtx, "kill", "-s", "SIGHUP", "1").Run(); err != nil {
			return apperrors.Wrapf(apperrors.ErrCodeTrustConfig, err,
				"failed to reload containerd on node %s", node.String())
		}
	}

	slog.Debug("node trust configured", "node", node.String())
	return nil
}

// Delete tears down the cluster. Deleting an absent cluster is not an error.
func (p *Provisioner) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.provider.Delete(name, ""); err != nil {
		return apperrors.Wrapf(apperrors.ErrCodeClusterProvision, err,
			"failed to delete cluster %s", name)
	}
	slog.Info("cluster deleted", "name", name)
	return nil
}

// Exists reports whether a cluster with the given name exists.
func (p *Provisioner) Exists(name string) (bool, error) {
	clusters, err := p.provider.List()
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrCodeClusterProvision,
			"failed to list clusters", err)
	}
	for _, c := range clusters {
		if c == name {
			return true, nil
		}
	}
	return false, nil
}
