/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import "time"

// Registry readiness polling. The probe runs a fixed number of attempts
// with fixed spacing; exhausting them is fatal.
const (
	// RegistryProbeAttempts is the number of readiness probe attempts.
	RegistryProbeAttempts = 10

	// RegistryProbeInterval is the spacing between readiness probes.
	RegistryProbeInterval = 2 * time.Second
)

// Connectivity pod polling.
const (
	// VerifyPollAttempts is the number of pod phase polls.
	VerifyPollAttempts = 30

	// VerifyPollInterval is the spacing between pod phase polls.
	VerifyPollInterval = 2 * time.Second

	// VerifyCleanupTimeout bounds the asynchronous deletion of the
	// connectivity pod after a successful check.
	VerifyCleanupTimeout = 30 * time.Second
)

// Cluster provisioning.
const (
	// ClusterCreateTimeout bounds Kind cluster creation, including node
	// image pulls on a cold cache.
	ClusterCreateTimeout = 5 * time.Minute

	// ClusterSettleDelay is the fixed wait after registry trust and network
	// configuration, letting DNS and containerd changes propagate before
	// anything pulls through the registry.
	ClusterSettleDelay = 15 * time.Second

	// NodeExecTimeout bounds a single command executed inside a node.
	NodeExecTimeout = 30 * time.Second
)

// Docker operations.
const (
	// DockerOpTimeout bounds individual Docker engine calls (container
	// create/remove, network inspect/connect).
	DockerOpTimeout = 30 * time.Second

	// RegistryStopTimeout is how long the engine waits for the registry
	// container to stop before killing it.
	RegistryStopTimeout = 10 * time.Second
)

// External tool invocations.
const (
	// ToolCheckTimeout bounds a prerequisite lookup or probe invocation.
	ToolCheckTimeout = 10 * time.Second

	// CertGenTimeout bounds mkcert certificate generation.
	CertGenTimeout = 30 * time.Second
)

// Artifact transfer.
const (
	// ChartFetchTimeout bounds a single chart download.
	ChartFetchTimeout = 2 * time.Minute

	// ArtifactPullTimeout bounds pulling one recipe artifact or image.
	ArtifactPullTimeout = 3 * time.Minute

	// ArtifactPushTimeout bounds pushing one artifact to the local registry.
	ArtifactPushTimeout = 2 * time.Minute
)

// Kubernetes API operations.
const (
	// K8sOpTimeout bounds individual Kubernetes API calls.
	K8sOpTimeout = 30 * time.Second
)
