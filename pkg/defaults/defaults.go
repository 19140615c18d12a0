/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package defaults

// Resource names for the local environment.
const (
	// ClusterName is the default Kind cluster name.
	ClusterName = "radius"

	// RegistryHost is the default registry hostname. It doubles as the
	// registry container name so Docker DNS resolves it on the network.
	RegistryHost = "registry.localhost"

	// RegistryPort is the default TLS port the registry listens on.
	RegistryPort = 6060

	// NetworkName is the dedicated bridge network the registry starts on.
	NetworkName = "airgap"

	// KindNetworkName is the network Kind attaches cluster nodes to.
	KindNetworkName = "kind"

	// FallbackNetworkName is used when the Kind network does not exist.
	FallbackNetworkName = "bridge"
)

// Image references.
const (
	// RegistryImage is the registry container image.
	RegistryImage = "docker.io/library/registry:2"

	// NodeImage is the Kind node image. Empty means the Kind release default.
	NodeImage = ""

	// VerifyImage is the image the connectivity pod pulls through the local
	// registry. It must be part of the default image mirror set.
	VerifyImage = "busybox:1.36"
)

// Filesystem layout under the work directory.
const (
	// CertsDirName holds tls.crt, tls.key and ca.crt.
	CertsDirName = "certs"

	// CertFileName is the registry serving certificate.
	CertFileName = "tls.crt"

	// KeyFileName is the registry private key.
	KeyFileName = "tls.key"

	// CAFileName is the staged copy of the mkcert root CA.
	CAFileName = "ca.crt"

	// ChartsDirName holds fetched chart archives and their checksums.
	ChartsDirName = "charts"

	// InstallerFileName is the generated offline installer script.
	InstallerFileName = "install-radius.sh"

	// ChecksumsFileName records sha256 sums of fetched chart archives.
	ChecksumsFileName = "checksums.txt"
)

// Node-level trust configuration paths inside Kind nodes.
const (
	// NodeCAPath is where the registry CA is mounted inside each node.
	NodeCAPath = "/etc/containerd/registry-ca.crt"

	// NodeCertsDir is the containerd certs.d directory that hosts per
	// registry hosts.toml trust stanzas.
	NodeCertsDir = "/etc/containerd/certs.d"

	// NodeHostsFile is the node hosts file receiving the registry entry.
	NodeHostsFile = "/etc/hosts"
)

// Kubernetes resources.
const (
	// VerifyNamespace is where the connectivity pod runs.
	VerifyNamespace = "default"

	// VerifyPodPrefix prefixes the generated connectivity pod name.
	VerifyPodPrefix = "registry-verify"

	// RegistryHostingConfigMap is the cluster discovery document name,
	// published in kube-public per the local registry hosting convention.
	RegistryHostingConfigMap = "local-registry-hosting"

	// RegistryHostingNamespace is the namespace of the discovery document.
	RegistryHostingNamespace = "kube-public"

	// RegistryHostingHelpURL explains the discovery document format.
	RegistryHostingHelpURL = "https://kind.sigs.k8s.io/docs/user/local-registry/"
)

// Artifact annotation keys attached to mirrored recipes.
const (
	// AnnotationSource records the original reference a mirrored recipe
	// artifact was pulled from.
	AnnotationSource = "vnd.radius.recipe.source"

	// AnnotationMirroredAt records when the artifact was mirrored (RFC 3339).
	AnnotationMirroredAt = "vnd.radius.recipe.mirrored-at"

	// RecipeArtifactType is the manifest artifact type for recipe pushes.
	RecipeArtifactType = "application/vnd.radius.recipe.v1+json"
)

// Mirror pacing. Source pulls are rate limited to stay polite to public
// registries; this is pacing, not retry.
const (
	// MirrorPullsPerSecond bounds the sustained pull rate.
	MirrorPullsPerSecond = 2

	// MirrorPullBurst bounds the instantaneous pull burst.
	MirrorPullBurst = 2
)
