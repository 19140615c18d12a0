/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package cluster

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/radius-project/spoke/pkg/defaults"
)

// hostsFile models a containerd certs.d hosts.toml document.
type hostsFile struct {
	Server string               `toml:"server"`
	Host   map[string]hostEntry `toml:"host"`
}

type hostEntry struct {
	CA           string   `toml:"ca,omitempty"`
	Capabilities []string `toml:"capabilities,omitempty"`
}

// renderHostsTOML produces the hosts.toml content pointing a registry name at
// the TLS endpoint, trusting the CA staged on the node.
func renderHostsTOML(registryHost string, port int) (string, error) {
	server := fmt.Sprintf("https://%s:%d", registryHost, port)
	doc := hostsFile{
		Server: server,
		Host: map[string]hostEntry{
			server: {
				CA:           defaults.NodeCAPath,
				Capabilities: []string{"pull", "resolve"},
			},
		},
	}
	out, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to render hosts.toml: %w", err)
	}
	return string(out), nil
}

// trustDirs returns the certs.d directory names that must carry the trust
// stanza: the name the cluster uses on its network and the localhost alias
// manifests commonly reference.
func trustDirs(registryHost string, port int) []string {
	return []string{
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("%s:%d", registryHost, port),
	}
}
