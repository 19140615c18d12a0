/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package installer renders the offline install script that finishes the
// Radius setup once the environment is staged.
package installer

import (
	"fmt"
	"log/slog"
	"os"
	"text/template"
	"time"
)

// ImageOverride maps a Helm value key to a mirrored image reference.
type ImageOverride struct {
	Key       string
	Reference string
}

// Data feeds the install script template.
type Data struct {
	GeneratedAt    string
	KubeContext    string
	RegistryAddr   string
	RadiusChart    string
	ContourChart   string
	ImageOverrides []ImageOverride
}

const scriptTemplate = `#!/usr/bin/env bash
# Installs Radius from locally staged artifacts.
# Generated {{ .GeneratedAt }}. Safe to re-run.
set -euo pipefail

KUBE_CONTEXT="{{ .KubeContext }}"
REGISTRY="{{ .RegistryAddr }}"

echo "Installing Radius from ${REGISTRY} into context ${KUBE_CONTEXT}"

helm upgrade --install radius "{{ .RadiusChart }}" \
  --kube-context "${KUBE_CONTEXT}" \
  --namespace radius-system \
  --create-namespace \
  --wait \
{{- range .ImageOverrides }}
  --set {{ .Key }}={{ .Reference }} \
{{- end }}
  --set global.imageRegistry="${REGISTRY}"

{{ if .ContourChart -}}
helm upgrade --install contour "{{ .ContourChart }}" \
  --kube-context "${KUBE_CONTEXT}" \
  --namespace radius-system \
  --set global.imageRegistry="${REGISTRY}" \
  --wait

{{ end -}}
echo "Radius installed."
`

// Generate writes the install script to path with execute permissions and
// returns the path.
func Generate(path string, data Data) (string, error) {
	if data.RadiusChart == "" {
		return "", fmt.Errorf("radius chart path is required")
	}
	if data.GeneratedAt == "" {
		data.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}

	tmpl, err := template.New("installer").Parse(scriptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse installer template: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create installer script: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return "", fmt.Errorf("failed to render installer script: %w", err)
	}

	slog.Info("installer script generated", "path", path)
	return path, nil
}
