/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the command-line interface for the spoke air-gapped
// bootstrap tool.
//
// # Overview
//
// The spoke CLI stages everything the Radius application platform needs to
// install without internet access: a local TLS registry, a Kind cluster that
// trusts it, mirrored recipe artifacts and container images, fetched Helm
// charts, and a generated installer script. It is designed for platform
// engineers preparing disconnected or restricted-network environments.
//
// # Commands
//
// up - Full bootstrap:
//
//	spoke up [--work-dir DIR] [--manifest FILE] [--skip-charts] [--skip-verify]
//
// Checks prerequisites, resets previous state, provisions certificates,
// starts the registry, fetches charts, mirrors recipes and images, creates
// the Kind cluster with registry trust, verifies connectivity, and writes
// the installer script.
//
// down - Tear down:
//
//	spoke down [--name NAME]
//
// Deletes the Kind cluster, the registry container and network, and the
// provisioned certificates. Tolerates absent resources.
//
// mirror - Re-run artifact mirroring:
//
//	spoke mirror [--recipes-only | --images-only]
//
// Mirrors recipes and images into the already running registry, isolating
// per-item failures. Useful for retrying after a partial failure.
//
// verify - Connectivity check:
//
//	spoke verify
//
// Launches a pod that pulls its image from the local registry, proving the
// cluster's trust configuration end to end.
//
// version - Build identity:
//
//	spoke version
//
// # Global Flags
//
//	--name, -n          Kind cluster name (default: radius)
//	--registry-host     Registry hostname and container name
//	--port, -p          Registry TLS port (default: 6060)
//	--network           Docker network for the registry (default: airgap)
//	--work-dir, -d      Directory for certificates, charts, installer
//	--manifest, -m      YAML manifest overriding the artifact lists
//	--format, -f        Run report format: table, yaml, json
//	--output, -o        Run report file path (default: stdout)
//	--log-level         Logging verbosity: debug, info, warn, error
//
// Every flag also reads a SPOKE_* environment variable, for example
// SPOKE_WORK_DIR or SPOKE_PORT.
//
// # Run Reports
//
// Each command emits a run report listing every step with its status
// (ok, skipped, failed), duration, and detail, plus the resulting registry
// address, kube context, mirror ratios, and generated file paths. On a
// fatal error the report covers the steps that ran before the failure.
//
// # Exit Codes
//
//	0  Success
//	1  Fatal error (structured error code logged)
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized
// packages:
//   - pkg/workflow - step orchestration and run reports
//   - pkg/config - validated configuration and artifact manifests
//   - pkg/serializer - report output formatting
//   - pkg/logging - structured logging
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/radius-project/spoke/pkg/version.Version=1.0.0'"
package cli
