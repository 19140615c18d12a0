// Package defaults provides centralized configuration constants for the
// bootstrap workflow.
//
// This package defines resource names, ports, image references, polling
// parameters, and timeout values used across the codebase. Centralizing
// these values ensures consistency and makes tuning easier.
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/radius-project/spoke/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.DockerOpTimeout)
//	defer cancel()
//
// # Polling Guidelines
//
// The registry readiness probe and the connectivity pod check are defined
// as exact attempt counts with fixed spacing, not open-ended deadlines, so
// tests and operators can reason about the worst-case wall time of a
// failed run:
//
//   - Registry readiness: 10 attempts x 2s (about 20s worst case)
//   - Pod phase polling: 30 attempts x 2s (about 60s worst case)
package defaults
