// Package logging provides structured logging for spoke commands.
//
// # Overview
//
// This package wraps the standard library slog package with project-wide
// defaults: JSON output to stderr, a module/version attribute pair on every
// record, environment-based level configuration, and source location
// tracking when running at debug level.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: detailed diagnostics with source location
//   - INFO: normal operational messages (default)
//   - WARN/WARNING: potentially problematic situations
//   - ERROR: failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended, early in main):
//
//	logging.SetDefaultStructuredLogger("spoke", version)
//	slog.Info("registry ready", "host", "registry.localhost", "port", 6060)
//
// Setting an explicit level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("spoke", version, "debug")
//
// Creating a standalone logger:
//
//	logger := logging.NewStructuredLogger("mirror", version, "warn")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls verbosity when no explicit
// level is given:
//
//	LOG_LEVEL=debug spoke up
//
// If LOG_LEVEL is not set, logging defaults to INFO.
//
// # Output Format
//
// All records are written to stderr in JSON:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "registry ready",
//	    "module": "spoke",
//	    "version": "v0.1.0",
//	    "host": "registry.localhost"
//	}
package logging
