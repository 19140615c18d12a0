// Package errors provides structured error types for the bootstrap workflow.
//
// Fatal workflow failures carry a stable ErrorCode so callers (and the run
// report) can distinguish, say, a registry readiness timeout from a node
// trust configuration failure without parsing message text.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeRegistryStartTimeout,
//	    "registry never answered its readiness probe",
//	    cause,
//	    map[string]any{
//	        "endpoint": "https://localhost:6060/v2/",
//	        "attempts": 10,
//	    },
//	)
package errors
