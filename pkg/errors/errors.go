/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeToolMissing indicates a required external tool is not on PATH.
	ErrCodeToolMissing ErrorCode = "TOOL_MISSING"
	// ErrCodeCANotInstalled indicates the mkcert root CA is not installed.
	ErrCodeCANotInstalled ErrorCode = "CA_NOT_INSTALLED"
	// ErrCodeCertProvision indicates TLS certificate generation failed.
	ErrCodeCertProvision ErrorCode = "CERT_PROVISION"
	// ErrCodeRegistryStartTimeout indicates the local registry never became ready
	// within its bounded readiness window.
	ErrCodeRegistryStartTimeout ErrorCode = "REGISTRY_START_TIMEOUT"
	// ErrCodeChartFetch indicates a Helm chart download failed.
	ErrCodeChartFetch ErrorCode = "CHART_FETCH"
	// ErrCodeNoImagesMirrored indicates not a single image reached the local
	// registry; the cluster cannot bootstrap without base images.
	ErrCodeNoImagesMirrored ErrorCode = "NO_IMAGES_MIRRORED"
	// ErrCodeClusterProvision indicates cluster creation or teardown failed.
	ErrCodeClusterProvision ErrorCode = "CLUSTER_PROVISION"
	// ErrCodeRegistryIPUnresolved indicates the registry's address could not be
	// determined on the cluster network.
	ErrCodeRegistryIPUnresolved ErrorCode = "REGISTRY_IP_UNRESOLVED"
	// ErrCodeTrustConfig indicates node-level registry trust configuration failed.
	ErrCodeTrustConfig ErrorCode = "TRUST_CONFIG"
	// ErrCodeConnectivityFailed indicates the registry connectivity pod ended in
	// a failed phase.
	ErrCodeConnectivityFailed ErrorCode = "CONNECTIVITY_FAILED"
	// ErrCodeConnectivityTimeout indicates the connectivity pod never reached a
	// terminal phase within its polling budget.
	ErrCodeConnectivityTimeout ErrorCode = "CONNECTIVITY_TIMEOUT"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf extracts the ErrorCode from err or any error in its chain.
// Errors without a StructuredError in the chain report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var structured *StructuredError
	if stderrors.As(err, &structured) {
		return structured.Code
	}
	return ErrCodeInternal
}
