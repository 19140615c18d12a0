/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeToolMissing, "kind not found on PATH")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeToolMissing {
		t.Errorf("expected code %s, got %s", ErrCodeToolMissing, err.Code)
	}
	if err.Message != "kind not found on PATH" {
		t.Errorf("expected message 'kind not found on PATH', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCodeChartFetch, "chart %s@%s unavailable", "radius", "0.45.0")
	if err.Message != "chart radius@0.45.0 unavailable" {
		t.Errorf("unexpected message: %s", err.Message)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeClusterProvision, "cluster create failed", cause)

	if err.Code != ErrCodeClusterProvision {
		t.Errorf("expected code %s, got %s", ErrCodeClusterProvision, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapf(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf(ErrCodeRegistryStartTimeout, cause, "no response after %d attempts", 10)

	if err.Message != "no response after 10 attempts" {
		t.Errorf("unexpected message: %s", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("no endpoints")
	ctx := map[string]any{
		"container": "registry.localhost",
		"network":   "kind",
	}

	err := WrapWithContext(ErrCodeRegistryIPUnresolved, "registry address unknown", cause, ctx)

	if err.Code != ErrCodeRegistryIPUnresolved {
		t.Errorf("expected code %s, got %s", ErrCodeRegistryIPUnresolved, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["network"] != "kind" {
		t.Errorf("expected network to be kind")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeCANotInstalled, "run mkcert -install first"),
			expected: "[CA_NOT_INSTALLED] run mkcert -install first",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{
			name: "structured error",
			err:  New(ErrCodeNoImagesMirrored, "0 of 12"),
			want: ErrCodeNoImagesMirrored,
		},
		{
			name: "structured error in chain",
			err:  fmt.Errorf("step failed: %w", New(ErrCodeConnectivityTimeout, "no terminal phase")),
			want: ErrCodeConnectivityTimeout,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeToolMissing,
		ErrCodeCANotInstalled,
		ErrCodeCertProvision,
		ErrCodeRegistryStartTimeout,
		ErrCodeChartFetch,
		ErrCodeNoImagesMirrored,
		ErrCodeClusterProvision,
		ErrCodeRegistryIPUnresolved,
		ErrCodeTrustConfig,
		ErrCodeConnectivityFailed,
		ErrCodeConnectivityTimeout,
		ErrCodeInvalidRequest,
		ErrCodeInternal,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}
