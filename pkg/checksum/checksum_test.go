/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	chart := filepath.Join(dir, "radius-0.45.0.tgz")
	if err := os.WriteFile(chart, []byte("archive-bytes"), 0644); err != nil {
		t.Fatalf("failed to create chart file: %v", err)
	}

	path, err := Write(context.Background(), dir, []string{chart})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read checksums file: %v", err)
	}

	sum := sha256.Sum256([]byte("archive-bytes"))
	want := hex.EncodeToString(sum[:]) + "  radius-0.45.0.tgz\n"
	if string(data) != want {
		t.Errorf("checksums content = %q, want %q", string(data), want)
	}
}

func TestWriteMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Write(context.Background(), dir, []string{filepath.Join(dir, "absent.tgz")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "absent.tgz") {
		t.Errorf("error should name the missing file, got %v", err)
	}
}

func TestWriteCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Write(ctx, t.TempDir(), nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
