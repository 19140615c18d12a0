/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package checksum records SHA256 sums for fetched artifacts so an
// air-gapped operator can verify what was staged.
package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/radius-project/spoke/pkg/defaults"
)

// Write creates a checksums file in dir containing the SHA256 sum of every
// given file, one per line in `<hex>  <relative path>` form (the sha256sum
// tool's format, so `sha256sum -c` verifies it).
func Write(ctx context.Context, dir string, files []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := make([]string, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s for checksum: %w", file, err)
		}

		sum := sha256.Sum256(data)
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			rel = file
		}
		lines = append(lines, fmt.Sprintf("%s  %s", hex.EncodeToString(sum[:]), rel))
	}

	path := filepath.Join(dir, defaults.ChecksumsFileName)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write checksums: %w", err)
	}

	slog.Debug("checksums written", "file_count", len(lines), "path", path)
	return path, nil
}
