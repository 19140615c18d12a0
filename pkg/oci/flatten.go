/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package oci

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Flatten moves every file under root to the top level and removes the
// emptied subdirectories, returning the resulting top-level file paths in
// sorted order. Basenames colliding across subdirectories are disambiguated
// by prefixing the sanitized directory path (modules/app.json becomes
// modules-app.json) and logged, so distinct module files never silently
// overwrite one another.
func Flatten(root string) ([]string, error) {
	taken := make(map[string]string)

	// Top-level files claim their names first.
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			taken[entry.Name()] = entry.Name()
		}
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Dir(path) == filepath.Clean(root) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		name := filepath.Base(path)
		if prev, exists := taken[name]; exists {
			prefix := sanitize(filepath.Dir(rel))
			disambiguated := prefix + "-" + name
			for n := 2; ; n++ {
				if _, clash := taken[disambiguated]; !clash {
					break
				}
				disambiguated = fmt.Sprintf("%s-%d-%s", prefix, n, name)
			}
			slog.Warn("flattening collision, keeping both files",
				"name", name,
				"existing", prev,
				"renamed", disambiguated,
			)
			name = disambiguated
		}
		taken[name] = rel

		return os.Rename(path, filepath.Join(root, name))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to flatten staging directory: %w", err)
	}

	if err := removeEmptyDirs(root); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(taken))
	for name := range taken {
		files = append(files, filepath.Join(root, name))
	}
	sort.Strings(files)
	return files, nil
}

// sanitize turns a relative directory path into a filename-safe prefix.
func sanitize(dir string) string {
	s := filepath.ToSlash(dir)
	s = strings.ReplaceAll(s, "/", "-")
	return strings.Trim(s, "-.")
}

// removeEmptyDirs deletes now-empty subdirectories left behind by Flatten.
func removeEmptyDirs(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to read staging directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
				return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
			}
		}
	}
	return nil
}
