/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer renders command results in JSON, YAML, or a flattened
// human-readable table, to stdout or a file.
package serializer

import "context"

// Serializer writes a value in some output format.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// Closer is implemented by serializers that hold resources, such as an
// open output file.
type Closer interface {
	Close() error
}
