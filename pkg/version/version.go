/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package version carries the build identity injected at link time.
package version

var (
	// Version is the semantic version of the build, set via ldflags.
	Version = "dev"

	// Commit is the git commit the binary was built from, set via ldflags.
	Commit = "unknown"

	// Date is the build timestamp, set via ldflags.
	Date = "unknown"
)

// Info groups the build identity for reporting.
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// Get returns the build identity of the running binary.
func Get() Info {
	return Info{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
	}
}
