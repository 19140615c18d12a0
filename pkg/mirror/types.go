/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package mirror

import (
	"fmt"
	"time"
)

// ArtifactSpec identifies one OCI artifact to mirror, either a recipe module
// or a container image. Source may carry its own tag; an explicit Tag takes
// precedence.
type ArtifactSpec struct {
	// Source is the public reference the artifact is pulled from.
	Source string `json:"source" yaml:"source"`

	// Tag is the tag to mirror. Empty means the tag embedded in Source,
	// falling back to "latest".
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// String renders the spec as a pullable reference.
func (s ArtifactSpec) String() string {
	if s.Tag == "" {
		return s.Source
	}
	return s.Source + ":" + s.Tag
}

// Outcome classifies the result of one mirror attempt.
type Outcome string

const (
	// OutcomeSuccess means the artifact reached the local registry.
	OutcomeSuccess Outcome = "success"

	// OutcomeSkipped means the artifact could not be pulled or carried no
	// usable content; nothing was pushed.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed means the artifact was pulled but the push to the
	// local registry failed.
	OutcomeFailed Outcome = "failed"
)

// Result records one mirror attempt. Exactly one Result exists per
// attempted ArtifactSpec.
type Result struct {
	// Spec is the artifact this result belongs to.
	Spec ArtifactSpec `json:"spec" yaml:"spec"`

	// LocalRef is the reference the artifact was (or would have been)
	// pushed to in the local registry.
	LocalRef string `json:"local_ref,omitempty" yaml:"local_ref,omitempty"`

	// Outcome classifies the attempt.
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// Detail carries diagnostic output for skipped and failed attempts.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`

	// Duration is how long the attempt took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Summary aggregates the results of one mirror run.
type Summary struct {
	Results []Result `json:"results" yaml:"results"`
}

// Succeeded returns the number of successful results.
func (s *Summary) Succeeded() int {
	return s.count(OutcomeSuccess)
}

// Skipped returns the number of skipped results.
func (s *Summary) Skipped() int {
	return s.count(OutcomeSkipped)
}

// Failed returns the number of failed results.
func (s *Summary) Failed() int {
	return s.count(OutcomeFailed)
}

// Total returns the number of attempted artifacts.
func (s *Summary) Total() int {
	return len(s.Results)
}

// String renders the aggregate as "succeeded/total".
func (s *Summary) String() string {
	return fmt.Sprintf("%d/%d", s.Succeeded(), s.Total())
}

func (s *Summary) count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}
