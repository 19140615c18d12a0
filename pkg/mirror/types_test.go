/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package mirror

import "testing"

func TestSummaryCounts(t *testing.T) {
	t.Parallel()

	s := &Summary{Results: []Result{
		{Outcome: OutcomeSuccess},
		{Outcome: OutcomeSuccess},
		{Outcome: OutcomeSkipped},
		{Outcome: OutcomeFailed},
	}}

	if got := s.Succeeded(); got != 2 {
		t.Errorf("Succeeded() = %d, want 2", got)
	}
	if got := s.Skipped(); got != 1 {
		t.Errorf("Skipped() = %d, want 1", got)
	}
	if got := s.Failed(); got != 1 {
		t.Errorf("Failed() = %d, want 1", got)
	}
	if got := s.Total(); got != 4 {
		t.Errorf("Total() = %d, want 4", got)
	}
	if got := s.String(); got != "2/4" {
		t.Errorf("String() = %q, want \"2/4\"", got)
	}
}

func TestArtifactSpecString(t *testing.T) {
	t.Parallel()

	spec := ArtifactSpec{Source: "ghcr.io/radius-project/recipes/local-dev/rediscaches", Tag: "0.45.0"}
	want := "ghcr.io/radius-project/recipes/local-dev/rediscaches:0.45.0"
	if got := spec.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	bare := ArtifactSpec{Source: "ghcr.io/radius-project/recipes/local-dev/rediscaches:0.45.0"}
	if got := bare.String(); got != bare.Source {
		t.Errorf("String() = %q, want source unchanged", got)
	}
}
