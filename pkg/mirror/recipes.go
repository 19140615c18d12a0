/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package mirror

import (
	"context"
	"crypto/x509"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/radius-project/spoke/pkg/defaults"
	"github.com/radius-project/spoke/pkg/oci"
)

// puller stages an artifact into a directory and reports which strategy won.
type puller func(ctx context.Context, ref, destDir string) (oci.Strategy, error)

// pusher publishes staged files to the local registry.
type pusher func(ctx context.Context, opts oci.PushOptions) (*oci.PushResult, error)

// RecipeMirror copies recipe artifacts from their public sources into the
// local registry. Failures are isolated per artifact: availability and
// pull-tool compatibility vary across environments, and one unavailable
// module must not block mirroring the rest.
type RecipeMirror struct {
	registry string
	caPool   *x509.CertPool
	limiter  *rate.Limiter

	pull puller
	push pusher
	now  func() time.Time
}

// NewRecipeMirror creates a RecipeMirror pushing to the given local registry
// address, trusting it via pool. The limiter paces source pulls; nil
// disables pacing.
func NewRecipeMirror(registry string, pool *x509.CertPool, limiter *rate.Limiter) *RecipeMirror {
	return &RecipeMirror{
		registry: registry,
		caPool:   pool,
		limiter:  limiter,
		pull:     oci.Pull,
		push:     oci.PushFiles,
		now:      time.Now,
	}
}

// Mirror processes every spec in order and returns one Result per spec.
// Individual failures are recorded, never returned: a fully failed run still
// yields a nil error, with a warning that local-dev recipes will be
// unavailable.
func (m *RecipeMirror) Mirror(ctx context.Context, specs []ArtifactSpec) (*Summary, error) {
	summary := &Summary{Results: make([]Result, 0, len(specs))}

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Results = append(summary.Results, m.mirrorOne(ctx, spec))
	}

	slog.Info("recipe mirroring complete",
		"succeeded", summary.Succeeded(),
		"skipped", summary.Skipped(),
		"failed", summary.Failed(),
		"total", summary.Total(),
	)
	if summary.Succeeded() == 0 && summary.Total() > 0 {
		slog.Warn("no recipe artifacts were mirrored; local-dev recipes will be unavailable")
	}
	return summary, nil
}

func (m *RecipeMirror) mirrorOne(ctx context.Context, spec ArtifactSpec) Result {
	start := m.now()
	res := Result{Spec: spec}
	defer func() { res.Duration = time.Since(start) }()

	finish := func(outcome Outcome, detail string) Result {
		res.Outcome = outcome
		res.Detail = detail
		res.Duration = time.Since(start)
		return res
	}

	repo, tag, err := oci.RecipeRepository(spec.Source, spec.Tag)
	if err != nil {
		return finish(OutcomeSkipped, err.Error())
	}
	res.LocalRef = m.registry + "/" + repo + ":" + tag

	sourceRef, err := oci.SourceReference(spec.Source, spec.Tag)
	if err != nil {
		return finish(OutcomeSkipped, err.Error())
	}

	staging, err := os.MkdirTemp("", "spoke-recipe-*")
	if err != nil {
		return finish(OutcomeFailed, "staging directory: "+err.Error())
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return finish(OutcomeSkipped, err.Error())
		}
	}

	pullCtx, cancelPull := context.WithTimeout(ctx, defaults.ArtifactPullTimeout)
	strategy, err := m.pull(pullCtx, sourceRef, staging)
	cancelPull()
	if err != nil {
		slog.Warn("recipe pull failed, skipping", "source", sourceRef, "error", err)
		return finish(OutcomeSkipped, err.Error())
	}

	files, err := oci.Flatten(staging)
	if err != nil {
		return finish(OutcomeFailed, "extraction: "+err.Error())
	}
	modules := moduleFiles(files)
	if len(modules) == 0 {
		slog.Warn("recipe artifact carried no module files, skipping", "source", sourceRef)
		return finish(OutcomeSkipped, "no JSON module files in artifact")
	}

	pushCtx, cancelPush := context.WithTimeout(ctx, defaults.ArtifactPushTimeout)
	result, err := m.push(pushCtx, oci.PushOptions{
		Registry:   m.registry,
		Repository: repo,
		Tag:        tag,
		Root:       staging,
		Files:      modules,
		Annotations: map[string]string{
			defaults.AnnotationSource:     sourceRef,
			defaults.AnnotationMirroredAt: m.now().UTC().Format(time.RFC3339),
		},
		CAPool: m.caPool,
	})
	cancelPush()
	if err != nil {
		slog.Warn("recipe push failed, continuing",
			"source", sourceRef,
			"local", res.LocalRef,
			"error", err,
		)
		return finish(OutcomeFailed, err.Error())
	}

	slog.Info("recipe mirrored",
		"source", sourceRef,
		"local", result.Reference,
		"digest", result.Digest,
		"strategy", strategy,
		"modules", len(modules),
	)
	return finish(OutcomeSuccess, "")
}

// moduleFiles filters the staged files down to the JSON recipe modules.
func moduleFiles(files []string) []string {
	modules := make([]string, 0, len(files))
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".json") {
			modules = append(modules, f)
		}
	}
	return modules
}
