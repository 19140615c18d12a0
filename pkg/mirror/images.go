/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package mirror

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"golang.org/x/time/rate"

	"github.com/radius-project/spoke/pkg/defaults"
	apperrors "github.com/radius-project/spoke/pkg/errors"
	"github.com/radius-project/spoke/pkg/oci"
)

// imageCopier copies one image from source to target, reporting Skipped when
// the target already holds the source digest.
type imageCopier func(ctx context.Context, source, target string) (Outcome, error)

// ImageMirror copies container images from public registries into the local
// registry. Per-image failures are warnings; a run where nothing reaches the
// registry at all is fatal, since the cluster cannot bootstrap without any
// base images.
type ImageMirror struct {
	registry string
	limiter  *rate.Limiter
	copy     imageCopier
}

// NewImageMirror creates an ImageMirror pushing to the given local registry
// address, trusting it via pool. The limiter paces source pulls and is
// shared with the recipe mirror.
func NewImageMirror(registry string, pool *x509.CertPool, limiter *rate.Limiter) *ImageMirror {
	return &ImageMirror{
		registry: registry,
		limiter:  limiter,
		copy:     newImageCopier(pool),
	}
}

// Mirror processes every image in order and returns one Result per image.
// It fails with NO_IMAGES_MIRRORED only when not a single image is present
// in the local registry afterwards (neither copied nor already there).
func (m *ImageMirror) Mirror(ctx context.Context, images []string) (*Summary, error) {
	summary := &Summary{Results: make([]Result, 0, len(images))}

	for _, source := range images {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Results = append(summary.Results, m.mirrorOne(ctx, source))
	}

	slog.Info("image mirroring complete",
		"succeeded", summary.Succeeded(),
		"skipped", summary.Skipped(),
		"failed", summary.Failed(),
		"total", summary.Total(),
	)

	if summary.Total() > 0 && summary.Succeeded()+summary.Skipped() == 0 {
		return summary, apperrors.Newf(apperrors.ErrCodeNoImagesMirrored,
			"none of %d images reached the local registry", summary.Total())
	}
	return summary, nil
}

func (m *ImageMirror) mirrorOne(ctx context.Context, source string) Result {
	start := time.Now()
	res := Result{Spec: ArtifactSpec{Source: source}}

	finish := func(outcome Outcome, detail string) Result {
		res.Outcome = outcome
		res.Detail = detail
		res.Duration = time.Since(start)
		return res
	}

	target, err := oci.LocalImageRef(m.registry, source)
	if err != nil {
		return finish(OutcomeFailed, err.Error())
	}
	res.LocalRef = target

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return finish(OutcomeFailed, err.Error())
		}
	}

	copyCtx, cancel := context.WithTimeout(ctx, defaults.ArtifactPullTimeout)
	outcome, err := m.copy(copyCtx, source, target)
	cancel()
	if err != nil {
		slog.Warn("image mirror failed, continuing", "source", source, "target", target, "error", err)
		return finish(OutcomeFailed, err.Error())
	}

	if outcome == OutcomeSkipped {
		slog.Debug("image already mirrored", "source", source, "target", target)
		return finish(OutcomeSkipped, "target already holds source digest")
	}
	slog.Info("image mirrored", "source", source, "target", target)
	return finish(OutcomeSuccess, "")
}

// newImageCopier returns the production copier: pull from the source with
// Docker keychain auth, compare digests against the target, push over a
// transport trusting the local registry CA.
func newImageCopier(pool *x509.CertPool) imageCopier {
	sourceTransport := registryTransport(nil)
	targetTransport := registryTransport(pool)

	return func(ctx context.Context, source, target string) (Outcome, error) {
		srcRef, err := name.ParseReference(source, name.WeakValidation)
		if err != nil {
			return OutcomeFailed, err
		}
		targetRef, err := name.ParseReference(target, name.WeakValidation)
		if err != nil {
			return OutcomeFailed, err
		}

		img, err := remote.Image(srcRef,
			remote.WithContext(ctx),
			remote.WithAuthFromKeychain(authn.DefaultKeychain),
			remote.WithTransport(sourceTransport),
		)
		if err != nil {
			return OutcomeFailed, err
		}
		srcDigest, err := img.Digest()
		if err != nil {
			return OutcomeFailed, err
		}

		desc, headErr := remote.Head(targetRef,
			remote.WithContext(ctx),
			remote.WithTransport(targetTransport),
		)
		if headErr == nil && desc.Digest == srcDigest {
			return OutcomeSkipped, nil
		}
		var terr *transport.Error
		if headErr != nil && !(errors.As(headErr, &terr) && terr.StatusCode == http.StatusNotFound) {
			return OutcomeFailed, headErr
		}

		if err := remote.Write(targetRef, img,
			remote.WithContext(ctx),
			remote.WithTransport(targetTransport),
		); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeSuccess, nil
	}
}

// registryTransport builds the HTTP transport for registry traffic. A
// non-nil pool replaces the system roots for the local registry.
func registryTransport(pool *x509.CertPool) http.RoundTripper {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if pool != nil {
		tlsCfg.RootCAs = pool
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		TLSClientConfig:       tlsCfg,
	}
}
