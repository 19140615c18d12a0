/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/radius-project/spoke/pkg/errors"
)

// officialPrefix is the implicit namespace Docker Hub gives official images.
// It is stripped when deriving local references so `docker.io/library/redis`
// mirrors as `redis`, matching how operators refer to the image.
const officialPrefix = "library/"

// RecipeRepository derives the local repository path and tag for a recipe
// artifact. The leading org segment of the source path is dropped:
// `ghcr.io/radius-project/recipes/local-dev/rediscaches:0.45.0` becomes
// repository `recipes/local-dev/rediscaches`, tag `0.45.0`. An explicit tag
// overrides the tag embedded in the source.
func RecipeRepository(source, tag string) (repo, resolvedTag string, err error) {
	named, err := reference.ParseNormalizedNamed(source)
	if err != nil {
		return "", "", apperrors.Wrapf(apperrors.ErrCodeInvalidRequest, err,
			"invalid recipe reference %q", source)
	}

	path := reference.Path(named)
	if idx := strings.Index(path, "/"); idx > 0 {
		repo = path[idx+1:]
	} else {
		repo = path
	}

	resolvedTag = tag
	if resolvedTag == "" {
		if tagged, ok := named.(reference.Tagged); ok {
			resolvedTag = tagged.Tag()
		} else {
			resolvedTag = "latest"
		}
	}
	return repo, resolvedTag, nil
}

// SourceReference normalizes a source plus optional tag into a pullable
// reference string.
func SourceReference(source, tag string) (string, error) {
	named, err := reference.ParseNormalizedNamed(source)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrCodeInvalidRequest, err,
			"invalid source reference %q", source)
	}
	if tag == "" {
		if _, ok := named.(reference.Tagged); ok {
			return named.String(), nil
		}
		tag = "latest"
	}
	return fmt.Sprintf("%s:%s", reference.TrimNamed(named).String(), tag), nil
}

// LocalImageRef derives the local registry reference for a container image:
// the registry address plus the source repository path, with the Docker Hub
// `library/` prefix stripped. `docker.io/rancher/mirrored-pause:3.6` against
// `localhost:6060` becomes `localhost:6060/rancher/mirrored-pause:3.6`.
func LocalImageRef(registry, source string) (string, error) {
	named, err := reference.ParseNormalizedNamed(source)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrCodeInvalidRequest, err,
			"invalid image reference %q", source)
	}

	path := strings.TrimPrefix(reference.Path(named), officialPrefix)

	tag := "latest"
	if tagged, ok := named.(reference.Tagged); ok {
		tag = tagged.Tag()
	}
	return fmt.Sprintf("%s/%s:%s", registry, path, tag), nil
}
