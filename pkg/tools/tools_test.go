/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/radius-project/spoke/pkg/errors"
)

type fakeRunner struct {
	missing map[string]bool
	caRoot  string
	caErr   error
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/local/bin/" + name, nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	if f.caErr != nil {
		return nil, f.caErr
	}
	return []byte(f.caRoot + "\n"), nil
}

func TestCheckToolsAllPresent(t *testing.T) {
	c := NewCheckerWithRunner(&fakeRunner{})

	results, err := c.CheckTools(context.Background())
	require.NoError(t, err)
	require.Len(t, results, len(requiredTools)+len(optionalTools))

	for _, tool := range results {
		assert.True(t, tool.Found, "tool %s should be found", tool.Name)
		assert.NotEmpty(t, tool.Path)
	}
}

func TestCheckToolsNamesAllMissing(t *testing.T) {
	c := NewCheckerWithRunner(&fakeRunner{missing: map[string]bool{"kind": true, "mkcert": true}})

	_, err := c.CheckTools(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeToolMissing, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "kind")
	assert.Contains(t, err.Error(), "mkcert")
}

func TestCheckToolsOptionalMissingIsNotFatal(t *testing.T) {
	c := NewCheckerWithRunner(&fakeRunner{missing: map[string]bool{"oras": true}})

	results, err := c.CheckTools(context.Background())
	require.NoError(t, err)

	var oras *Tool
	for i := range results {
		if results[i].Name == "oras" {
			oras = &results[i]
		}
	}
	require.NotNil(t, oras)
	assert.False(t, oras.Found)
	assert.True(t, oras.Optional)
}

func TestCheckCAPresent(t *testing.T) {
	caRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(caRoot, "rootCA.pem"), []byte("pem"), 0644))

	c := NewCheckerWithRunner(&fakeRunner{caRoot: caRoot})
	path, err := c.CheckCA(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(caRoot, "rootCA.pem"), path)
}

func TestCheckCAMissingRoot(t *testing.T) {
	c := NewCheckerWithRunner(&fakeRunner{caRoot: t.TempDir()})

	_, err := c.CheckCA(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCANotInstalled, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "mkcert -install")
}

func TestCheckCACommandFailure(t *testing.T) {
	c := NewCheckerWithRunner(&fakeRunner{caErr: errors.New("exec failed")})

	_, err := c.CheckCA(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCANotInstalled, apperrors.CodeOf(err))
}
