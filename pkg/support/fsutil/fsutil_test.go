// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"os"
	"os/user"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	got, err := ExpandHome("/tmp/program.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/program.yaml", got)

	usr, err := user.Current()
	require.NoError(t, err)
	got, err = ExpandHome("~/programs/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, path.Join(usr.HomeDir, "programs/a.yaml"), got)
	got, err = ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, path.Clean(usr.HomeDir), got)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "program.yaml")
	require.NoError(t, os.WriteFile(file, []byte("nodes: []\n"), 0o644))

	got, err := ResolveFile(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)

	_, err = ResolveFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	// Directories are not files.
	_, err = ResolveFile(dir)
	require.ErrorIs(t, err, os.ErrNotExist)
}
