// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fsutil resolves the file paths given to the command-line tools.
package fsutil

import (
	"os"
	"os/user"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// FileExists returns whether the file exists and is not a directory, or an error if something went wrong in
// the filesystem.
func FileExists(filePath string) (bool, error) {
	info, err := os.Stat(filePath)
	if err == nil {
		return !info.IsDir(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to FileExists(%q)", filePath)
}

// ExpandHome replaces a leading "~" or "~user" by the corresponding home directory.
// Paths not starting with "~" are returned unchanged.
func ExpandHome(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	userName, rest, _ := strings.Cut(filePath[1:], "/")
	var usr *user.User
	var err error
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to lookup home directory for user in path %q", filePath)
	}
	return path.Join(usr.HomeDir, rest), nil
}

// ResolveFile expands the home directory in filePath and checks that it names an existing file.
// A missing file returns an error wrapping os.ErrNotExist.
func ResolveFile(filePath string) (string, error) {
	resolved, err := ExpandHome(filePath)
	if err != nil {
		return "", err
	}
	exists, err := FileExists(resolved)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.Wrapf(os.ErrNotExist, "file %q", resolved)
	}
	return resolved, nil
}
