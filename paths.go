// paths.go: Directory provider for the Work Assistant configuration
//
// Resolves the default configuration location and makes sure it exists.
// The config store calls this only to find its default file path and to
// create the directory on first run; any failure here is an
// initialization failure for the caller.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
)

// ConfigFileName is the default name of the configuration file inside the
// configuration directory.
const ConfigFileName = "work_assistant.conf"

// DefaultConfigDir returns the per-user configuration directory for the
// application, without creating it.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, ErrCodeInvalidPath, "cannot resolve user config directory")
	}
	return filepath.Join(base, AppName), nil
}

// DefaultConfigPath returns <config-dir>/work_assistant.conf.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// EnsureDir creates the directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0750); err != nil {
		return errors.Wrap(err, ErrCodeIOError, "cannot create directory "+path)
	}
	return nil
}

// EnsureConfigDir resolves the default configuration directory, creates it
// when missing, and returns it.
func EnsureConfigDir() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// ValidatePath rejects paths that are empty, contain null bytes, or climb
// out of their base with parent-directory components. Config and data
// paths come from the command line and the config file, so they get the
// same screening the rest of the file I/O relies on.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return errors.New(ErrCodeInvalidPath, "path contains null byte")
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return errors.New(ErrCodeInvalidPath, "path contains parent directory traversal: "+path)
		}
	}
	return nil
}
