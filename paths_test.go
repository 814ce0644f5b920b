// paths_test.go: Configuration path resolution tests
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigPaths(t *testing.T) {
	t.Run("dir_under_user_config", func(t *testing.T) {
		dir, err := DefaultConfigDir()
		if err != nil {
			t.Fatalf("DefaultConfigDir: %v", err)
		}
		if filepath.Base(dir) != AppName {
			t.Errorf("config dir %q should end in %q", dir, AppName)
		}
	})

	t.Run("path_joins_file_name", func(t *testing.T) {
		path, err := DefaultConfigPath()
		if err != nil {
			t.Fatalf("DefaultConfigPath: %v", err)
		}
		if filepath.Base(path) != ConfigFileName {
			t.Errorf("config path %q should end in %q", path, ConfigFileName)
		}
		dir, _ := DefaultConfigDir()
		if filepath.Dir(path) != dir {
			t.Errorf("config path %q should live in %q", path, dir)
		}
	})
}

func TestEnsureDir(t *testing.T) {
	t.Run("creates_nested", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "a", "b", "c")
		if err := EnsureDir(target); err != nil {
			t.Fatalf("EnsureDir: %v", err)
		}
		info, err := os.Stat(target)
		if err != nil || !info.IsDir() {
			t.Errorf("directory not created: %v", err)
		}
	})

	t.Run("existing_is_fine", func(t *testing.T) {
		dir := t.TempDir()
		if err := EnsureDir(dir); err != nil {
			t.Errorf("EnsureDir on existing directory: %v", err)
		}
	})

	t.Run("rejects_invalid", func(t *testing.T) {
		if err := EnsureDir(""); err == nil {
			t.Error("empty path should be rejected")
		}
	})
}

func TestValidatePath(t *testing.T) {
	valid := []string{
		"/etc/work-assistant/work_assistant.conf",
		"relative/file.conf",
		"file.with..dots.conf", // dots inside a component are fine
		".",
	}
	for _, p := range valid {
		if err := ValidatePath(p); err != nil {
			t.Errorf("ValidatePath(%q) = %v, want nil", p, err)
		}
	}

	invalid := map[string]string{
		"":                   "empty",
		"a\x00b":             "null byte",
		"../escape":          "traversal",
		"dir/../../escape":   "traversal",
		"/abs/../etc/passwd": "traversal",
	}
	for p, why := range invalid {
		err := ValidatePath(p)
		if err == nil {
			t.Errorf("ValidatePath(%q) should fail (%s)", p, why)
			continue
		}
		if !strings.Contains(err.Error(), "path") {
			t.Errorf("ValidatePath(%q) error %q should mention the path problem", p, err)
		}
	}
}
