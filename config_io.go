// config_io.go: Configuration file load/save for the Work Assistant
//
// The on-disk format is line-oriented text: [section] headers, key = value
// lines, # or ; comments. A key containing a dot before the first '='
// names its section explicitly (web.port = 8080), overriding the current
// header context. Only backslash, newline and tab are escaped in values;
// '=', '[', ']', '#' and ';' pass through verbatim, so a value beginning
// with one of them can be ambiguous. That is an accepted format
// limitation, kept for compatibility with existing files.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agilira/go-timecache"
)

// LoadConfig reads the configuration file at path into the store. A
// missing file is not an error: existing (default) values simply stand.
// Malformed key-value lines are reported on the diagnostics channel and
// skipped; scanning always runs to the end of the file. Returns false only
// when the file exists but cannot be read.
func (c *ConfigStore) LoadConfig(path string) bool {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-controlled config path
	if err != nil {
		if os.IsNotExist(err) {
			c.diag.Statusf("Config file %s not found, using defaults", path)
			return true
		}
		c.diag.Errorf("Cannot read config file %s: %v", path, err)
		return false
	}

	currentSection := ""
	for lineNum, raw := range strings.Split(string(data), "\n") {
		line := strings.Trim(raw, " \t\r")
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}

		eq := strings.Index(line, "=")
		if eq < 0 {
			c.diag.Warnf("Invalid config line %d in %s: %s", lineNum+1, path, line)
			continue
		}

		key := strings.Trim(line[:eq], " \t")
		value := strings.Trim(line[eq+1:], " \t")

		section := currentSection
		if dot := strings.Index(key, "."); dot >= 0 {
			section = key[:dot]
			key = key[dot+1:]
		}
		if key == "" {
			c.diag.Warnf("Invalid config line %d in %s: empty key", lineNum+1, path)
			continue
		}

		c.setLoaded(section, key, UnescapeValue(value))
	}

	if c.audit != nil {
		c.audit.LogConfigFile("config_loaded", path)
	}
	return true
}

// SaveConfig writes the store back to path, one [section] group at a
// time with sorted sections and keys so a save/load cycle reproduces the
// same mapping. The write is atomic: content goes to a temporary file in
// the same directory which is then renamed over the destination. Returns
// false when the destination cannot be written.
func (c *ConfigStore) SaveConfig(path string) bool {
	var b strings.Builder
	b.WriteString("# Work Assistant configuration\n")
	b.WriteString("# Saved " + timecache.CachedTime().Format(time.RFC3339) + "\n")

	for _, section := range c.Sections() {
		b.WriteString("\n[" + section + "]\n")
		for _, key := range c.Keys(section) {
			b.WriteString(key + " = " + EscapeValue(c.sections[section][key]) + "\n")
		}
	}

	if err := atomicWriteFile(path, []byte(b.String())); err != nil {
		c.diag.Errorf("Cannot write config file %s: %v", path, err)
		return false
	}

	if c.audit != nil {
		c.audit.LogConfigFile("config_saved", path)
	}
	return true
}

// setLoaded stores a value without emitting per-key audit events; file
// loads are audited once as a whole.
func (c *ConfigStore) setLoaded(section, key, value string) {
	sec, ok := c.sections[section]
	if !ok {
		sec = make(map[string]string)
		c.sections[section] = sec
	}
	sec[key] = value
}

// EscapeValue encodes the three special characters of the file format:
// backslash first, then newline and tab.
func EscapeValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}

// UnescapeValue decodes the sequences written by EscapeValue. It scans
// left to right in a single pass; sequential substring replacement would
// mis-decode inputs like `\\n` (an escaped backslash followed by a literal
// n), breaking the Unescape(Escape(s)) == s round-trip.
func UnescapeValue(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

// atomicWriteFile writes data to a temporary file in the destination's
// directory and renames it into place, so an interrupted save never leaves
// a truncated config behind.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tempPath := filepath.Join(dir, "."+base+".tmp."+fmt.Sprintf("%d", time.Now().UnixNano()))

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("failed to rename temp file (cleanup failed: %v): %w", removeErr, err)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
