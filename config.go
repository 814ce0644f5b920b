// config.go: Two-level configuration store for the Work Assistant
//
// The store is a plain nested string mapping (section -> key -> value).
// Values carry no type tag: typed accessors are pure conversions over the
// string representation, writing canonical forms and degrading to the
// caller's default on any read that fails to convert. The same key read as
// int versus bool may therefore disagree; that is a caller-discipline
// contract, not something the store enforces.
//
// The store owns no locking. The described design never mutates one
// instance from more than one goroutine; callers introducing concurrency
// must serialize access externally.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"sort"
	"strconv"
	"strings"
)

// ConfigStore holds the section/key/value mapping backing the Work
// Assistant configuration file. Create one with NewConfigStore, optionally
// seed it with SetDefaultConfiguration, then LoadConfig to overlay the
// on-disk state.
type ConfigStore struct {
	sections map[string]map[string]string

	diag  *Diagnostics
	audit *AuditLogger // optional; nil disables auditing
}

// NewConfigStore creates an empty configuration store bound to the given
// diagnostics channel. A nil channel falls back to stdout/stderr.
func NewConfigStore(diag *Diagnostics) *ConfigStore {
	if diag == nil {
		diag = NewDiagnostics()
	}
	return &ConfigStore{
		sections: make(map[string]map[string]string),
		diag:     diag,
	}
}

// WithAudit attaches an audit logger recording configuration lifecycle
// events (loads, saves, explicit sets). Nil detaches it.
func (c *ConfigStore) WithAudit(audit *AuditLogger) *ConfigStore {
	c.audit = audit
	return c
}

// SetString stores a raw string value under section/key, creating the
// section on first use.
func (c *ConfigStore) SetString(section, key, value string) {
	sec, ok := c.sections[section]
	if !ok {
		sec = make(map[string]string)
		c.sections[section] = sec
	}
	old, existed := sec[key]
	sec[key] = value
	if c.audit != nil && (!existed || old != value) {
		c.audit.LogConfigSet(section, key, old, value)
	}
}

// SetInt stores an integer in canonical decimal form.
func (c *ConfigStore) SetInt(section, key string, value int) {
	c.SetString(section, key, strconv.Itoa(value))
}

// SetBool stores a boolean as "true" or "false".
func (c *ConfigStore) SetBool(section, key string, value bool) {
	c.SetString(section, key, strconv.FormatBool(value))
}

// SetDouble stores a float in locale-invariant decimal form.
func (c *ConfigStore) SetDouble(section, key string, value float64) {
	c.SetString(section, key, strconv.FormatFloat(value, 'g', -1, 64))
}

// GetString returns the stored value, or the supplied default when the
// section or key is absent.
func (c *ConfigStore) GetString(section, key, defaultValue string) string {
	if v, ok := c.lookup(section, key); ok {
		return v
	}
	return defaultValue
}

// GetInt returns the stored value parsed as a decimal integer, degrading
// to the supplied default on a missing key or failed conversion. Typed
// reads never fail.
func (c *ConfigStore) GetInt(section, key string, defaultValue int) int {
	v, ok := c.lookup(section, key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool returns the stored value interpreted as a boolean. Parsing is
// case-insensitive: true/1/yes/on read as true; a missing key yields the
// supplied default; any other stored value reads as false.
func (c *ConfigStore) GetBool(section, key string, defaultValue bool) bool {
	v, ok := c.lookup(section, key)
	if !ok {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

// GetDouble returns the stored value parsed as a float, degrading to the
// supplied default on a missing key or failed conversion.
func (c *ConfigStore) GetDouble(section, key string, defaultValue float64) float64 {
	v, ok := c.lookup(section, key)
	if !ok {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// HasSection reports whether the section exists.
func (c *ConfigStore) HasSection(section string) bool {
	_, ok := c.sections[section]
	return ok
}

// HasKey reports whether section/key holds a value.
func (c *ConfigStore) HasKey(section, key string) bool {
	_, ok := c.lookup(section, key)
	return ok
}

// RemoveKey deletes section/key, reporting whether it existed. An emptied
// section is kept; section presence is meaningful to validation.
func (c *ConfigStore) RemoveKey(section, key string) bool {
	sec, ok := c.sections[section]
	if !ok {
		return false
	}
	if _, ok := sec[key]; !ok {
		return false
	}
	delete(sec, key)
	return true
}

// Sections returns all section names in sorted order.
func (c *ConfigStore) Sections() []string {
	names := make([]string, 0, len(c.sections))
	for name := range c.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keys returns the key names of a section in sorted order, or nil when
// the section is absent.
func (c *ConfigStore) Keys(section string) []string {
	sec, ok := c.sections[section]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(sec))
	for k := range sec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes all sections and keys.
func (c *ConfigStore) Clear() {
	c.sections = make(map[string]map[string]string)
}

// Snapshot returns a deep copy of the mapping as nested maps, for export
// and for equality checks in tests.
func (c *ConfigStore) Snapshot() map[string]map[string]string {
	out := make(map[string]map[string]string, len(c.sections))
	for name, sec := range c.sections {
		cp := make(map[string]string, len(sec))
		for k, v := range sec {
			cp[k] = v
		}
		out[name] = cp
	}
	return out
}

func (c *ConfigStore) lookup(section, key string) (string, bool) {
	sec, ok := c.sections[section]
	if !ok {
		return "", false
	}
	v, ok := sec[key]
	return v, ok
}
