// export.go: Configuration export/import in structured formats
//
// Converts the two-level mapping to and from JSON and YAML objects of
// objects, for backup and for the assistantctl convert command. The conf
// file format in config_io.go stays the source of truth; exports carry
// the already-unescaped values.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// ExportJSON writes the mapping to path as an indented JSON object of
// objects, atomically.
func (c *ConfigStore) ExportJSON(path string) error {
	data, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		return errors.Wrap(err, ErrCodeSerialization, "JSON marshal failed")
	}
	if err := atomicWriteFile(path, append(data, '\n')); err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to write "+path)
	}
	return nil
}

// ExportYAML writes the mapping to path as a YAML document, atomically.
func (c *ConfigStore) ExportYAML(path string) error {
	data, err := yaml.Marshal(c.Snapshot())
	if err != nil {
		return errors.Wrap(err, ErrCodeSerialization, "YAML marshal failed")
	}
	if err := atomicWriteFile(path, data); err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to write "+path)
	}
	return nil
}

// ImportJSON merges a JSON object of objects from path into the store,
// overwriting existing keys.
func (c *ConfigStore) ImportJSON(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-controlled import path
	if err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to read "+path)
	}
	var sections map[string]map[string]interface{}
	if err := json.Unmarshal(data, &sections); err != nil {
		return errors.Wrap(err, ErrCodeSerialization, "invalid JSON in "+path)
	}
	c.merge(sections)
	return nil
}

// ImportYAML merges a YAML document of section maps from path into the
// store, overwriting existing keys.
func (c *ConfigStore) ImportYAML(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-controlled import path
	if err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to read "+path)
	}
	var sections map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return errors.Wrap(err, ErrCodeSerialization, "invalid YAML in "+path)
	}
	c.merge(sections)
	return nil
}

// merge overlays imported sections onto the store. Scalar values arrive
// as whatever type the decoder chose; they are stored in their canonical
// string form, matching what the typed setters would have written.
func (c *ConfigStore) merge(sections map[string]map[string]interface{}) {
	for section, keys := range sections {
		for key, value := range keys {
			c.setLoaded(section, key, fmt.Sprint(value))
		}
	}
}
