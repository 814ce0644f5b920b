// Command handlers for the assistantctl CLI
//
// Each handler loads the configuration file named on the command line,
// performs one operation on the store and, for mutating commands, saves
// the file back atomically.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"

	assistant "github.com/workassist/assistant"
)

// handleConfigGet prints the value stored under <section.key>.
func (m *Manager) handleConfigGet(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	section, key, err := splitDottedKey(ctx.GetArg(1))
	if err != nil {
		return err
	}

	store, err := m.loadStore(filePath, false)
	if err != nil {
		return err
	}

	if !store.HasKey(section, key) {
		return errors.New(assistant.ErrCodeInvalidConfig,
			fmt.Sprintf("key '%s.%s' not found in %s", section, key, filePath))
	}
	m.diag.Statusf("%s", store.GetString(section, key, ""))
	return nil
}

// handleConfigSet stores a value under <section.key> and saves the file.
// A missing file is created.
func (m *Manager) handleConfigSet(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	section, key, err := splitDottedKey(ctx.GetArg(1))
	if err != nil {
		return err
	}
	value := ctx.GetArg(2)

	store, err := m.loadStore(filePath, true)
	if err != nil {
		return err
	}

	store.SetString(section, key, value)
	if !store.SaveConfig(filePath) {
		return errors.New(assistant.ErrCodeIOError, "failed to write "+filePath)
	}
	m.diag.Statusf("Set %s.%s = %s in %s", section, key, value, filePath)
	return nil
}

// handleConfigRemove drops a key and saves the file.
func (m *Manager) handleConfigRemove(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	section, key, err := splitDottedKey(ctx.GetArg(1))
	if err != nil {
		return err
	}

	store, err := m.loadStore(filePath, false)
	if err != nil {
		return err
	}

	if !store.RemoveKey(section, key) {
		return errors.New(assistant.ErrCodeInvalidConfig,
			fmt.Sprintf("key '%s.%s' not found in %s", section, key, filePath))
	}
	if !store.SaveConfig(filePath) {
		return errors.New(assistant.ErrCodeIOError, "failed to write "+filePath)
	}
	m.diag.Statusf("Removed %s.%s from %s", section, key, filePath)
	return nil
}

// handleConfigList prints all keys, grouped per section or limited to one.
func (m *Manager) handleConfigList(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	only := ctx.GetFlagString("section")

	store, err := m.loadStore(filePath, false)
	if err != nil {
		return err
	}

	sections := store.Sections()
	if only != "" {
		if !store.HasSection(only) {
			return errors.New(assistant.ErrCodeInvalidConfig,
				fmt.Sprintf("section '%s' not found in %s", only, filePath))
		}
		sections = []string{only}
	}

	if len(sections) == 0 {
		m.diag.Statusf("No configuration keys found")
		return nil
	}
	for _, section := range sections {
		m.diag.Statusf("[%s]", section)
		for _, key := range store.Keys(section) {
			m.diag.Statusf("  %s = %s", key, store.GetString(section, key, ""))
		}
	}
	return nil
}

// handleConfigValidate runs the fixed validation checks against the file.
func (m *Manager) handleConfigValidate(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)

	store, err := m.loadStore(filePath, false)
	if err != nil {
		return err
	}

	result := store.Validate()
	m.diag.Statusf("%s: %s", filePath, result.String())
	return result.ValidationError()
}

// handleConfigInit writes a fresh configuration file with the full
// default section set.
func (m *Manager) handleConfigInit(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	force := ctx.GetFlagBool("force")

	if _, err := os.Stat(filePath); err == nil && !force {
		return errors.New(assistant.ErrCodeIOError,
			fmt.Sprintf("file already exists: %s (use --force to overwrite)", filePath))
	}

	store := assistant.NewConfigStore(m.diag).WithAudit(m.auditLogger)
	store.SetDefaultConfiguration()
	if !store.SaveConfig(filePath) {
		return errors.New(assistant.ErrCodeIOError, "failed to write "+filePath)
	}
	m.diag.Statusf("Created configuration: %s", filePath)
	return nil
}

// handleConfigConvert rewrites a configuration file in another format.
func (m *Manager) handleConfigConvert(ctx *orpheus.Context) error {
	inputPath := ctx.GetArg(0)
	outputPath := ctx.GetArg(1)
	toFormat := detectFormat(outputPath, ctx.GetFlagString("to"))
	if toFormat == formatUnknown {
		return errors.New(assistant.ErrCodeInvalidConfig,
			"cannot determine output format for "+outputPath)
	}

	store, err := m.loadStoreAnyFormat(inputPath)
	if err != nil {
		return err
	}

	switch toFormat {
	case formatJSON:
		err = store.ExportJSON(outputPath)
	case formatYAML:
		err = store.ExportYAML(outputPath)
	default:
		if !store.SaveConfig(outputPath) {
			err = errors.New(assistant.ErrCodeIOError, "failed to write "+outputPath)
		}
	}
	if err != nil {
		return err
	}
	m.diag.Statusf("Converted %s -> %s (%s)", inputPath, outputPath, toFormat)
	return nil
}

// handleAuditQuery prints recent audit events.
func (m *Manager) handleAuditQuery(ctx *orpheus.Context) error {
	if m.auditLogger == nil {
		return errors.New(assistant.ErrCodeInvalidAudit, "audit logging not enabled")
	}

	window, err := parseExtendedDuration(ctx.GetFlagString("since"))
	if err != nil {
		return errors.Wrap(err, assistant.ErrCodeInvalidArgument, "invalid --since value")
	}

	events, err := m.auditLogger.Query(time.Now().Add(-window), ctx.GetFlagString("event"), ctx.GetFlagInt("limit"))
	if err != nil {
		return errors.Wrap(err, assistant.ErrCodeInvalidAudit, "audit query failed")
	}

	if len(events) == 0 {
		m.diag.Statusf("No audit events in the last %v", window)
		return nil
	}
	for _, e := range events {
		line := fmt.Sprintf("%s  %-8s %s", e.Timestamp.Format(time.RFC3339), e.Level, e.Event)
		if e.Section != "" || e.Key != "" {
			line += fmt.Sprintf("  %s.%s: %q -> %q", e.Section, e.Key, e.OldValue, e.NewValue)
		} else if e.FilePath != "" {
			line += "  " + e.FilePath
		} else if e.NewValue != "" {
			line += "  " + e.NewValue
		}
		m.diag.Statusf("%s", line)
	}
	return nil
}

// handleAuditCleanup removes events outside the retention window.
func (m *Manager) handleAuditCleanup(ctx *orpheus.Context) error {
	if m.auditLogger == nil {
		return errors.New(assistant.ErrCodeInvalidAudit, "audit logging not enabled")
	}

	retention, err := parseExtendedDuration(ctx.GetFlagString("older-than"))
	if err != nil {
		return errors.Wrap(err, assistant.ErrCodeInvalidArgument, "invalid --older-than value")
	}

	if err := m.auditLogger.Cleanup(retention); err != nil {
		return errors.Wrap(err, assistant.ErrCodeInvalidAudit, "audit cleanup failed")
	}
	m.diag.Statusf("Removed audit events older than %v", retention)
	return nil
}

// handleInfo prints identity and, verbosely, the resolved paths.
func (m *Manager) handleInfo(ctx *orpheus.Context) error {
	m.diag.Statusf("%s version %s", assistant.AppName, assistant.AppVersion)

	if ctx.GetFlagBool("verbose") {
		if path, err := assistant.DefaultConfigPath(); err == nil {
			m.diag.Statusf("Config file: %s", path)
		}
		m.diag.Statusf("Audit logging: %t", m.auditLogger != nil)
	}
	return nil
}

// loadStore reads a conf-format file into a fresh store. When
// allowMissing is false a nonexistent file is an error rather than an
// empty store.
func (m *Manager) loadStore(filePath string, allowMissing bool) (*assistant.ConfigStore, error) {
	if err := assistant.ValidatePath(filePath); err != nil {
		return nil, err
	}
	if !allowMissing {
		if _, err := os.Stat(filePath); err != nil {
			return nil, errors.New(assistant.ErrCodeConfigNotFound,
				"configuration file does not exist: "+filePath)
		}
	}

	store := assistant.NewConfigStore(m.diag).WithAudit(m.auditLogger)
	if !store.LoadConfig(filePath) {
		return nil, errors.New(assistant.ErrCodeIOError, "failed to read "+filePath)
	}
	return store, nil
}

// loadStoreAnyFormat loads conf, JSON or YAML input based on the file
// extension.
func (m *Manager) loadStoreAnyFormat(filePath string) (*assistant.ConfigStore, error) {
	switch detectFormat(filePath, "auto") {
	case formatJSON:
		store := assistant.NewConfigStore(m.diag)
		if err := store.ImportJSON(filePath); err != nil {
			return nil, err
		}
		return store, nil
	case formatYAML:
		store := assistant.NewConfigStore(m.diag)
		if err := store.ImportYAML(filePath); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return m.loadStore(filePath, false)
	}
}
