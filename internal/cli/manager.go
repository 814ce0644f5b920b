// Package cli provides the assistantctl maintenance interface for the
// Work Assistant configuration.
//
// Built on the Orpheus framework with git-style subcommands. The command
// tree operates on configuration files directly; the running application
// is never involved.
//
// Structure:
// - Manager: command routing and shared state
// - Handlers: one function per subcommand
// - Utils: value parsing and duration helpers
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"github.com/agilira/orpheus/pkg/orpheus"

	assistant "github.com/workassist/assistant"
)

// Manager wires the assistantctl command tree to the configuration store
// and the optional audit trail.
type Manager struct {
	app         *orpheus.App
	diag        *assistant.Diagnostics
	auditLogger *assistant.AuditLogger
}

// NewManager creates the assistantctl CLI manager with the full command
// tree registered.
func NewManager() *Manager {
	app := orpheus.New("assistantctl").
		SetDescription("Work Assistant configuration maintenance").
		SetVersion(assistant.AppVersion)

	manager := &Manager{
		app:  app,
		diag: assistant.NewDiagnostics(),
	}

	manager.setupConfigCommands()
	manager.setupAuditCommands()
	manager.setupInfoCommand()

	return manager
}

// WithAudit enables audit logging for all CLI operations.
func (m *Manager) WithAudit(auditLogger *assistant.AuditLogger) *Manager {
	m.auditLogger = auditLogger
	return m
}

// WithDiagnostics redirects the manager's status output, for tests.
func (m *Manager) WithDiagnostics(diag *assistant.Diagnostics) *Manager {
	m.diag = diag
	return m
}

// Run executes the CLI with the provided arguments.
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// setupConfigCommands registers the 'config' command group for file
// operations.
func (m *Manager) setupConfigCommands() {
	configCmd := orpheus.NewCommand("config", "Configuration file operations")

	// config get <file> <section.key>
	configCmd.Subcommand("get", "Get a configuration value", m.handleConfigGet)

	// config set <file> <section.key> <value>
	configCmd.Subcommand("set", "Set a configuration value", m.handleConfigSet)

	// config remove <file> <section.key>
	configCmd.Subcommand("remove", "Remove a configuration key", m.handleConfigRemove)

	// config list <file> [--section=]
	listCmd := configCmd.Subcommand("list", "List configuration keys", m.handleConfigList)
	listCmd.AddFlag("section", "s", "", "Limit output to one section")

	// config validate <file>
	configCmd.Subcommand("validate", "Validate a configuration file", m.handleConfigValidate)

	// config init <file> [--force]
	initCmd := configCmd.Subcommand("init", "Create a configuration file with defaults", m.handleConfigInit)
	initCmd.AddBoolFlag("force", "f", false, "Overwrite an existing file")

	// config convert <input> <output> [--to=json|yaml|conf]
	convertCmd := configCmd.Subcommand("convert", "Convert a configuration file to another format", m.handleConfigConvert)
	convertCmd.AddFlag("to", "t", "auto", "Output format (auto|json|yaml|conf)")

	m.app.AddCommand(configCmd)
}

// setupAuditCommands registers the 'audit' command group.
func (m *Manager) setupAuditCommands() {
	auditCmd := orpheus.NewCommand("audit", "Audit trail management")

	queryCmd := auditCmd.Subcommand("query", "Query audit events", m.handleAuditQuery)
	queryCmd.AddFlag("since", "s", "24h", "Time range (e.g. 24h, 7d, 2w)")
	queryCmd.AddFlag("event", "e", "", "Event name filter")
	queryCmd.AddIntFlag("limit", "l", 100, "Maximum results")

	cleanupCmd := auditCmd.Subcommand("cleanup", "Remove old audit events", m.handleAuditCleanup)
	cleanupCmd.AddFlag("older-than", "o", "30d", "Delete events older than")

	m.app.AddCommand(auditCmd)
}

// setupInfoCommand registers the 'info' diagnostics command.
func (m *Manager) setupInfoCommand() {
	infoCmd := orpheus.NewCommand("info", "Application information and paths")
	infoCmd.SetHandler(m.handleInfo)
	infoCmd.AddBoolFlag("verbose", "v", false, "Show resolved paths and audit state")
	m.app.AddCommand(infoCmd)
}
