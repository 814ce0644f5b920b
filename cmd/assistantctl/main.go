// assistantctl: maintenance CLI for the Work Assistant configuration
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	assistant "github.com/workassist/assistant"
	"github.com/workassist/assistant/internal/cli"
)

func main() {
	manager := cli.NewManager()

	// The audit trail is best effort for the maintenance tool: a failed
	// backend init leaves commands working without auditing.
	if logger, err := assistant.NewAuditLogger(assistant.DefaultAuditConfig()); err == nil {
		manager.WithAudit(logger)
		defer func() { _ = logger.Close() }()
	}

	if err := manager.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
