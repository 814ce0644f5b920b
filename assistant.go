// assistant.go: Core types and error codes for the Work Assistant utilities
//
// This package bundles the two leaf components of the Work Assistant
// desktop application: a schema-driven command-line argument parser and a
// flat-file section/key/value configuration store. Both components report
// human-readable status through a shared Diagnostics channel and coded
// errors through go-errors; neither owns any concurrency.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"fmt"
	"io"
	"os"
)

// Application identity, rendered by PrintVersion and the CLI info command.
const (
	AppName    = "work-assistant"
	AppVersion = "1.0.0"
)

// Error codes for Work Assistant operations
const (
	ErrCodeInvalidArgument  = "ASSISTANT_INVALID_ARGUMENT"
	ErrCodeInvalidOption    = "ASSISTANT_INVALID_OPTION"
	ErrCodeInvalidConfig    = "ASSISTANT_INVALID_CONFIG"
	ErrCodeConfigNotFound   = "ASSISTANT_CONFIG_NOT_FOUND"
	ErrCodeIOError          = "ASSISTANT_IO_ERROR"
	ErrCodeInvalidPath      = "ASSISTANT_INVALID_PATH"
	ErrCodeDaemonRunning    = "ASSISTANT_DAEMON_RUNNING"
	ErrCodeDaemonStopped    = "ASSISTANT_DAEMON_STOPPED"
	ErrCodeInvalidAudit     = "ASSISTANT_INVALID_AUDIT"
	ErrCodeSerialization    = "ASSISTANT_SERIALIZATION_ERROR"
	ErrCodeValidationFailed = "ASSISTANT_VALIDATION_FAILED"
)

// Diagnostics is the output channel shared by the argument parser and the
// configuration store. All human-readable status, warnings and errors flow
// through it; writing here is the only side effect either component has
// beyond its own return values.
//
// Status lines go to Out, warnings and errors to Err. Either writer may be
// swapped for a buffer in tests.
type Diagnostics struct {
	Out io.Writer
	Err io.Writer
}

// NewDiagnostics returns a Diagnostics channel bound to the process's
// standard output and standard error streams.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{Out: os.Stdout, Err: os.Stderr}
}

// Statusf writes an informational line to the output stream.
func (d *Diagnostics) Statusf(format string, args ...interface{}) {
	if d == nil || d.Out == nil {
		return
	}
	fmt.Fprintf(d.Out, format+"\n", args...)
}

// Warnf writes a warning line to the error stream.
func (d *Diagnostics) Warnf(format string, args ...interface{}) {
	if d == nil || d.Err == nil {
		return
	}
	fmt.Fprintf(d.Err, "Warning: "+format+"\n", args...)
}

// Errorf writes an error line to the error stream.
func (d *Diagnostics) Errorf(format string, args ...interface{}) {
	if d == nil || d.Err == nil {
		return
	}
	fmt.Fprintf(d.Err, "Error: "+format+"\n", args...)
}
