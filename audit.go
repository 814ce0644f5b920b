// audit.go: Audit trail for configuration lifecycle events
//
// Records who changed what in the configuration store: file loads and
// saves, explicit key updates, validation verdicts, argument parse runs.
// Events are buffered and flushed in batches to a pluggable backend
// (SQLite preferred, JSONL fallback), each carrying a SHA-256 checksum
// for tamper detection.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// AuditLevel represents the severity of audit events
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// AuditEvent represents a single auditable event
type AuditEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Level     AuditLevel `json:"level"`
	Event     string     `json:"event"`
	Component string     `json:"component"`
	FilePath  string     `json:"file_path,omitempty"`
	Section   string     `json:"section,omitempty"`
	Key       string     `json:"key,omitempty"`
	OldValue  string     `json:"old_value,omitempty"`
	NewValue  string     `json:"new_value,omitempty"`
	ProcessID int        `json:"process_id"`
	Checksum  string     `json:"checksum"` // For tamper detection
}

// AuditConfig configures the audit system
type AuditConfig struct {
	Enabled       bool          `json:"enabled"`
	OutputFile    string        `json:"output_file"`
	MinLevel      AuditLevel    `json:"min_level"`
	BufferSize    int           `json:"buffer_size"`
	FlushInterval time.Duration `json:"flush_interval"`
}

// DefaultAuditConfig returns the default audit configuration. An empty
// OutputFile selects the SQLite backend at its standard location; a
// .jsonl OutputFile forces the JSONL backend.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		OutputFile:    "",
		MinLevel:      AuditInfo,
		BufferSize:    256,
		FlushInterval: 5 * time.Second,
	}
}

// AuditLogger buffers audit events and flushes them in batches to the
// selected backend. Safe for concurrent use; the configuration store
// itself is single-threaded but the background flusher is not.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend
	buffer      []AuditEvent
	bufferMu    sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	processID   int
}

// NewAuditLogger creates an audit logger with automatic backend
// selection: SQLite when available, JSONL otherwise.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit backend: %w", err)
	}

	logger := &AuditLogger{
		config:    config,
		backend:   backend,
		buffer:    make([]AuditEvent, 0, config.BufferSize),
		stopCh:    make(chan struct{}),
		processID: os.Getpid(),
	}

	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}

	return logger, nil
}

// Log records an audit event. Disabled loggers and events below the
// configured minimum level are dropped without allocation.
func (al *AuditLogger) Log(level AuditLevel, event, filePath, section, key, oldVal, newVal string) {
	if al == nil || al.backend == nil || !al.config.Enabled || level < al.config.MinLevel {
		return
	}

	// Cached timestamp: audit events cluster in bursts around config
	// operations, so sub-millisecond precision is not needed.
	auditEvent := AuditEvent{
		Timestamp: timecache.CachedTime(),
		Level:     level,
		Event:     event,
		Component: AppName,
		FilePath:  filePath,
		Section:   section,
		Key:       key,
		OldValue:  oldVal,
		NewValue:  newVal,
		ProcessID: al.processID,
	}
	auditEvent.Checksum = al.generateChecksum(auditEvent)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, auditEvent)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferUnsafe()
	}
	al.bufferMu.Unlock()
}

// LogConfigSet logs an explicit key update in the configuration store.
func (al *AuditLogger) LogConfigSet(section, key, oldValue, newValue string) {
	al.Log(AuditCritical, "config_set", "", section, key, oldValue, newValue)
}

// LogConfigFile logs a whole-file event (config_loaded, config_saved).
func (al *AuditLogger) LogConfigFile(event, filePath string) {
	al.Log(AuditInfo, event, filePath, "", "", "", "")
}

// LogConfigValidate logs a validation verdict.
func (al *AuditLogger) LogConfigValidate(valid bool, errorCount int) {
	level := AuditInfo
	if !valid {
		level = AuditWarn
	}
	al.Log(level, "config_validate", "", "", "", "", fmt.Sprintf("valid=%t errors=%d", valid, errorCount))
}

// LogArgsParsed logs the outcome of a command-line parse run.
func (al *AuditLogger) LogArgsParsed(program string, ok bool) {
	al.Log(AuditInfo, "args_parsed", "", "", "", "", fmt.Sprintf("program=%s ok=%t", program, ok))
}

// Query flushes pending events and returns up to limit events recorded
// at or after since, optionally filtered by event name, newest first.
func (al *AuditLogger) Query(since time.Time, event string, limit int) ([]AuditEvent, error) {
	if al == nil || al.backend == nil {
		return nil, fmt.Errorf("audit logging not enabled")
	}
	if err := al.Flush(); err != nil {
		return nil, err
	}
	return al.backend.Query(since, event, limit)
}

// Cleanup removes events older than the retention window.
func (al *AuditLogger) Cleanup(retention time.Duration) error {
	if al == nil || al.backend == nil {
		return fmt.Errorf("audit logging not enabled")
	}
	return al.backend.Maintenance(retention)
}

// Flush immediately writes all buffered events.
func (al *AuditLogger) Flush() error {
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	return al.flushBufferUnsafe()
}

// Close gracefully shuts down the audit logger, flushing any remaining
// events and releasing the backend.
func (al *AuditLogger) Close() error {
	close(al.stopCh)
	if al.flushTicker != nil {
		al.flushTicker.Stop()
	}

	if err := al.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit logger during close: %w", err)
	}
	if al.backend != nil {
		if err := al.backend.Close(); err != nil {
			return fmt.Errorf("failed to close audit backend: %w", err)
		}
	}
	return nil
}

func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush()
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferUnsafe writes the buffer to the backend; caller holds bufferMu.
func (al *AuditLogger) flushBufferUnsafe() error {
	if len(al.buffer) == 0 {
		return nil
	}
	if err := al.backend.Write(al.buffer); err != nil {
		return fmt.Errorf("failed to write audit events to backend: %w", err)
	}
	al.buffer = al.buffer[:0]
	return nil
}

// generateChecksum creates a tamper-detection checksum using SHA-256
func (al *AuditLogger) generateChecksum(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		event.Timestamp.Format(time.RFC3339Nano),
		event.Event, event.Section, event.Key, event.OldValue, event.NewValue)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
