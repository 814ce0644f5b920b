// audit_backend.go: Storage backends for the audit trail
//
// Two backends serve different deployments: SQLite gives a queryable,
// consolidated trail for the desktop installation; JSONL gives a
// grep-able plain-text fallback that never blocks startup when SQLite is
// unavailable. Backend selection degrades gracefully: SQLite first,
// JSONL second, error only when both fail.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// auditBackend abstracts the storage mechanism behind the audit logger.
type auditBackend interface {
	// Write persists a batch of audit events. Implementations must be
	// safe for concurrent calls.
	Write(events []AuditEvent) error

	// Query returns up to limit events recorded at or after since,
	// optionally filtered by event name, newest first.
	Query(since time.Time, event string, limit int) ([]AuditEvent, error)

	// Maintenance removes events older than the retention window.
	Maintenance(retention time.Duration) error

	// Close flushes and releases all resources.
	Close() error
}

// createAuditBackend selects a backend for the given configuration:
// an explicit .jsonl OutputFile forces JSONL; otherwise SQLite is tried
// first with JSONL as fallback.
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	if config.OutputFile != "" && filepath.Ext(config.OutputFile) == ".jsonl" {
		return newJSONLBackend(config)
	}

	backend, err := newSQLiteBackend(config)
	if err == nil {
		return backend, nil
	}

	jsonlBackend, jsonlErr := newJSONLBackend(config)
	if jsonlErr != nil {
		return nil, fmt.Errorf("all audit backends failed - SQLite: %w, JSONL: %v", err, jsonlErr)
	}
	return jsonlBackend, nil
}

// defaultAuditDir returns the directory holding audit storage when no
// explicit OutputFile is configured.
func defaultAuditDir() string {
	return filepath.Join(os.TempDir(), AppName)
}

// SQLite backend

type sqliteAuditBackend struct {
	db         *sql.DB
	dbPath     string
	insertStmt *sql.Stmt
	mu         sync.Mutex
	closed     bool
}

func newSQLiteBackend(config AuditConfig) (*sqliteAuditBackend, error) {
	dbPath := config.OutputFile
	if dbPath == "" || filepath.Ext(dbPath) != ".db" {
		dbPath = filepath.Join(defaultAuditDir(), "audit.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit database directory: %w", err)
	}

	// WAL keeps the background flusher from blocking CLI queries against
	// the same database.
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	backend := &sqliteAuditBackend{db: db, dbPath: dbPath}
	if err := backend.initializeSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	if err := backend.prepareStatements(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare audit statements: %w", err)
	}
	return backend, nil
}

func (s *sqliteAuditBackend) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		level TEXT NOT NULL,
		event TEXT NOT NULL,
		component TEXT NOT NULL,
		file_path TEXT,
		section TEXT,
		key TEXT,
		old_value TEXT,
		new_value TEXT,
		process_id INTEGER,
		checksum TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_event ON audit_events(event);`

	_, err := s.db.Exec(schema)
	return err
}

func (s *sqliteAuditBackend) prepareStatements() error {
	stmt, err := s.db.Prepare(`
		INSERT INTO audit_events
		(timestamp, level, event, component, file_path, section, key, old_value, new_value, process_id, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	s.insertStmt = stmt
	return nil
}

func (s *sqliteAuditBackend) Write(events []AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("audit backend is closed")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	stmt := tx.Stmt(s.insertStmt)
	for _, e := range events {
		if _, err := stmt.Exec(
			e.Timestamp.UTC().Format(time.RFC3339Nano),
			e.Level.String(), e.Event, e.Component,
			e.FilePath, e.Section, e.Key, e.OldValue, e.NewValue,
			e.ProcessID, e.Checksum,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}
	return tx.Commit()
}

func (s *sqliteAuditBackend) Query(since time.Time, event string, limit int) ([]AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("audit backend is closed")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT timestamp, level, event, component, file_path, section, key,
		old_value, new_value, process_id, checksum
		FROM audit_events WHERE timestamp >= ?`
	args := []interface{}{since.UTC().Format(time.RFC3339Nano)}
	if event != "" {
		query += " AND event = ?"
		args = append(args, event)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var ts, level string
		if err := rows.Scan(&ts, &level, &e.Event, &e.Component,
			&e.FilePath, &e.Section, &e.Key, &e.OldValue, &e.NewValue,
			&e.ProcessID, &e.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		e.Level = parseAuditLevel(level)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *sqliteAuditBackend) Maintenance(retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("audit backend is closed")
	}
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339Nano)
	if _, err := s.db.Exec("DELETE FROM audit_events WHERE timestamp < ?", cutoff); err != nil {
		return fmt.Errorf("failed to clean old audit events: %w", err)
	}
	return nil
}

func (s *sqliteAuditBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.insertStmt != nil {
		_ = s.insertStmt.Close()
	}
	return s.db.Close()
}

// JSONL backend

type jsonlAuditBackend struct {
	file *os.File
	path string
	mu   sync.Mutex
}

func newJSONLBackend(config AuditConfig) (*jsonlAuditBackend, error) {
	path := config.OutputFile
	if path == "" {
		path = filepath.Join(defaultAuditDir(), "audit.jsonl")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640) // #nosec G304 -- path from audit config
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &jsonlAuditBackend{file: file, path: path}, nil
}

func (j *jsonlAuditBackend) Write(events []AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal audit event: %w", err)
		}
		if _, err := j.file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write audit event: %w", err)
		}
	}
	return j.file.Sync()
}

func (j *jsonlAuditBackend) Query(since time.Time, event string, limit int) ([]AuditEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}

	f, err := os.Open(j.path) // #nosec G304 -- path from audit config
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []AuditEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue // skip corrupt lines, the trail stays readable
		}
		if e.Timestamp.Before(since) {
			continue
		}
		if event != "" && e.Event != event {
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	// Newest first, matching the SQLite backend.
	for i, k := 0, len(events)-1; i < k; i, k = i+1, k-1 {
		events[i], events[k] = events[k], events[i]
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (j *jsonlAuditBackend) Maintenance(retention time.Duration) error {
	// JSONL files are rotated externally; nothing to do here.
	return nil
}

func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

func parseAuditLevel(s string) AuditLevel {
	switch s {
	case "WARN":
		return AuditWarn
	case "CRITICAL":
		return AuditCritical
	default:
		return AuditInfo
	}
}
