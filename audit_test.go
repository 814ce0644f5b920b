// audit_test.go: Audit trail tests over the JSONL backend
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newJSONLAuditLogger(t *testing.T) (*AuditLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	config := DefaultAuditConfig()
	config.OutputFile = path
	config.FlushInterval = 0 // no background flusher in tests
	logger, err := NewAuditLogger(config)
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })
	return logger, path
}

func TestAuditLevels(t *testing.T) {
	cases := map[AuditLevel]string{
		AuditInfo:     "INFO",
		AuditWarn:     "WARN",
		AuditCritical: "CRITICAL",
		AuditLevel(99): "UNKNOWN",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("AuditLevel(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestAuditLogAndQuery(t *testing.T) {
	since := time.Now().Add(-time.Hour)

	t.Run("events_recorded", func(t *testing.T) {
		logger, path := newJSONLAuditLogger(t)
		logger.LogConfigSet("web", "port", "8080", "9090")
		logger.LogConfigFile("config_saved", "/tmp/x.conf")
		if err := logger.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}

		events, err := logger.Query(since, "", 10)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("got %d events, want 2", len(events))
		}
		// Newest first.
		if events[0].Event != "config_saved" || events[1].Event != "config_set" {
			t.Errorf("unexpected order: %s, %s", events[0].Event, events[1].Event)
		}
		set := events[1]
		if set.Section != "web" || set.Key != "port" || set.OldValue != "8080" || set.NewValue != "9090" {
			t.Errorf("config_set fields wrong: %+v", set)
		}
		if set.Checksum == "" || set.ProcessID == 0 {
			t.Error("checksum and process id must be populated")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := strings.Count(strings.TrimSpace(string(data)), "\n") + 1; got != 2 {
			t.Errorf("file has %d lines, want 2", got)
		}
	})

	t.Run("event_filter_and_limit", func(t *testing.T) {
		logger, _ := newJSONLAuditLogger(t)
		for i := 0; i < 5; i++ {
			logger.LogConfigFile("config_saved", "/tmp/x.conf")
		}
		logger.LogConfigFile("config_loaded", "/tmp/x.conf")

		events, err := logger.Query(since, "config_saved", 3)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("got %d events, want limit 3", len(events))
		}
		for _, e := range events {
			if e.Event != "config_saved" {
				t.Errorf("filter leaked event %q", e.Event)
			}
		}
	})

	t.Run("min_level_drops_events", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audit.jsonl")
		config := DefaultAuditConfig()
		config.OutputFile = path
		config.FlushInterval = 0
		config.MinLevel = AuditCritical
		logger, err := NewAuditLogger(config)
		if err != nil {
			t.Fatal(err)
		}
		defer logger.Close()

		logger.LogConfigFile("config_loaded", "/tmp/x.conf") // info, dropped
		logger.LogConfigSet("web", "port", "", "1")          // critical, kept

		events, err := logger.Query(since, "", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 1 || events[0].Event != "config_set" {
			t.Errorf("min level filtering wrong: %+v", events)
		}
	})

	t.Run("disabled_logger_is_silent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audit.jsonl")
		config := DefaultAuditConfig()
		config.OutputFile = path
		config.FlushInterval = 0
		config.Enabled = false
		logger, err := NewAuditLogger(config)
		if err != nil {
			t.Fatal(err)
		}
		defer logger.Close()

		logger.LogConfigSet("web", "port", "", "1")
		events, err := logger.Query(since, "", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 0 {
			t.Errorf("disabled logger recorded %d events", len(events))
		}
	})

	t.Run("nil_logger_is_safe", func(t *testing.T) {
		var logger *AuditLogger
		logger.LogConfigSet("a", "b", "", "c") // must not panic
		if _, err := logger.Query(since, "", 1); err == nil {
			t.Error("Query on a nil logger should fail")
		}
		if err := logger.Cleanup(time.Hour); err == nil {
			t.Error("Cleanup on a nil logger should fail")
		}
	})

	t.Run("corrupt_lines_skipped", func(t *testing.T) {
		logger, path := newJSONLAuditLogger(t)
		logger.LogConfigFile("config_saved", "/tmp/x.conf")
		if err := logger.Flush(); err != nil {
			t.Fatal(err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.WriteString("{not json\n"); err != nil {
			t.Fatal(err)
		}
		f.Close()
		logger.LogConfigFile("config_loaded", "/tmp/x.conf")

		events, err := logger.Query(since, "", 10)
		if err != nil {
			t.Fatalf("Query over a corrupt line: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("got %d events, want the 2 valid ones", len(events))
		}
	})
}

func TestAuditStoreIntegration(t *testing.T) {
	since := time.Now().Add(-time.Hour)

	logger, _ := newJSONLAuditLogger(t)
	diag, _, _ := testDiagnostics()
	c := NewConfigStore(diag).WithAudit(logger)

	c.SetString("web", "host", "localhost")
	c.SetString("web", "host", "localhost") // unchanged, no event
	c.SetString("web", "host", "0.0.0.0")
	c.ValidateConfig()

	sets, err := logger.Query(since, "config_set", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("got %d config_set events, want 2 (no event for unchanged value)", len(sets))
	}
	if sets[0].OldValue != "localhost" || sets[0].NewValue != "0.0.0.0" {
		t.Errorf("latest config_set fields wrong: %+v", sets[0])
	}

	verdicts, err := logger.Query(since, "config_validate", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(verdicts) != 1 {
		t.Errorf("got %d config_validate events, want 1", len(verdicts))
	}
}

func TestAuditClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	config := DefaultAuditConfig()
	config.OutputFile = path
	config.FlushInterval = 10 * time.Millisecond
	logger, err := NewAuditLogger(config)
	if err != nil {
		t.Fatal(err)
	}

	logger.LogConfigFile("config_saved", "/tmp/x.conf")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "config_saved") {
		t.Error("Close must flush buffered events")
	}
}
