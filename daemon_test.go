// daemon_test.go: Daemon lifecycle tests
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDaemonLifecycle(t *testing.T) {
	t.Run("start_runs_main", func(t *testing.T) {
		diag, _, _ := testDiagnostics()
		d := NewDaemon(diag)

		started := make(chan struct{})
		release := make(chan struct{})
		d.SetMainFunction(func() {
			close(started)
			<-release
		})

		if err := d.StartDaemon(); err != nil {
			t.Fatalf("StartDaemon: %v", err)
		}
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("main function never ran")
		}
		if !d.IsDaemonRunning() {
			t.Error("IsDaemonRunning should report true after start")
		}

		close(release)
		if err := d.StopDaemon(); err != nil {
			t.Fatalf("StopDaemon: %v", err)
		}
		if d.IsDaemonRunning() {
			t.Error("IsDaemonRunning should report false after stop")
		}
	})

	t.Run("shutdown_runs_once", func(t *testing.T) {
		diag, _, _ := testDiagnostics()
		d := NewDaemon(diag)

		var shutdowns atomic.Int32
		release := make(chan struct{})
		d.SetMainFunction(func() { <-release })
		d.SetShutdownFunction(func() {
			shutdowns.Add(1)
			close(release)
		})

		if err := d.StartDaemon(); err != nil {
			t.Fatal(err)
		}
		if err := d.StopDaemon(); err != nil {
			t.Fatal(err)
		}
		if got := shutdowns.Load(); got != 1 {
			t.Errorf("shutdown ran %d times, want exactly once", got)
		}
	})

	t.Run("double_start_rejected", func(t *testing.T) {
		diag, _, _ := testDiagnostics()
		d := NewDaemon(diag)
		release := make(chan struct{})
		d.SetMainFunction(func() { <-release })

		if err := d.StartDaemon(); err != nil {
			t.Fatal(err)
		}
		if err := d.StartDaemon(); err == nil {
			t.Error("second StartDaemon should fail while running")
		}
		close(release)
		if err := d.StopDaemon(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("stop_when_not_running_rejected", func(t *testing.T) {
		d := NewDaemon(nil)
		if err := d.StopDaemon(); err == nil {
			t.Error("StopDaemon on a stopped daemon should fail")
		}
	})

	t.Run("start_without_main_rejected", func(t *testing.T) {
		d := NewDaemon(nil)
		if err := d.StartDaemon(); err == nil {
			t.Error("StartDaemon without a main function should fail")
		}
	})

	t.Run("wait_returns_after_stop", func(t *testing.T) {
		diag, _, _ := testDiagnostics()
		d := NewDaemon(diag)
		release := make(chan struct{})
		d.SetMainFunction(func() { <-release })
		d.SetShutdownFunction(func() { close(release) })

		if err := d.StartDaemon(); err != nil {
			t.Fatal(err)
		}
		done := make(chan struct{})
		go func() {
			d.Wait()
			close(done)
		}()
		if err := d.StopDaemon(); err != nil {
			t.Fatal(err)
		}
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Wait did not return after stop")
		}
	})

	t.Run("restart_after_stop", func(t *testing.T) {
		diag, _, _ := testDiagnostics()
		d := NewDaemon(diag)

		for i := 0; i < 2; i++ {
			release := make(chan struct{})
			d.SetMainFunction(func() { <-release })
			d.SetShutdownFunction(func() { close(release) })
			if err := d.StartDaemon(); err != nil {
				t.Fatalf("start %d: %v", i, err)
			}
			if err := d.StopDaemon(); err != nil {
				t.Fatalf("stop %d: %v", i, err)
			}
		}
	})
}
