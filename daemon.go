// daemon.go: Background process lifecycle for the Work Assistant
//
// A single Daemon wraps the application's long-running main function: it
// runs it on its own goroutine, listens for SIGINT/SIGTERM, and invokes
// the registered shutdown function exactly once, either on signal or on
// an explicit StopDaemon call.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/agilira/go-errors"
)

// Daemon runs the application main function in the background with signal
// handling. Zero value is usable; register functions before StartDaemon.
type Daemon struct {
	mainFn     func()
	shutdownFn func()

	running  atomic.Bool
	stopCh   chan struct{}
	signalCh chan os.Signal
	wg       sync.WaitGroup
	stopOnce *sync.Once

	diag *Diagnostics
}

// NewDaemon creates a daemon bound to the given diagnostics channel.
func NewDaemon(diag *Diagnostics) *Daemon {
	if diag == nil {
		diag = NewDiagnostics()
	}
	return &Daemon{diag: diag}
}

// SetMainFunction registers the long-running body of the daemon. It is
// invoked once on its own goroutine by StartDaemon and is expected to
// return when the application's work is done or shutdown is requested.
func (d *Daemon) SetMainFunction(fn func()) {
	d.mainFn = fn
}

// SetShutdownFunction registers the cleanup function invoked exactly once
// when the daemon stops, whether by signal or by StopDaemon.
func (d *Daemon) SetShutdownFunction(fn func()) {
	d.shutdownFn = fn
}

// IsDaemonRunning reports whether the daemon has been started and not yet
// stopped.
func (d *Daemon) IsDaemonRunning() bool {
	return d.running.Load()
}

// StartDaemon launches the main function and begins listening for
// SIGINT/SIGTERM. Starting an already-running daemon is an error.
func (d *Daemon) StartDaemon() error {
	if d.mainFn == nil {
		return errors.New(ErrCodeDaemonStopped, "no main function registered")
	}
	if !d.running.CompareAndSwap(false, true) {
		return errors.New(ErrCodeDaemonRunning, "daemon already running")
	}

	d.stopCh = make(chan struct{})
	d.stopOnce = new(sync.Once)
	d.signalCh = make(chan os.Signal, 1)
	signal.Notify(d.signalCh, syscall.SIGINT, syscall.SIGTERM)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.mainFn()
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		select {
		case sig := <-d.signalCh:
			d.diag.Statusf("Received signal %v, shutting down", sig)
			d.shutdown()
		case <-d.stopCh:
		}
	}()

	return nil
}

// Wait blocks until the daemon has fully stopped: the main function has
// returned and shutdown has run, whether triggered by a signal or by
// StopDaemon.
func (d *Daemon) Wait() {
	d.wg.Wait()
	d.running.Store(false)
}

// StopDaemon requests shutdown and waits for the main function to return.
// Stopping a daemon that is not running is an error.
func (d *Daemon) StopDaemon() error {
	if !d.running.Load() {
		return errors.New(ErrCodeDaemonStopped, "daemon is not running")
	}
	d.shutdown()
	close(d.stopCh)
	d.wg.Wait()
	return nil
}

// shutdown runs the registered shutdown function once and clears the
// running flag.
func (d *Daemon) shutdown() {
	d.stopOnce.Do(func() {
		signal.Stop(d.signalCh)
		if d.shutdownFn != nil {
			d.shutdownFn()
		}
		d.running.Store(false)
	})
}
