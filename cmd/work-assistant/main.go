// work-assistant: desktop assistant application entry point
//
// Bootstraps the application: parses the command line, loads the
// configuration file, overlays command-line overrides, validates, and
// runs either the foreground loop or the daemon. The configuration is
// saved back on clean shutdown.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"
	"strconv"
	"time"

	assistant "github.com/workassist/assistant"
)

func main() {
	os.Exit(run(os.Args, assistant.NewDiagnostics()))
}

func run(args []string, diag *assistant.Diagnostics) int {
	parser := buildParser(args[0], diag)
	if !parser.Parse(args[1:]) {
		return 2
	}

	switch {
	case parser.GetBoolValue("help", false):
		parser.PrintHelp()
		return 0
	case parser.GetBoolValue("version", false):
		parser.PrintVersion()
		return 0
	}

	if parser.GetBoolValue("quiet", false) {
		diag = &assistant.Diagnostics{Err: diag.Err}
	}

	audit := openAudit(diag)
	if audit != nil {
		defer func() { _ = audit.Close() }()
		audit.LogArgsParsed(parser.ProgramName(), true)
	}

	store := assistant.NewConfigStore(diag).WithAudit(audit)
	store.SetDefaultConfiguration()

	configPath, ok := resolveConfigPath(parser, diag)
	if !ok {
		return 1
	}
	if !store.LoadConfig(configPath) {
		return 1
	}
	applyOverrides(parser, store)

	if !store.ValidateConfig() {
		diag.Errorf("Configuration is invalid, aborting")
		return 1
	}

	if parser.GetBoolValue("test-mode", false) {
		diag.Statusf("Test mode: configuration OK, exiting")
		return 0
	}

	announce := !parser.GetBoolValue("daemon", false)
	return runApplication(store, configPath, diag, announce)
}

// buildParser declares the full command-line schema of the application.
func buildParser(programPath string, diag *assistant.Diagnostics) *assistant.ArgumentParser {
	oneOf := func(allowed ...string) func(string) bool {
		return func(v string) bool {
			for _, a := range allowed {
				if v == a {
					return true
				}
			}
			return false
		}
	}

	return assistant.NewArgumentParser(programPath, assistant.AppVersion, diag).
		AddOption(assistant.Option{ShortName: "h", LongName: "help",
			Description: "Show this help and exit"}).
		AddOption(assistant.Option{LongName: "version",
			Description: "Show version and exit"}).
		AddOption(assistant.Option{ShortName: "c", LongName: "config", TakesValue: true,
			Description: "Configuration file path"}).
		AddOption(assistant.Option{LongName: "data-dir", TakesValue: true,
			Description: "Data directory path"}).
		AddOption(assistant.Option{ShortName: "l", LongName: "log-level", TakesValue: true,
			DefaultValue: "info",
			Description:  "Log level (debug|info|warn|error)",
			Validator:    oneOf("debug", "info", "warn", "error")}).
		AddOption(assistant.Option{ShortName: "v", LongName: "verbose",
			Description: "Verbose output"}).
		AddOption(assistant.Option{ShortName: "q", LongName: "quiet",
			Description: "Suppress status output"}).
		AddOption(assistant.Option{ShortName: "d", LongName: "daemon",
			Description: "Run in the background"}).
		AddOption(assistant.Option{LongName: "no-gui",
			Description: "Disable the desktop interface"}).
		AddOption(assistant.Option{LongName: "test-mode",
			Description: "Validate configuration and exit"}).
		AddOption(assistant.Option{ShortName: "p", LongName: "web-port", TakesValue: true,
			Description: "Web interface port (1-65535)",
			Validator: func(v string) bool {
				port, err := strconv.Atoi(v)
				return err == nil && port >= 1 && port <= 65535
			}}).
		AddOption(assistant.Option{LongName: "ocr-mode", TakesValue: true,
			Description: "OCR mode (fast|accurate|multimodal|auto)",
			Validator:   oneOf("fast", "accurate", "multimodal", "auto")}).
		AddOption(assistant.Option{ShortName: "m", LongName: "ai-model", TakesValue: true,
			Description: "AI model file path"})
}

// openAudit initializes the audit trail, best effort.
func openAudit(diag *assistant.Diagnostics) *assistant.AuditLogger {
	audit, err := assistant.NewAuditLogger(assistant.DefaultAuditConfig())
	if err != nil {
		diag.Warnf("Audit trail disabled: %v", err)
		return nil
	}
	return audit
}

// resolveConfigPath returns the -c/--config override or the per-user
// default, creating the default directory on first run.
func resolveConfigPath(parser *assistant.ArgumentParser, diag *assistant.Diagnostics) (string, bool) {
	if parser.HasOption("config") {
		path := parser.GetValue("config", "")
		if err := assistant.ValidatePath(path); err != nil {
			diag.Errorf("Invalid config path: %v", err)
			return "", false
		}
		return path, true
	}

	if _, err := assistant.EnsureConfigDir(); err != nil {
		diag.Errorf("Cannot prepare config directory: %v", err)
		return "", false
	}
	path, err := assistant.DefaultConfigPath()
	if err != nil {
		diag.Errorf("Cannot resolve config path: %v", err)
		return "", false
	}
	return path, true
}

// applyOverrides copies supplied command-line values over the loaded
// configuration. Only options the user actually passed take effect.
func applyOverrides(parser *assistant.ArgumentParser, store *assistant.ConfigStore) {
	overrides := []struct {
		option, section, key string
	}{
		{"log-level", assistant.SectionApplication, "log_level"},
		{"data-dir", assistant.SectionApplication, "data_dir"},
		{"web-port", assistant.SectionWeb, assistant.KeyWebPort},
		{"ocr-mode", assistant.SectionOCR, "mode"},
		{"ai-model", assistant.SectionAI, "model_path"},
	}
	for _, o := range overrides {
		if parser.HasOption(o.option) {
			store.SetString(o.section, o.key, parser.GetValue(o.option, ""))
		}
	}
	if parser.HasOption("no-gui") {
		store.SetBool(assistant.SectionWeb, "open_browser", false)
	}
	if parser.GetBoolValue("verbose", false) {
		store.SetString(assistant.SectionApplication, "log_level", "debug")
	}
}

// runApplication runs the monitoring loop under the daemon's signal
// handling until SIGINT/SIGTERM, then saves the configuration.
func runApplication(store *assistant.ConfigStore, configPath string, diag *assistant.Diagnostics, announce bool) int {
	stop := make(chan struct{})
	d := assistant.NewDaemon(diag)
	d.SetMainFunction(func() { applicationLoop(store, diag, stop) })
	d.SetShutdownFunction(func() {
		close(stop)
		saveOnShutdown(store, configPath, diag)
	})

	if err := d.StartDaemon(); err != nil {
		diag.Errorf("Cannot start: %v", err)
		return 1
	}
	if announce {
		diag.Statusf("%s %s started (web port %d)", assistant.AppName, assistant.AppVersion,
			store.GetInt(assistant.SectionWeb, assistant.KeyWebPort, 8080))
	}
	d.Wait()
	return 0
}

// applicationLoop is the long-running body of the assistant. The desktop
// capture, OCR and AI pipelines attach here; this build ticks at the
// configured monitoring interval until shutdown.
func applicationLoop(store *assistant.ConfigStore, diag *assistant.Diagnostics, stop <-chan struct{}) {
	interval := store.GetInt(assistant.SectionMonitoring, "capture_interval_seconds", 5)
	if interval < 1 {
		interval = 1
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	debug := store.GetString(assistant.SectionApplication, "log_level", "info") == "debug"
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if debug {
				diag.Statusf("Monitoring tick")
			}
		}
	}
}

func saveOnShutdown(store *assistant.ConfigStore, configPath string, diag *assistant.Diagnostics) {
	if !store.SaveConfig(configPath) {
		diag.Errorf("Could not save configuration on shutdown")
		return
	}
	diag.Statusf("Configuration saved to %s", configPath)
}
