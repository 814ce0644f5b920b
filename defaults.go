// defaults.go: Hard-coded configuration baseline for the Work Assistant
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

// Section and key names used across the application. The validation and
// bootstrap code reference these rather than repeating string literals.
const (
	SectionApplication = "application"
	SectionOCR         = "ocr"
	SectionAI          = "ai"
	SectionStorage     = "storage"
	SectionWeb         = "web"
	SectionMonitoring  = "monitoring"

	KeyWebPort       = "port"
	KeyOCRConfidence = "confidence_threshold"
)

// SetDefaultConfiguration populates the fixed baseline covering the six
// standard sections. Existing keys are overwritten; keys outside the
// baseline are left alone. Load a config file afterwards to overlay the
// user's saved state.
func (c *ConfigStore) SetDefaultConfiguration() {
	c.SetString(SectionApplication, "log_level", "info")
	c.SetString(SectionApplication, "data_dir", "")
	c.SetString(SectionApplication, "language", "en")
	c.SetBool(SectionApplication, "auto_start", false)

	c.SetString(SectionOCR, "mode", "auto")
	c.SetDouble(SectionOCR, KeyOCRConfidence, 0.75)
	c.SetString(SectionOCR, "language", "eng")
	c.SetInt(SectionOCR, "dpi", 300)

	c.SetString(SectionAI, "model_path", "")
	c.SetString(SectionAI, "provider", "local")
	c.SetInt(SectionAI, "context_window", 4096)
	c.SetDouble(SectionAI, "temperature", 0.7)

	c.SetString(SectionStorage, "database_file", "work_assistant.db")
	c.SetInt(SectionStorage, "max_history_days", 90)
	c.SetBool(SectionStorage, "compress_old_data", true)

	c.SetBool(SectionWeb, "enabled", true)
	c.SetString(SectionWeb, "host", "127.0.0.1")
	c.SetInt(SectionWeb, KeyWebPort, 8080)
	c.SetBool(SectionWeb, "open_browser", false)

	c.SetBool(SectionMonitoring, "enabled", true)
	c.SetInt(SectionMonitoring, "capture_interval_seconds", 5)
	c.SetInt(SectionMonitoring, "idle_timeout_minutes", 10)
	c.SetBool(SectionMonitoring, "track_applications", true)
}

// ResetToDefaults clears the whole mapping and reapplies the baseline.
func (c *ConfigStore) ResetToDefaults() {
	c.Clear()
	c.SetDefaultConfiguration()
}
