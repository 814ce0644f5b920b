// validation.go: Fixed-list configuration validation for the Work Assistant
//
// ValidateConfig is advisory: it reports problems on the diagnostics
// channel and returns a verdict, but never mutates the store. The check
// list is deliberately fixed and non-extensible; this is not a general
// schema validator.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"fmt"

	"github.com/agilira/go-errors"
)

// requiredSections is the fixed list of sections every complete Work
// Assistant configuration must carry.
var requiredSections = []string{
	SectionApplication,
	SectionOCR,
	SectionAI,
	SectionStorage,
	SectionWeb,
	SectionMonitoring,
}

// ValidationResult carries the outcome of a ValidateConfig pass.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// String returns a human-readable summary of the validation outcome.
func (vr ValidationResult) String() string {
	if vr.Valid {
		return "Configuration is valid"
	}
	return fmt.Sprintf("Configuration is invalid (%d error(s))", len(vr.Errors))
}

// ValidateConfig checks that the required sections are present, that the
// web port is in 1..65535 and that the OCR confidence threshold is in
// 0.0..1.0. Every problem is reported on the diagnostics channel; the
// store is left untouched and callers decide whether to abort.
func (c *ConfigStore) ValidateConfig() bool {
	return c.Validate().Valid
}

// Validate runs the same fixed checks as ValidateConfig and returns the
// detailed result.
func (c *ConfigStore) Validate() ValidationResult {
	result := ValidationResult{Valid: true}

	for _, section := range requiredSections {
		if !c.HasSection(section) {
			result.add(c.diag, fmt.Sprintf("required section [%s] is missing", section))
		}
	}

	port := c.GetInt(SectionWeb, KeyWebPort, 0)
	if port < 1 || port > 65535 {
		result.add(c.diag, fmt.Sprintf("web port %d out of range (1-65535)", port))
	}

	threshold := c.GetDouble(SectionOCR, KeyOCRConfidence, -1)
	if threshold < 0.0 || threshold > 1.0 {
		result.add(c.diag, fmt.Sprintf("OCR confidence threshold %g out of range (0.0-1.0)", threshold))
	}

	if c.audit != nil {
		c.audit.LogConfigValidate(result.Valid, len(result.Errors))
	}
	return result
}

// ValidationError converts a failed result into a coded error, or nil
// when the result is valid. Convenience for callers that propagate the
// verdict instead of inspecting it.
func (vr ValidationResult) ValidationError() error {
	if vr.Valid {
		return nil
	}
	return errors.New(ErrCodeValidationFailed, vr.String())
}

func (vr *ValidationResult) add(diag *Diagnostics, msg string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, msg)
	diag.Warnf("%s", msg)
}
