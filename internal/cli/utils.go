// Utility functions for the assistantctl CLI
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/go-errors"

	assistant "github.com/workassist/assistant"
)

// configFormat identifies a file format for the convert command.
type configFormat int

const (
	formatUnknown configFormat = iota
	formatConf
	formatJSON
	formatYAML
)

func (f configFormat) String() string {
	switch f {
	case formatConf:
		return "conf"
	case formatJSON:
		return "json"
	case formatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// detectFormat resolves an explicit format flag, falling back to the
// file extension when the flag is empty or "auto".
func detectFormat(filePath, explicit string) configFormat {
	switch strings.ToLower(explicit) {
	case "json":
		return formatJSON
	case "yaml", "yml":
		return formatYAML
	case "conf", "ini", "cfg":
		return formatConf
	case "", "auto":
	default:
		return formatUnknown
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return formatJSON
	case ".yaml", ".yml":
		return formatYAML
	case ".conf", ".ini", ".cfg":
		return formatConf
	default:
		return formatUnknown
	}
}

// splitDottedKey splits "section.key" at the first dot.
func splitDottedKey(dotted string) (section, key string, err error) {
	dot := strings.Index(dotted, ".")
	if dot < 0 || dot == len(dotted)-1 {
		return "", "", errors.New(assistant.ErrCodeInvalidArgument,
			fmt.Sprintf("key must be of the form section.key, got '%s'", dotted))
	}
	return dotted[:dot], dotted[dot+1:], nil
}

var extendedDurationRe = regexp.MustCompile(`^(\d+)(d|w)$`)

// parseExtendedDuration parses Go durations plus day (d) and week (w)
// units, e.g. "24h", "30d", "2w".
func parseExtendedDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	matches := extendedDurationRe.FindStringSubmatch(s)
	if len(matches) != 3 {
		_, err := time.ParseDuration(s)
		return 0, err
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", matches[1])
	}
	switch matches[2] {
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default: // "w"
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	}
}
