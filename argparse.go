// argparse.go: Schema-driven command-line argument parser
//
// This file implements the Work Assistant argument parser: a left-to-right
// token scanner over the process argument vector, driven by a caller-built
// schema of option descriptors. Parsing is all-or-nothing; the first syntax
// error aborts the scan, leaves a descriptive message behind and surfaces
// it on the diagnostics channel together with a usage reminder.
//
// Copyright (c) 2025 The Work Assistant Authors
// SPDX-License-Identifier: MPL-2.0

package assistant

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// Option describes one recognized command-line flag. At least one of
// ShortName and LongName must be set; when both are present the long name
// is the canonical storage key for the parsed value.
type Option struct {
	ShortName    string // single character, "" when absent
	LongName     string // word form, "" when absent
	Description  string // rendered in help output
	TakesValue   bool   // whether the option consumes a following/attached argument
	Required     bool   // absence after parsing is an error
	DefaultValue string // returned by value accessors when never supplied
	Validator    func(string) bool
}

// Key returns the canonical storage key for the option's parsed value:
// the long name when present, else the short name.
func (o *Option) Key() string {
	if o.LongName != "" {
		return o.LongName
	}
	return o.ShortName
}

// FlagForm returns the display form of the option for error messages,
// preferring the long form.
func (o *Option) FlagForm() string {
	switch {
	case o.LongName != "":
		return "--" + o.LongName
	case o.ShortName != "":
		return "-" + o.ShortName
	default:
		return "unknown"
	}
}

// forms returns the combined short/long column for help output.
func (o *Option) forms() string {
	var b strings.Builder
	if o.ShortName != "" {
		b.WriteString("-")
		b.WriteString(o.ShortName)
		if o.LongName != "" {
			b.WriteString(", ")
		}
	} else {
		b.WriteString("    ")
	}
	if o.LongName != "" {
		b.WriteString("--")
		b.WriteString(o.LongName)
	}
	if o.TakesValue {
		b.WriteString(" <value>")
	}
	return b.String()
}

// ArgumentParser tokenizes a process argument vector into named option
// values and ordered positional arguments. The descriptor set is scanned
// linearly for every lookup; at this scale (a handful of options) no index
// is warranted, and the first matching descriptor wins on duplicate names.
//
// A parser instance is rebuilt fresh on every Parse call: previous values,
// positionals and errors never leak across calls.
type ArgumentParser struct {
	programName string
	version     string
	options     []Option

	values      map[string]string
	positionals []string
	lastError   string

	diag *Diagnostics
}

// NewArgumentParser creates a parser for the given program path and version
// string. The program path is stripped of its directory component for
// display. A nil diagnostics channel falls back to stdout/stderr.
func NewArgumentParser(programPath, version string, diag *Diagnostics) *ArgumentParser {
	if diag == nil {
		diag = NewDiagnostics()
	}
	return &ArgumentParser{
		programName: filepath.Base(programPath),
		version:     version,
		values:      make(map[string]string),
		diag:        diag,
	}
}

// AddOption registers an option descriptor. Descriptors are immutable
// during parsing; callers should not register duplicate names (the first
// match wins on lookup, silently).
func (p *ArgumentParser) AddOption(opt Option) *ArgumentParser {
	p.options = append(p.options, opt)
	return p
}

// ProgramName returns the display name of the program (path stripped).
func (p *ArgumentParser) ProgramName() string { return p.programName }

// LastError returns the message from the most recent failed Parse call,
// or "" when the last parse succeeded.
func (p *ArgumentParser) LastError() string { return p.lastError }

// Positionals returns the non-option arguments of the last successful
// parse, in encounter order.
func (p *ArgumentParser) Positionals() []string { return p.positionals }

// Parse consumes the full argument list (excluding the program path) and
// populates the parsed argument set. It returns false on the first syntax
// error, leaving the remaining arguments unexamined; callers must treat a
// false return as "ignore output". The error is retained for LastError and
// written to the diagnostics channel with a usage reminder.
func (p *ArgumentParser) Parse(args []string) bool {
	p.values = make(map[string]string)
	p.positionals = nil
	p.lastError = ""

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "" {
			continue
		}
		switch {
		case strings.HasPrefix(arg, "--"):
			var ok bool
			i, ok = p.parseLong(args, i)
			if !ok {
				return p.fail()
			}
		case len(arg) >= 2 && arg[0] == '-' && arg[1] != '-':
			var ok bool
			i, ok = p.parseBundle(args, i)
			if !ok {
				return p.fail()
			}
		default:
			p.positionals = append(p.positionals, arg)
		}
	}

	for idx := range p.options {
		opt := &p.options[idx]
		if !opt.Required {
			continue
		}
		if _, ok := p.values[opt.Key()]; !ok {
			p.lastError = "Required option missing: " + opt.FlagForm()
			return p.fail()
		}
	}
	return true
}

// parseLong handles a --name or --name=value argument at index i and
// returns the index of the last argument it consumed.
func (p *ArgumentParser) parseLong(args []string, i int) (int, bool) {
	name := args[i][2:]
	value := ""
	inline := false
	if eq := strings.Index(name, "="); eq >= 0 {
		value = name[eq+1:]
		name = name[:eq]
		inline = true
	}

	opt := p.findLong(name)
	if opt == nil {
		p.lastError = "Unknown option: --" + name
		return i, false
	}

	if !opt.TakesValue {
		if inline {
			p.lastError = "Option --" + name + " does not take a value"
			return i, false
		}
		p.values[opt.Key()] = "true"
		return i, true
	}

	if !inline {
		if i+1 >= len(args) {
			p.lastError = "Option --" + name + " requires a value"
			return i, false
		}
		i++
		value = args[i]
	}
	if opt.Validator != nil && !opt.Validator(value) {
		p.lastError = "Invalid value for option --" + name + ": " + value
		return i, false
	}
	p.values[opt.Key()] = value
	return i, true
}

// parseBundle handles a -xyz short-option bundle at index i. Each character
// resolves independently against descriptor short names. The first
// value-taking option consumes the remainder of the bundle as its attached
// value (so -pv8080 stores "v8080" under p, even when v is itself a flag);
// with nothing left in the bundle it consumes the next whole argument.
func (p *ArgumentParser) parseBundle(args []string, i int) (int, bool) {
	bundle := []rune(args[i][1:])
	for j := 0; j < len(bundle); j++ {
		c := string(bundle[j])
		opt := p.findShort(c)
		if opt == nil {
			p.lastError = "Unknown option: -" + c
			return i, false
		}

		if !opt.TakesValue {
			p.values[opt.Key()] = "true"
			continue
		}

		var value string
		if j+1 < len(bundle) {
			value = string(bundle[j+1:])
		} else {
			if i+1 >= len(args) {
				p.lastError = "Option -" + c + " requires a value"
				return i, false
			}
			i++
			value = args[i]
		}
		if opt.Validator != nil && !opt.Validator(value) {
			p.lastError = "Invalid value for option -" + c + ": " + value
			return i, false
		}
		p.values[opt.Key()] = value
		return i, true
	}
	return i, true
}

// fail surfaces the retained error on the diagnostics channel together
// with a usage reminder and always returns false.
func (p *ArgumentParser) fail() bool {
	p.diag.Errorf("%s", p.lastError)
	if p.diag.Err != nil {
		p.printUsageTo(p.diag.Err)
	}
	return false
}

func (p *ArgumentParser) findLong(name string) *Option {
	for idx := range p.options {
		if p.options[idx].LongName == name && name != "" {
			return &p.options[idx]
		}
	}
	return nil
}

func (p *ArgumentParser) findShort(name string) *Option {
	for idx := range p.options {
		if p.options[idx].ShortName == name && name != "" {
			return &p.options[idx]
		}
	}
	return nil
}

func (p *ArgumentParser) findByKey(key string) *Option {
	for idx := range p.options {
		if p.options[idx].Key() == key {
			return &p.options[idx]
		}
	}
	return nil
}

// Accessors

// HasOption reports whether the option was supplied on the command line.
// Keys are canonical: the long name when the descriptor has one.
func (p *ArgumentParser) HasOption(key string) bool {
	_, ok := p.values[key]
	return ok
}

// GetValue returns the stored value for the option key. When the option
// was never supplied, the descriptor's registered default is returned if
// one exists, else the caller-supplied default.
func (p *ArgumentParser) GetValue(key, defaultValue string) string {
	if v, ok := p.values[key]; ok {
		return v
	}
	if opt := p.findByKey(key); opt != nil && opt.DefaultValue != "" {
		return opt.DefaultValue
	}
	return defaultValue
}

// GetIntValue returns the stored value parsed as a decimal integer. A
// malformed or missing value falls back to the caller's default; this
// accessor never fails.
func (p *ArgumentParser) GetIntValue(key string, defaultValue int) int {
	v, ok := p.values[key]
	if !ok {
		if opt := p.findByKey(key); opt != nil && opt.DefaultValue != "" {
			v = opt.DefaultValue
		} else {
			return defaultValue
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBoolValue returns the stored value interpreted as a boolean. Absence
// yields the caller's default; "true"/"1" yield true, "false"/"0" yield
// false, and any other stored value (including the valueless sentinel)
// yields true.
func (p *ArgumentParser) GetBoolValue(key string, defaultValue bool) bool {
	v, ok := p.values[key]
	if !ok {
		return defaultValue
	}
	switch v {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return true
	}
}

// Presentation

// PrintUsage writes the one-line usage summary to the diagnostics output
// stream. The line lists [OPTIONS] and, when any descriptor is required,
// the REQUIRED_OPTIONS placeholder.
func (p *ArgumentParser) PrintUsage() {
	if p.diag.Out == nil {
		return
	}
	p.printUsageTo(p.diag.Out)
}

func (p *ArgumentParser) printUsageTo(w io.Writer) {
	line := "Usage: " + p.programName + " [OPTIONS]"
	if p.hasRequired() {
		line += " REQUIRED_OPTIONS"
	}
	fmt.Fprintln(w, line)
}

// PrintHelp writes the usage line followed by one line per descriptor,
// with option forms aligned to the longest forms column and required and
// default annotations appended to the description.
func (p *ArgumentParser) PrintHelp() {
	if p.diag.Out == nil {
		return
	}
	p.PrintUsage()
	if len(p.options) == 0 {
		return
	}
	fmt.Fprintln(p.diag.Out, "\nOptions:")

	width := 0
	for idx := range p.options {
		if l := len(p.options[idx].forms()); l > width {
			width = l
		}
	}
	for idx := range p.options {
		opt := &p.options[idx]
		desc := opt.Description
		if opt.Required {
			desc += " (required)"
		}
		if opt.DefaultValue != "" {
			desc += " (default: " + opt.DefaultValue + ")"
		}
		fmt.Fprintf(p.diag.Out, "  %-*s  %s\n", width, opt.forms(), desc)
	}
}

// PrintVersion writes the program name and version string.
func (p *ArgumentParser) PrintVersion() {
	if p.diag.Out == nil {
		return
	}
	fmt.Fprintf(p.diag.Out, "%s version %s\n", p.programName, p.version)
}

func (p *ArgumentParser) hasRequired() bool {
	for idx := range p.options {
		if p.options[idx].Required {
			return true
		}
	}
	return false
}
