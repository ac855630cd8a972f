/*
	acme65 - Diagnostics

	Copyright (c) 2024, Richard Cornwell

	Permission is hereby granted, free of charge, to any person obtaining a
	copy of this software and associated documentation files (the "Software"),
	to deal in the Software without restriction, including without limitation
	the rights to use, copy, modify, merge, publish, distribute, sublicense,
	and/or sell copies of the Software, and to permit persons to whom the
	Software is furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in
	all copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
	RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
	IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
	CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

// Package diag implements the assembler's diagnostic taxonomy (warn,
// error, serious/fatal) and the textual formatter contract: a single
// summary line followed by the offending source line and a caret span.
package diag

import (
	"fmt"
	"strings"
)

// Severity orders a diagnostic's handling: Warn never affects the
// final exit code, Error records and continues, Serious aborts the
// run immediately.
type Severity int

const (
	Warn Severity = iota
	Error
	Serious
)

func (s Severity) String() string {
	switch s {
	case Warn:
		return "Warning"
	case Error:
		return "Error"
	case Serious:
		return "Serious Error"
	default:
		return "Diagnostic"
	}
}

// Diagnostic is one recorded message tied to a source position.
type Diagnostic struct {
	Severity   Severity
	File       string
	Line       int
	Column     int
	Message    string
	SourceText string // the offending source line, for the caret-span rendering
}

// Format renders d per the documented external-formatter contract:
// "{Severity} - File {path}, line {n}: {message}" followed by the
// source line and a caret pointing at Column.
func (d Diagnostic) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - File %s, line %d: %s\n", d.Severity, d.File, d.Line, d.Message)
	if d.SourceText != "" {
		b.WriteString(d.SourceText)
		b.WriteByte('\n')
		col := d.Column
		if col < 0 {
			col = 0
		}
		b.WriteString(strings.Repeat(" ", col))
		b.WriteByte('^')
	}
	return b.String()
}

// Sink collects diagnostics for one run and decides the process exit
// code: non-zero iff any Error or Serious diagnostic was recorded.
type Sink struct {
	diags   []Diagnostic
	fatal   bool
	errored bool
}

// NewSink returns an empty diagnostic sink.
func NewSink() *Sink { return &Sink{} }

// Report records d. It returns true if assembly must stop immediately
// (d.Severity == Serious).
func (s *Sink) Report(d Diagnostic) (fatal bool) {
	s.diags = append(s.diags, d)
	switch d.Severity {
	case Error:
		s.errored = true
	case Serious:
		s.errored = true
		s.fatal = true
		return true
	}
	return false
}

// Fatal reports whether a Serious diagnostic has been recorded.
func (s *Sink) Fatal() bool { return s.fatal }

// ExitCode is 1 if any Error or Serious diagnostic was recorded, 0
// otherwise — Warn diagnostics alone do not affect it.
func (s *Sink) ExitCode() int {
	if s.errored {
		return 1
	}
	return 0
}

// All returns every diagnostic recorded so far, in report order.
func (s *Sink) All() []Diagnostic { return s.diags }
