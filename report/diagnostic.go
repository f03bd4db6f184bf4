// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"

	"github.com/bufbuild/layoutkit/source"
)

// Level represents the severity of a diagnostic message.
type Level int8

const (
	// Red. Indicates input that cannot be processed.
	Error Level = 1 + iota
	// Yellow. Indicates something that probably should not be ignored.
	Warning
	// Cyan. This is the diagnostics version of "info".
	Remark
)

// String implements [fmt.Stringer].
func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Remark:
		return "remark"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Diagnose is an error that can be rendered as a diagnostic.
type Diagnose interface {
	error

	// Diagnose writes out this error to the given diagnostic.
	//
	// This function should not set the Level; that is set by the
	// diagnostics framework.
	Diagnose(*Diagnostic)
}

// Diagnostic is a single rich error message, with optional source snippets
// and footers.
//
// To construct a diagnostic, create one using a function like [Report.Error].
// Then, call [Diagnostic.With] to apply options to it.
type Diagnostic struct {
	message string
	level   Level

	// The file this diagnostic occurs in, if it has no snippet.
	inFile string

	annotations        []annotation
	notes, help, debug []string
}

// DiagnosticOption is an option that can be applied to a [Diagnostic].
//
// Nil values passed to [Diagnostic.With] are ignored.
type DiagnosticOption interface {
	Apply(*Diagnostic)
}

// Level returns this diagnostic's level.
func (d *Diagnostic) Level() Level {
	return d.level
}

// Message returns this diagnostic's message.
func (d *Diagnostic) Message() string {
	return d.message
}

// Primary returns this diagnostic's primary span, if it has one.
//
// If it doesn't have one, it returns the nil span.
func (d *Diagnostic) Primary() source.Span {
	for _, a := range d.annotations {
		if a.primary {
			return a.Span
		}
	}
	return source.Span{}
}

// Path returns the path of the file this diagnostic refers to, if any.
func (d *Diagnostic) Path() string {
	if span := d.Primary(); !span.Nil() {
		return span.File.Path()
	}
	return d.inFile
}

// With applies the given options to this diagnostic.
//
// Nil values are ignored.
func (d *Diagnostic) With(options ...DiagnosticOption) *Diagnostic {
	for _, option := range options {
		if option != nil {
			option.Apply(d)
		}
	}
	return d
}

// Message returns a DiagnosticOption that sets the main diagnostic message.
func Message(format string, args ...any) DiagnosticOption {
	return message(fmt.Sprintf(format, args...))
}

// InFile is a DiagnosticOption that causes a diagnostic without a primary
// span to mention the given file.
type InFile string

// Apply implements [DiagnosticOption].
func (f InFile) Apply(d *Diagnostic) {
	if d.inFile != "" {
		panic("layoutkit/report: set diagnostic path more than once")
	}
	d.inFile = string(f)
}

// Snippet returns a DiagnosticOption that adds a new snippet to a diagnostic.
//
// Any additional arguments to this function are passed to [fmt.Sprintf] to
// produce a message to go with the span.
//
// The first annotation added is the "primary" annotation, and will be rendered
// differently from the others.
//
// Returns nil if at has a nil span.
func Snippet(at source.Spanner, args ...any) DiagnosticOption {
	if at == nil {
		return nil
	}
	span := at.Span()
	if span.Nil() {
		return nil
	}

	a := annotation{Span: span}
	if len(args) > 0 {
		format, ok := args[0].(string)
		if !ok {
			panic("layoutkit/report: expected string as first Snippet argument")
		}
		a.message = fmt.Sprintf(format, args[1:]...)
	}
	return a
}

// Note returns a DiagnosticOption that provides the user with context about the
// diagnostic, after the annotations.
func Note(format string, args ...any) DiagnosticOption {
	return note(fmt.Sprintf(format, args...))
}

// Help returns a DiagnosticOption that provides the user with a helpful prose
// suggestion for resolving the diagnostic.
func Help(format string, args ...any) DiagnosticOption {
	return help(fmt.Sprintf(format, args...))
}

// Debug returns a DiagnosticOption that appends information that is not
// intended to be shown to normal users.
func Debug(format string, args ...any) DiagnosticOption {
	return debug(fmt.Sprintf(format, args...))
}

// annotation is an annotated source code snippet within a [Diagnostic].
type annotation struct {
	source.Span

	// A message to show under this snippet. May be empty.
	message string

	// Whether this is the "primary" snippet, which is rendered in the color
	// of the diagnostic's level.
	primary bool
}

func (a annotation) Apply(d *Diagnostic) {
	a.primary = len(d.annotations) == 0
	d.annotations = append(d.annotations, a)
}

type message string
type note string
type help string
type debug string

func (m message) Apply(d *Diagnostic) {
	if d.message != "" {
		panic("layoutkit/report: set diagnostic message more than once")
	}
	d.message = string(m)
}

func (n note) Apply(d *Diagnostic)  { d.notes = append(d.notes, string(n)) }
func (n help) Apply(d *Diagnostic)  { d.help = append(d.help, string(n)) }
func (n debug) Apply(d *Diagnostic) { d.debug = append(d.debug, string(n)) }
