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

package parser

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bufbuild/layoutkit/report"
	"github.com/bufbuild/layoutkit/source"
	"github.com/bufbuild/layoutkit/token"
)

// ErrNoMatch is returned by rule bodies and lenient expectations when the
// input does not match. It never escapes [Parse].
var ErrNoMatch = errors.New("no match")

// PathEntry is a single rule invocation on a [Path].
type PathEntry struct {
	Rule string
	// Where the invocation started.
	Pos token.Position
}

// Path is the stack of rule invocations that led to some point in a parse,
// outermost first.
type Path []PathEntry

// String renders the path as a sequence of [rule line column] triples.
func (p Path) String() string {
	var out strings.Builder
	for _, e := range p {
		fmt.Fprintf(&out, "[%s %d %d]", e.Rule, e.Pos.Line, e.Pos.Column)
	}
	return out.String()
}

// with returns a copy of p with one more entry; p itself is never modified.
func (p Path) with(rule string, pos token.Position) Path {
	return append(slices.Clip(p), PathEntry{Rule: rule, Pos: pos})
}

func (p Path) last() PathEntry {
	if len(p) == 0 {
		return PathEntry{}
	}
	return p[len(p)-1]
}

// ParseError is a strict failure at a specific token.
type ParseError struct {
	File    *source.File
	Token   token.Token
	Message string

	// What the parser was looking for, such as `BRACE "]"` or
	// `one of [null, bool]`. Empty for errors built by [Run.Fail].
	Expected string

	// The rule that failed, and where it started.
	Rule      string
	RuleStart token.Position

	Path Path
}

// Error implements [error].
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Token.Pos, e.Message)
}

// Diagnose implements [report.Diagnose].
func (e *ParseError) Diagnose(d *report.Diagnostic) {
	d.With(
		report.Message("%s", e.Message),
		report.Snippet(e.File.Span(e.Token.Pos.Offset, e.Token.End()), "found %s %q", e.Token.Kind, e.Token.Text),
		report.Note("while parsing %s starting at %s", e.Rule, e.RuleStart),
		report.Debug("path: %s", e.Path),
	)
	if e.File == nil {
		d.With(report.Note("at %s", e.Token.Pos))
	}
}

// UnlocatedParseError is a strict failure after the last token, where there
// is no token to blame.
type UnlocatedParseError struct {
	File    *source.File
	Offset  int // Just past the last token.
	Message string

	// As for [ParseError].
	Expected string

	Rule string
	Path Path
}

// Error implements [error].
func (e *UnlocatedParseError) Error() string {
	return "unexpected end of input: " + e.Message
}

// Diagnose implements [report.Diagnose].
func (e *UnlocatedParseError) Diagnose(d *report.Diagnostic) {
	d.With(
		report.Message("unexpected end of input"),
		report.Snippet(e.File.Span(e.Offset, e.Offset), "%s", e.Message),
		report.Note("while parsing %s", e.Rule),
		report.Debug("path: %s", e.Path),
	)
	if e.File == nil {
		d.With(report.Note("%s", e.Message))
	}
}

// UnhandledTokenError is returned when no entry rule matches at a token.
type UnhandledTokenError struct {
	File  *source.File
	Token token.Token
}

// Error implements [error].
func (e *UnhandledTokenError) Error() string {
	return fmt.Sprintf("%s: unhandled token %s %q", e.Token.Pos, e.Token.Kind, e.Token.Text)
}

// Diagnose implements [report.Diagnose].
func (e *UnhandledTokenError) Diagnose(d *report.Diagnostic) {
	d.With(
		report.Message("unhandled token %s %q", e.Token.Kind, e.Token.Text),
		report.Snippet(e.File.Span(e.Token.Pos.Offset, e.Token.End()), "no rule starts here"),
	)
}

// describe renders what an expectation was looking for.
func describe(kind token.Kind, values []string) string {
	switch len(values) {
	case 0:
		return string(kind)
	case 1:
		return fmt.Sprintf("%s %q", kind, values[0])
	default:
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		return fmt.Sprintf("%s one of [%s]", kind, strings.Join(quoted, ", "))
	}
}
