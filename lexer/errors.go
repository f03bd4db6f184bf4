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

package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/bufbuild/layoutkit/report"
	"github.com/bufbuild/layoutkit/source"
)

// Error is returned when lexing fails: no rule accepted the text at Offset,
// or the rule that did could not complete its token.
type Error struct {
	File   *source.File
	Offset int
	Reason string
}

// Error implements [error].
func (e *Error) Error() string {
	loc := e.File.Location(e.Offset)
	return fmt.Sprintf("%s at %d:%d (offset %d)", e.Reason, loc.Line, loc.Column, e.Offset)
}

// Diagnose implements [report.Diagnose].
func (e *Error) Diagnose(d *report.Diagnostic) {
	_, width := utf8.DecodeRuneInString(e.File.Text()[e.Offset:])

	d.With(
		report.Message("%s", e.Reason),
		report.Snippet(e.File.Span(e.Offset, e.Offset+width)),
	)
}
