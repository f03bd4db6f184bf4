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

// Package report provides a structured diagnostics reporting system and a
// renderer that prints diagnostics with annotated source snippets.
package report

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Report is a collection of diagnostics.
//
// A Report is not safe for concurrent use; give each goroutine its own and
// merge them with [Report.Merge].
type Report struct {
	Diagnostics []Diagnostic
}

// Error pushes an error diagnostic built from err onto this report.
func (r *Report) Error(err Diagnose) *Diagnostic {
	d := r.push(Error)
	err.Diagnose(d)
	return d
}

// Warn pushes a warning diagnostic built from err onto this report.
func (r *Report) Warn(err Diagnose) *Diagnostic {
	d := r.push(Warning)
	err.Diagnose(d)
	return d
}

// Errorf creates a new error diagnostic with the given message.
func (r *Report) Errorf(format string, args ...any) *Diagnostic {
	return r.push(Error).With(Message(format, args...))
}

// Warnf creates a new warning diagnostic with the given message.
func (r *Report) Warnf(format string, args ...any) *Diagnostic {
	return r.push(Warning).With(Message(format, args...))
}

// Remarkf creates a new remark diagnostic with the given message.
func (r *Report) Remarkf(format string, args ...any) *Diagnostic {
	return r.push(Remark).With(Message(format, args...))
}

// Append records an arbitrary error. Errors that implement [Diagnose]
// anywhere in their chain are diagnosed in full; others only contribute
// their message.
func (r *Report) Append(err error, options ...DiagnosticOption) *Diagnostic {
	var diagnose Diagnose
	if errors.As(err, &diagnose) {
		return r.Error(diagnose).With(options...)
	}
	return r.Errorf("%v", err).With(options...)
}

// Merge appends the diagnostics of other to r.
func (r *Report) Merge(other *Report) {
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// HasErrors returns whether this report contains any error diagnostics.
func (r *Report) HasErrors() bool {
	return slices.ContainsFunc(r.Diagnostics, func(d Diagnostic) bool {
		return d.level == Error
	})
}

// Sort sorts the diagnostics by file, then by position within the file.
// Diagnostics without a position sort first within their file.
func (r *Report) Sort() {
	slices.SortStableFunc(r.Diagnostics, func(a, b Diagnostic) int {
		if c := cmp.Compare(a.Path(), b.Path()); c != 0 {
			return c
		}

		pa, pb := a.Primary(), b.Primary()
		switch {
		case pa.Nil() && pb.Nil():
			return 0
		case pa.Nil():
			return -1
		case pb.Nil():
			return 1
		}
		return cmp.Compare(pa.Start, pb.Start)
	})
}

// push is the core "make me a diagnostic" function.
func (r *Report) push(level Level) *Diagnostic {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{level: level})
	return &r.Diagnostics[len(r.Diagnostics)-1]
}

// String implements [fmt.Stringer], using the compact rendering.
func (r *Report) String() string {
	text, _, _ := Renderer{Compact: true}.RenderString(r)
	return text
}

var _ fmt.Stringer = (*Report)(nil)
