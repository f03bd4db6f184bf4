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

package source

import "fmt"

// Span is a half-open byte range within a [File].
//
// The zero Span is the nil span; it refers to no file.
type Span struct {
	File       *File
	Start, End int
}

// Spanner is any type that has a [Span].
type Spanner interface {
	Span() Span
}

// Nil returns whether this is the nil span.
func (s Span) Nil() bool {
	return s.File == nil
}

// Span implements [Spanner].
func (s Span) Span() Span {
	return s
}

// Text returns the text this span covers.
func (s Span) Text() string {
	return s.File.Text()[s.Start:s.End]
}

// StartLoc returns the location of the first byte of this span.
func (s Span) StartLoc() Location {
	return s.File.Location(s.Start)
}

// EndLoc returns the location just past the last byte of this span.
func (s Span) EndLoc() Location {
	return s.File.Location(s.End)
}

// Format implements [fmt.Formatter].
func (s Span) Format(state fmt.State, _ rune) {
	if s.Nil() {
		fmt.Fprint(state, "<nil>")
		return
	}
	start := s.StartLoc()
	fmt.Fprintf(state, "%s:%d:%d[%d:%d]", s.File.Path(), start.Line, start.Column, s.Start, s.End)
}
