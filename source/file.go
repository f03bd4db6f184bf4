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

// Package source provides source file handling: mapping byte offsets to
// lines and columns, and spans of text within a file.
package source

import (
	"slices"
	"strings"
	"sync"
	"unicode"
)

// File is a source text that tokens and diagnostics refer back to.
//
// It contains additional book-keeping information for resolving offsets to
// locations. Files are immutable once created.
//
// A nil *File behaves like an empty file with the path name "".
type File struct {
	path, text string

	once sync.Once
	// Offsets of the start of each line; the first entry is always zero. A
	// binary search over it finds the line an offset is on.
	lineIndex []int
}

// Location is a user-displayable location within a source file.
type Location struct {
	// The byte offset for this location.
	Offset int

	// The line and column for this location, 1-indexed. Columns are measured
	// in bytes.
	Line, Column int
}

// NewFile constructs a new source file.
func NewFile(path, text string) *File {
	return &File{path: path, text: text}
}

// Path returns this file's path.
//
// It doesn't need to be a real path; it is only used for display.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Text returns this file's textual contents.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return f.text
}

// Lines returns the number of lines in this file. An empty file has one line.
func (f *File) Lines() int {
	return len(f.lines())
}

// LineByOffset returns the 1-indexed line containing the given byte offset.
//
// This operation is O(log n).
func (f *File) LineByOffset(offset int) int {
	lines := f.lines()
	if len(lines) == 0 {
		return 1
	}

	// Find the largest index such that lines[line] <= offset.
	line, exact := slices.BinarySearch(lines, offset)
	if !exact {
		line--
	}
	return line + 1
}

// Location resolves a byte offset into a full [Location].
//
// This operation is O(log n).
func (f *File) Location(offset int) Location {
	if f == nil || offset <= 0 {
		return Location{Offset: 0, Line: 1, Column: 1}
	}

	line := f.LineByOffset(offset)
	return Location{
		Offset: offset,
		Line:   line,
		Column: offset - f.lines()[line-1] + 1,
	}
}

// Offset inverts [File.Location]: it returns the byte offset of a 1-indexed
// line and column. Positions past the end of a line are clamped to it.
func (f *File) Offset(line, column int) int {
	if f == nil || line < 1 || line > f.Lines() {
		return -1
	}

	start, end := f.LineOffsets(line)
	return min(start+max(column, 1)-1, end)
}

// Line returns the given 1-indexed line, including its trailing newline.
func (f *File) Line(line int) string {
	start, end := f.LineOffsets(line)
	return f.Text()[start:end]
}

// LineOffsets returns the offsets for the given 1-indexed line, including its
// trailing newline.
func (f *File) LineOffsets(line int) (start, end int) {
	lines := f.lines()
	if len(lines) == line {
		return lines[line-1], len(f.Text())
	}
	return lines[line-1], lines[line]
}

// Span is a shorthand for creating a new Span.
func (f *File) Span(start, end int) Span {
	if f == nil {
		return Span{}
	}
	return Span{File: f, Start: start, End: end}
}

// EOF returns a Span pointing just past the last non-space rune of the file.
func (f *File) EOF() Span {
	eof := strings.LastIndexFunc(f.Text(), func(r rune) bool {
		return !unicode.In(r, unicode.Pattern_White_Space)
	})
	return f.Span(eof+1, eof+1)
}

func (f *File) lines() []int {
	if f == nil {
		return nil
	}

	// Compute the prefix sum on-demand.
	f.once.Do(func() {
		var next int

		// We add 1 to the return value of IndexByte because we want to work
		// with the index immediately *after* the newline byte.
		text := f.text
		for {
			newline := strings.IndexByte(text, '\n') + 1
			if newline == 0 {
				break
			}

			text = text[newline:]

			f.lineIndex = append(f.lineIndex, next)
			next += newline
		}

		f.lineIndex = append(f.lineIndex, next)
	})
	return f.lineIndex
}
