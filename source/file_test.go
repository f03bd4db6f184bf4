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

package source_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/layoutkit/source"
)

func TestLocation(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test.json", "{\n  \"a\": 1\n}\n")
	tests := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 2, 1},
		{4, 2, 3},
		{10, 2, 9},
		{11, 3, 1},
		{12, 3, 2},
		{13, 4, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.offset), func(t *testing.T) {
			t.Parallel()

			loc := file.Location(tt.offset)
			assert.Equal(t, source.Location{Offset: tt.offset, Line: tt.line, Column: tt.column}, loc)
			assert.Equal(t, tt.offset, file.Offset(tt.line, tt.column))
		})
	}
}

func TestLines(t *testing.T) {
	t.Parallel()

	file := source.NewFile("", "a\nbc\n\nd")
	assert.Equal(t, 4, file.Lines())
	assert.Equal(t, "a\n", file.Line(1))
	assert.Equal(t, "bc\n", file.Line(2))
	assert.Equal(t, "\n", file.Line(3))
	assert.Equal(t, "d", file.Line(4))
	assert.Equal(t, -1, file.Offset(5, 1))

	var nilFile *source.File
	assert.Empty(t, nilFile.Path())
	assert.Equal(t, source.Location{Line: 1, Column: 1}, nilFile.Location(10))
}

func TestSpan(t *testing.T) {
	t.Parallel()

	file := source.NewFile("x.json", "[1, 2]\n\n")
	span := file.Span(1, 2)
	assert.Equal(t, "1", span.Text())
	assert.Equal(t, "x.json:1:2[1:2]", fmt.Sprint(span))
	assert.Equal(t, 6, file.EOF().Start)
	assert.True(t, source.Span{}.Nil())
}
