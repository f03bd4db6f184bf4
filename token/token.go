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

// Package token defines the lexical tokens shared by the lexer, the rule
// engine and the formatter.
package token

import (
	"fmt"
	"slices"
)

// Kind is a grammar-defined lexical kind, such as "STRING" or "BRACE".
type Kind string

// Position is where a token starts in its source text.
type Position struct {
	// 1-indexed line and byte column.
	Line, Column int
	// 0-indexed byte offset. Offsets are unique per token and are used to
	// join tree leaves with formatter state.
	Offset int
}

// String implements [fmt.Stringer].
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token. Tokens are immutable values.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

// IsZero returns whether this is the zero token.
func (t Token) IsZero() bool {
	return t == Token{}
}

// End returns the offset just past the end of this token.
func (t Token) End() int {
	return t.Pos.Offset + len(t.Text)
}

// Is returns whether t has the given kind and, if any values are given,
// whether its text is one of them.
func (t Token) Is(kind Kind, values ...string) bool {
	if t.Kind != kind {
		return false
	}
	return len(values) == 0 || slices.Contains(values, t.Text)
}

// String implements [fmt.Stringer].
func (t Token) String() string {
	return fmt.Sprintf("%s %q %d:%d", t.Kind, t.Text, t.Pos.Line, t.Pos.Column)
}
