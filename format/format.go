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

// Package format reconstructs the layout of a syntax tree.
//
// A [Policy] is an ordered list of layout passes. Rendering a tree copies
// every token into a decorated [Token], runs each pass over the decorated
// tokens, and then prints them: tokens are grouped by their target line, and
// each line is built from its tokens' indentation, margins and text.
//
// Rendering never fails. Nodes without tokens contribute nothing.
package format

import (
	"fmt"
	"strings"

	"github.com/tidwall/btree"

	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/tree"
)

// Token is a token decorated with layout state.
type Token struct {
	token.Token

	// The line this token is printed on, 1-indexed. It starts out as the
	// token's source line.
	Line int

	// Spaces requested before and after this token. The left margin only
	// applies if the token is not first on its line, and counts spaces
	// already present.
	MarginLeft, MarginRight int

	// The indentation of the line this token starts, if IndentSet.
	Indent    int
	IndentSet bool
}

// SetIndent sets the indentation of this token.
func (t *Token) SetIndent(indent int) {
	t.Indent = indent
	t.IndentSet = true
}

// Policy is an ordered list of layout passes. A Policy has no mutable
// state, so one Policy may render many trees at once.
type Policy struct {
	passes []Pass
}

// NewPolicy returns a policy that runs the given passes in order.
func NewPolicy(passes ...Pass) *Policy {
	return &Policy{passes: passes}
}

// Render lays out t and prints it.
//
// The result has no trailing newline, and no line of it has trailing
// whitespace.
func (p *Policy) Render(t *tree.Tree) string {
	return p.run(t).print()
}

// Layout lays out t and returns the decorated tokens in source order.
func (p *Policy) Layout(t *tree.Tree) []Token {
	s := p.run(t)
	out := make([]Token, len(s.tokens))
	for i, tok := range s.tokens {
		out[i] = *tok
	}
	return out
}

// Debug lays out t and returns a dump of its decorated tokens, one per line.
func (p *Policy) Debug(t *tree.Tree) string {
	var out strings.Builder
	for _, tok := range p.Layout(t) {
		fmt.Fprintf(&out, "%-8s %-10q %4d:%-3d -> %d", tok.Kind, tok.Text, tok.Pos.Line, tok.Pos.Column, tok.Line)
		if tok.IndentSet {
			fmt.Fprintf(&out, " indent=%d", tok.Indent)
		}
		if tok.MarginLeft != 0 || tok.MarginRight != 0 {
			fmt.Fprintf(&out, " margin=%d,%d", tok.MarginLeft, tok.MarginRight)
		}
		out.WriteByte('\n')
	}
	return out.String()
}

func (p *Policy) run(t *tree.Tree) *state {
	s := ingest(t)
	for _, pass := range p.passes {
		pass.run(s)
	}
	return s
}

// state is the per-render decorated token set.
type state struct {
	roots []*tree.Node

	// Decorated tokens in source order, and indexed by source offset.
	tokens   []*Token
	byOffset btree.Map[int, *Token]
}

func ingest(t *tree.Tree) *state {
	s := new(state)
	if t == nil {
		return s
	}

	s.roots = t.Nodes
	for tok := range t.Tokens() {
		s.byOffset.Set(tok.Pos.Offset, &Token{Token: tok, Line: tok.Pos.Line})
	}
	s.tokens = make([]*Token, 0, s.byOffset.Len())
	s.byOffset.Scan(func(_ int, tok *Token) bool {
		s.tokens = append(s.tokens, tok)
		return true
	})
	return s
}

// lookup returns the decorated version of tok. Returns nil for tokens that
// are not part of the tree being rendered.
func (s *state) lookup(tok token.Token) *Token {
	dec, _ := s.byOffset.Get(tok.Pos.Offset)
	return dec
}

// print groups the tokens by target line and prints each line.
func (s *state) print() string {
	var lines [][]*Token
	for _, tok := range s.tokens {
		line := max(tok.Line-1, 0)
		for len(lines) <= line {
			lines = append(lines, nil)
		}
		lines[line] = append(lines[line], tok)
	}

	var out, buf strings.Builder
	for i, line := range lines {
		if i > 0 {
			out.WriteByte('\n')
		}

		buf.Reset()
		if len(line) > 0 && line[0].IndentSet {
			pad(&buf, line[0].Indent)
		}
		for _, tok := range line {
			if text := buf.String(); tok.MarginLeft > 0 && strings.TrimSpace(text) != "" {
				trailing := len(text) - len(strings.TrimRight(text, " "))
				pad(&buf, tok.MarginLeft-trailing)
			}
			buf.WriteString(tok.Text)
			pad(&buf, tok.MarginRight)
		}
		out.WriteString(strings.TrimRight(buf.String(), " \t\r\n"))
	}
	return out.String()
}

func pad(out *strings.Builder, spaces int) {
	for range spaces {
		out.WriteByte(' ')
	}
}
