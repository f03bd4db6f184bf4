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

package format

import (
	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/tree"
)

// Pass is a single layout pass of a [Policy].
type Pass interface {
	run(*state)
}

// TokenPass returns a pass that visits every token in source order.
//
// After fn returns, the token is moved down by the walker's accumulated line
// offset; see [TokenWalker.MoveLine].
func TokenPass(fn func(tok *Token, w *TokenWalker)) Pass {
	return tokenPass(fn)
}

type tokenPass func(*Token, *TokenWalker)

func (fn tokenPass) run(s *state) {
	w := new(TokenWalker)
	for i, tok := range s.tokens {
		w.prev, w.next = nil, nil
		if i > 0 {
			w.prev = s.tokens[i-1]
		}
		if i+1 < len(s.tokens) {
			w.next = s.tokens[i+1]
		}

		fn(tok, w)
		tok.Line += w.lineOffset
	}
}

// TokenWalker is the state of a [TokenPass].
type TokenWalker struct {
	prev, next *Token
	lineOffset int
}

// Prev returns the token before the current one, or nil.
func (w *TokenWalker) Prev() *Token { return w.prev }

// Next returns the token after the current one, or nil.
func (w *TokenWalker) Next() *Token { return w.next }

// MoveLine shifts the current token, and every token after it, by delta
// lines.
func (w *TokenWalker) MoveLine(delta int) {
	w.lineOffset += delta
}

// ItemPass returns a pass that visits every node depth-first, in tree order.
//
// Line breaks requested by fn with [ItemWalker.BreakAfter] and friends are
// applied as the walk crosses them: every later token moves down by a line.
func ItemPass(fn func(n *tree.Node, w *ItemWalker)) Pass {
	return &itemPass{fn: fn}
}

// IndentPass is like [ItemPass], but also propagates indentation: a node
// whose first token has an indentation passes it down to its subtree, and
// every token without an indentation inherits the one of its node's level.
func IndentPass(fn func(n *tree.Node, w *ItemWalker)) Pass {
	return &itemPass{fn: fn, indent: true}
}

type itemPass struct {
	fn     func(*tree.Node, *ItemWalker)
	indent bool
}

func (p *itemPass) run(s *state) {
	w := &itemWalk{
		itemPass: p,
		state:    s,
		after:    make(map[int]struct{}),
		before:   make(map[*tree.Slot]struct{}),
	}

	var lineOffset int
	for _, root := range s.roots {
		lineOffset = w.walk(root, level{lineOffset: lineOffset})
	}
}

// itemWalk is the state of a single run of an [itemPass].
type itemWalk struct {
	*itemPass
	state *state

	// Breaks requested so far. after is keyed by token offset.
	after  map[int]struct{}
	before map[*tree.Slot]struct{}
}

// level is the per-depth state of an item walk. It is passed down by value
// and the line offset is threaded back up through return values.
type level struct {
	lineOffset, baseIndent int
	depth                  int
}

func (w *itemWalk) walk(n *tree.Node, lvl level) int {
	first, ok := n.FirstToken()
	if !ok {
		return lvl.lineOffset
	}

	w.fn(n, &ItemWalker{walk: w, node: n, level: lvl})

	child := lvl
	child.depth++
	if tok := w.state.lookup(first); tok != nil && tok.IndentSet {
		child.baseIndent = tok.Indent
	}

	for _, s := range n.Content() {
		switch s.Kind() {
		case tree.NodeSlot:
			if w.indent {
				if first, ok := s.FirstToken(); ok {
					if tok := w.state.lookup(first); tok != nil && tok.IndentSet {
						child.baseIndent = tok.Indent
					}
				}
			}
			child.lineOffset = w.walk(s.Node(), child)

		case tree.TokenSlot:
			tok := w.state.lookup(s.Token())
			if tok == nil {
				continue
			}

			if _, ok := w.before[s]; ok {
				child.lineOffset++
			}
			tok.Line += child.lineOffset
			if w.indent && !tok.IndentSet {
				tok.SetIndent(lvl.baseIndent)
			}
			if _, ok := w.after[tok.Pos.Offset]; ok {
				child.lineOffset++
			}
		}
	}
	return child.lineOffset
}

// ItemWalker is passed to the callback of an [ItemPass] for each node.
//
// An ItemWalker must not be retained after the callback returns.
type ItemWalker struct {
	walk *itemWalk
	node *tree.Node
	level
}

// Node returns the node being visited.
func (w *ItemWalker) Node() *tree.Node { return w.node }

// BaseIndent returns the indentation of the level the node is on.
func (w *ItemWalker) BaseIndent() int { return w.baseIndent }

// Depth returns how many nodes enclose the node being visited. Roots are at
// depth zero.
func (w *ItemWalker) Depth() int { return w.depth }

// LineOffset returns how many lines the walk has moved tokens down by so far.
func (w *ItemWalker) LineOffset() int { return w.lineOffset }

// Token returns the decorated version of tok, or nil if tok is not part of
// the tree being rendered.
func (w *ItemWalker) Token(tok token.Token) *Token {
	return w.walk.state.lookup(tok)
}

// SameLine returns whether the first tokens of a and b start on the same
// source line. Returns false if either has no token.
func (w *ItemWalker) SameLine(a, b *tree.Slot) bool {
	ta, ok1 := a.FirstToken()
	tb, ok2 := b.FirstToken()
	return ok1 && ok2 && sameLine(ta, tb)
}

func sameLine(a, b token.Token) bool {
	return a.Pos.Line == b.Pos.Line
}

// BreakAfter requests a line break after tok, if the node's next slot starts
// on the same source line that tok is on.
func (w *ItemWalker) BreakAfter(tok token.Token) {
	content := w.node.Content()

	// Find the last slot that ends in tok.
	idx := -1
	for i, s := range content {
		if last, ok := s.LastToken(); ok && last == tok {
			idx = i
		}
	}
	if idx < 0 || idx+1 >= len(content) {
		return
	}

	if next, ok := content[idx+1].FirstToken(); ok && sameLine(tok, next) {
		w.walk.after[tok.Pos.Offset] = struct{}{}
	}
}

// BreakBefore requests a line break before the token slot s, if the
// previous slot starts on the same source line as s.
func (w *ItemWalker) BreakBefore(s *tree.Slot) {
	idx := w.node.Index(s)
	if idx <= 0 {
		return
	}
	if w.SameLine(s, w.node.Content()[idx-1]) {
		w.walk.before[s] = struct{}{}
	}
}

// BreakAroundTokens breaks lines after start, after every token slot named
// sep, and before end, unless start and end are on the same source line.
func (w *ItemWalker) BreakAroundTokens(start, end *tree.Slot, sep string) {
	if w.SameLine(start, end) {
		return
	}
	w.breakAfterSlot(start)
	for s := range w.node.Named(sep) {
		if s.Kind() == tree.TokenSlot {
			w.breakAfterSlot(s)
		}
	}
	w.BreakBefore(end)
}

// BreakAroundNodes is like [ItemWalker.BreakAroundTokens], but the
// separators are node slots, and the break goes after their last token.
func (w *ItemWalker) BreakAroundNodes(start, end *tree.Slot, sep string) {
	if w.SameLine(start, end) {
		return
	}
	w.breakAfterSlot(start)
	for s := range w.node.Named(sep) {
		if s.Kind() == tree.NodeSlot {
			w.breakAfterSlot(s)
		}
	}
	w.BreakBefore(end)
}

func (w *ItemWalker) breakAfterSlot(s *tree.Slot) {
	if last, ok := s.LastToken(); ok {
		w.BreakAfter(last)
	}
}

// IndentBetween indents every slot strictly between start and end by n more
// than the base indentation, unless start and end are on the same source
// line.
func (w *ItemWalker) IndentBetween(start, end *tree.Slot, n int) {
	if w.SameLine(start, end) {
		return
	}
	for s := range w.node.Between(start, end, false) {
		w.indent(s, n)
	}
}

// IndentAfter indents every slot after from that does not start on from's
// source line by n more than the base indentation.
func (w *ItemWalker) IndentAfter(from *tree.Slot, n int) {
	for s := range w.node.After(from, false) {
		if !w.SameLine(from, s) {
			w.indent(s, n)
		}
	}
}

func (w *ItemWalker) indent(s *tree.Slot, n int) {
	first, ok := s.FirstToken()
	if !ok {
		return
	}
	if tok := w.Token(first); tok != nil {
		tok.SetIndent(w.baseIndent + n)
	}
}

// SetMarginLeft sets the left margin of tok.
func (w *ItemWalker) SetMarginLeft(tok token.Token, margin int) {
	if dec := w.Token(tok); dec != nil {
		dec.MarginLeft = margin
	}
}

// SetMarginRight sets the right margin of tok.
func (w *ItemWalker) SetMarginRight(tok token.Token, margin int) {
	if dec := w.Token(tok); dec != nil {
		dec.MarginRight = margin
	}
}
