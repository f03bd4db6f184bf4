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

package json

import (
	"github.com/bufbuild/layoutkit/format"
	"github.com/bufbuild/layoutkit/tree"
)

// LayoutOptions are the parameters of the JSON layout policy.
type LayoutOptions struct {
	// The largest allowed distance between the lines of two consecutive
	// tokens; larger gaps are closed up to it. 2 allows one blank line.
	//
	// Defaults to 2.
	LineGap int `yaml:"line_gap"`

	// How many columns each level of a broken array or object is indented
	// by.
	//
	// Defaults to 2.
	Indent int `yaml:"indent"`
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	if o.LineGap <= 0 {
		o.LineGap = 2
	}
	if o.Indent <= 0 {
		o.Indent = 2
	}
	return o
}

// Policy returns the JSON layout policy.
//
// Arrays and objects whose brackets are on different lines get a line break
// after the opening bracket and after each comma, and before the closing
// bracket, and their contents are indented by one level. Arrays and objects
// that fit on one line stay on one line.
func Policy(opts LayoutOptions) *format.Policy {
	opts = opts.withDefaults()
	return format.NewPolicy(
		format.TokenPass(func(tok *format.Token, w *format.TokenWalker) {
			prev := w.Prev()
			if prev == nil {
				return
			}
			if dist := tok.Pos.Line - prev.Pos.Line; dist > opts.LineGap {
				w.MoveLine(opts.LineGap - dist)
			}
		}),
		format.ItemPass(func(n *tree.Node, w *format.ItemWalker) {
			if w.Depth() == 0 {
				separate(n, w)
			}
			if n.Kind == Array || n.Kind == Object {
				w.BreakAroundTokens(n.First("start"), n.First("end"), "comma")
			}
		}),
		format.TokenPass(margins),
		format.IndentPass(func(n *tree.Node, w *format.ItemWalker) {
			if n.Kind == Array || n.Kind == Object {
				w.IndentBetween(n.First("start"), n.First("end"), opts.Indent)
			}
		}),
	)
}

// separate keeps a top-level value apart from the one before it when they
// share a line, so that e.g. two numbers do not run together. The margin has
// no effect on the first token of a line.
func separate(n *tree.Node, w *format.ItemWalker) {
	if first, ok := n.FirstToken(); ok {
		if tok := w.Token(first); tok != nil {
			tok.MarginLeft = 1
		}
	}
}

// margins puts a space inside braces, and after colons and commas.
func margins(tok *format.Token, w *format.TokenWalker) {
	switch {
	case tok.Is(KindBrace, "{"):
		if next := w.Next(); next != nil && next.Kind != KindBrace {
			tok.MarginRight = 1
		}
	case tok.Is(KindBrace, "}"):
		if prev := w.Prev(); prev != nil && !prev.Is(KindBrace, "{") {
			tok.MarginLeft = 1
		}
	case tok.Is(KindSymbol, ",", ":"):
		tok.MarginRight = 1
	}
}
