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

package tree

import (
	"fmt"
	"iter"
	"strings"

	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/trace"
)

// Tree is a parsed syntax tree: an ordered list of top-level nodes.
type Tree struct {
	Nodes []*Node
}

// Tokens returns an iterator over every token in the tree, in pre-order.
//
// For trees built by a parser, this is source order.
func (t *Tree) Tokens() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for _, n := range t.Nodes {
			if !n.tokens(yield) {
				return
			}
		}
	}
}

// String renders the tree for debugging. Each node is printed as its kind in
// brackets, followed by its slots with their names aligned.
func (t *Tree) String() string {
	var out strings.Builder
	for _, n := range t.Nodes {
		printNode(&out, " - ", n)
	}
	return out.String()
}

func printNode(out *strings.Builder, prefix string, n *Node) {
	pad := strings.Repeat(" ", len(prefix))
	fmt.Fprintf(out, "%s[%s]\n", prefix, n.Kind)

	width := 0
	for _, s := range n.content {
		width = max(width, len(s.name))
	}

	for _, s := range n.content {
		switch s.kind {
		case TokenSlot:
			fmt.Fprintf(out, "%s..%-*s: %s\n", pad, width, s.name, s.tok)
		case NodeSlot:
			fmt.Fprintf(out, "%s..%-*s:\n", pad, width, s.name)
			printNode(out, pad+"  - ", s.node)
		}
	}
}

// Report appends a diagnostic description of the tree to tr: one entry per
// node and per token slot, with Enter and Leave events around each node's
// slots.
func (t *Tree) Report(tr *trace.Trace) {
	for _, n := range t.Nodes {
		report(tr, "", n, n.LowPriority)
	}
}

func report(tr *trace.Trace, prefix string, n *Node, low bool) {
	var first *token.Token
	if tok, ok := n.FirstToken(); ok {
		first = &tok
	}

	tr.Record(first, trace.Info, prefix, n.Kind, low)
	tr.Enter()
	for _, s := range n.content {
		switch s.kind {
		case TokenSlot:
			tr.Record(&s.tok, trace.Info, "", "<"+s.name+">", low)
		case NodeSlot:
			report(tr, s.name, s.node, low || s.node.LowPriority)
		}
	}
	tr.Leave()
}

// Retoken returns a deep copy of the tree with every token replaced by the
// result of fn. Slot names, order and node kinds are preserved.
func (t *Tree) Retoken(fn func(token.Token) token.Token) *Tree {
	out := &Tree{Nodes: make([]*Node, len(t.Nodes))}
	for i, n := range t.Nodes {
		out.Nodes[i] = n.retoken(fn)
	}
	return out
}

func (n *Node) retoken(fn func(token.Token) token.Token) *Node {
	out := &Node{Kind: n.Kind, LowPriority: n.LowPriority}
	for _, s := range n.content {
		switch s.kind {
		case TokenSlot:
			out.AddToken(s.name, fn(s.tok))
		case NodeSlot:
			out.AddNode(s.name, s.node.retoken(fn))
		}
	}
	return out
}

// Collapse returns a copy of t in which target's tokens have been renumbered
// onto target's first line.
//
// Tokens before target keep their lines. Tokens after it move up by the
// number of lines target used to span. Offsets and columns are unchanged.
//
// Returns t itself if target has no tokens.
func Collapse(t *Tree, target *Node) *Tree {
	first, ok1 := target.FirstToken()
	last, ok2 := target.LastToken()
	if !ok1 || !ok2 {
		return t
	}

	span := last.Pos.Line - first.Pos.Line
	return t.Retoken(func(tok token.Token) token.Token {
		switch {
		case tok.Pos.Offset < first.Pos.Offset:
		case tok.Pos.Offset <= last.Pos.Offset:
			tok.Pos.Line = first.Pos.Line
		default:
			tok.Pos.Line -= span
		}
		return tok
	})
}
