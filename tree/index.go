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
	"cmp"
	"slices"

	"github.com/bufbuild/layoutkit/internal/interval"
	"github.com/bufbuild/layoutkit/token"
)

// Index answers position queries against a [Tree].
type Index struct {
	tokens []token.Token
	spans  interval.Intersect[int, *Node]
}

// NewIndex indexes every node of t by the byte range it spans.
func NewIndex(t *Tree) *Index {
	idx := &Index{tokens: slices.Collect(t.Tokens())}
	for _, n := range t.Nodes {
		idx.insert(n)
	}
	return idx
}

// insert adds n and then its descendants, so that deeper nodes are recorded
// after the nodes that contain them.
func (idx *Index) insert(n *Node) {
	first, ok1 := n.FirstToken()
	last, ok2 := n.LastToken()
	if ok1 && ok2 && last.End() > first.Pos.Offset {
		idx.spans.Insert(first.Pos.Offset, last.End()-1, n)
	}

	for _, s := range n.content {
		if s.kind == NodeSlot {
			idx.insert(s.node)
		}
	}
}

// NodeAt returns the innermost node whose first token starts at the given
// zero-based line and column. If there is none, the column before it is
// tried, so that a cursor placed just after a one-byte token still finds it.
//
// Returns nil if neither position starts a node.
func (idx *Index) NodeAt(line, column int) *Node {
	if n := idx.nodeStartingAt(line+1, column+1); n != nil {
		return n
	}
	if column > 0 {
		return idx.nodeStartingAt(line+1, column)
	}
	return nil
}

func (idx *Index) nodeStartingAt(line, column int) *Node {
	i, found := slices.BinarySearchFunc(idx.tokens, [2]int{line, column}, func(tok token.Token, pos [2]int) int {
		if c := cmp.Compare(tok.Pos.Line, pos[0]); c != 0 {
			return c
		}
		return cmp.Compare(tok.Pos.Column, pos[1])
	})
	if !found {
		return nil
	}

	offset := idx.tokens[i].Pos.Offset
	n, _ := idx.spans.Innermost(offset, func(n *Node) bool {
		first, _ := n.FirstToken()
		return first.Pos.Offset == offset
	})
	return n
}
