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

// Package tree provides a generic syntax tree whose nodes hold ordered,
// named, single-assignment slots.
package tree

import (
	"fmt"
	"iter"

	"github.com/bufbuild/layoutkit/token"
)

// SlotKind distinguishes the two kinds of [Slot].
type SlotKind int8

const (
	TokenSlot SlotKind = 1 + iota // Holds a leaf token.
	NodeSlot                      // Holds a child node.
)

// String implements [fmt.Stringer].
func (k SlotKind) String() string {
	switch k {
	case TokenSlot:
		return "token"
	case NodeSlot:
		return "node"
	default:
		return fmt.Sprintf("SlotKind(%d)", int(k))
	}
}

// Slot is a named attachment point on a [Node]. It holds at most one token
// or one child node, depending on its kind, and may be set exactly once.
//
// A slot joins its owner's content at the moment it is set, so content order
// is the order in which slots were filled.
type Slot struct {
	owner *Node
	name  string
	kind  SlotKind

	tok  token.Token
	node *Node
	set  bool
}

// Name returns the slot's name. Names need not be unique within a node.
func (s *Slot) Name() string { return s.name }

// Kind returns the slot's kind.
func (s *Slot) Kind() SlotKind { return s.kind }

// IsSet returns whether the slot has been filled.
func (s *Slot) IsSet() bool { return s != nil && s.set }

// Token returns the token held by a token slot.
func (s *Slot) Token() token.Token { return s.tok }

// Node returns the child held by a node slot.
func (s *Slot) Node() *Node { return s.node }

// SetToken fills a token slot.
//
// Panics if the slot is already set or is a node slot; both are grammar
// defects rather than parse errors.
func (s *Slot) SetToken(tok token.Token) {
	s.mustBeEmpty(TokenSlot)
	s.tok = tok
	s.fill()
}

// SetNode fills a node slot. Panics under the same conditions as
// [Slot.SetToken].
func (s *Slot) SetNode(child *Node) {
	if child == nil {
		panic(fmt.Sprintf("layoutkit/tree: nil node assigned to slot %q", s.name))
	}
	s.mustBeEmpty(NodeSlot)
	s.node = child
	s.fill()
}

// FirstToken returns the first token under this slot.
func (s *Slot) FirstToken() (token.Token, bool) {
	if !s.IsSet() {
		return token.Token{}, false
	}
	switch s.kind {
	case TokenSlot:
		return s.tok, true
	case NodeSlot:
		return s.node.FirstToken()
	}
	return token.Token{}, false
}

// LastToken returns the last token under this slot.
func (s *Slot) LastToken() (token.Token, bool) {
	if !s.IsSet() {
		return token.Token{}, false
	}
	switch s.kind {
	case TokenSlot:
		return s.tok, true
	case NodeSlot:
		return s.node.LastToken()
	}
	return token.Token{}, false
}

func (s *Slot) mustBeEmpty(kind SlotKind) {
	if s.kind != kind {
		panic(fmt.Sprintf("layoutkit/tree: assigned a %s to %s slot %q", kind, s.kind, s.name))
	}
	if s.set {
		panic(fmt.Sprintf("layoutkit/tree: slot %q assigned more than once", s.name))
	}
}

func (s *Slot) fill() {
	s.set = true
	s.owner.content = append(s.owner.content, s)
}

// Node is an interior syntax tree item.
type Node struct {
	// The kind of node; by convention the name of the rule that built it.
	Kind string

	// Marks comment-like material. Only consulted by diagnostics.
	LowPriority bool

	content []*Slot
}

// New returns an empty node of the given kind.
func New(kind string) *Node {
	return &Node{Kind: kind}
}

// Content returns the filled slots of this node, in the order they were set.
//
// The returned slice must not be modified.
func (n *Node) Content() []*Slot {
	return n.content
}

// Declare creates an empty slot owned by this node. It joins the node's
// content once it is set.
func (n *Node) Declare(name string, kind SlotKind) *Slot {
	return &Slot{owner: n, name: name, kind: kind}
}

// AddToken appends a new token slot holding tok.
func (n *Node) AddToken(name string, tok token.Token) *Slot {
	s := n.Declare(name, TokenSlot)
	s.SetToken(tok)
	return s
}

// AddNode appends a new node slot holding child.
func (n *Node) AddNode(name string, child *Node) *Slot {
	s := n.Declare(name, NodeSlot)
	s.SetNode(child)
	return s
}

// FirstToken returns the first token of this node, recursing into the first
// slot that has one.
func (n *Node) FirstToken() (token.Token, bool) {
	if n == nil {
		return token.Token{}, false
	}
	for _, s := range n.content {
		if tok, ok := s.FirstToken(); ok {
			return tok, true
		}
	}
	return token.Token{}, false
}

// LastToken returns the last token of this node, recursing into the last
// slot that has one.
func (n *Node) LastToken() (token.Token, bool) {
	if n == nil {
		return token.Token{}, false
	}
	for i := len(n.content) - 1; i >= 0; i-- {
		if tok, ok := n.content[i].LastToken(); ok {
			return tok, true
		}
	}
	return token.Token{}, false
}

// Index returns the position of s in this node's content, or -1.
func (n *Node) Index(s *Slot) int {
	for i, c := range n.content {
		if c == s {
			return i
		}
	}
	return -1
}

// First returns the first slot with the given name, or nil.
func (n *Node) First(name string) *Slot {
	for _, s := range n.content {
		if s.name == name {
			return s
		}
	}
	return nil
}

// Named returns an iterator over the slots with the given name.
func (n *Node) Named(name string) iter.Seq[*Slot] {
	return func(yield func(*Slot) bool) {
		for _, s := range n.content {
			if s.name == name && !yield(s) {
				return
			}
		}
	}
}

// NextByName returns the first slot after from with the given name, or nil.
func (n *Node) NextByName(from *Slot, name string) *Slot {
	for _, s := range n.content[n.Index(from)+1:] {
		if s.name == name {
			return s
		}
	}
	return nil
}

// Between returns an iterator over the slots strictly between from and to.
// If inclusive is set, from and to are yielded too.
//
// Yields nothing if either slot is not part of this node.
func (n *Node) Between(from, to *Slot, inclusive bool) iter.Seq[*Slot] {
	return func(yield func(*Slot) bool) {
		i, j := n.Index(from), n.Index(to)
		if i < 0 || j < 0 {
			return
		}
		if inclusive {
			j++
		} else {
			i++
		}
		for _, s := range n.content[i:max(i, j)] {
			if !yield(s) {
				return
			}
		}
	}
}

// After returns an iterator over the slots after from. If inclusive is set,
// from is yielded too.
func (n *Node) After(from *Slot, inclusive bool) iter.Seq[*Slot] {
	return func(yield func(*Slot) bool) {
		i := n.Index(from)
		if i < 0 {
			return
		}
		if !inclusive {
			i++
		}
		for _, s := range n.content[i:] {
			if !yield(s) {
				return
			}
		}
	}
}

// Tokens returns an iterator over every token under this node, in pre-order.
func (n *Node) Tokens() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		n.tokens(yield)
	}
}

func (n *Node) tokens(yield func(token.Token) bool) bool {
	for _, s := range n.content {
		switch s.kind {
		case TokenSlot:
			if !yield(s.tok) {
				return false
			}
		case NodeSlot:
			if !s.node.tokens(yield) {
				return false
			}
		}
	}
	return true
}
