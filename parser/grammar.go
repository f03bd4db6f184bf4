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

package parser

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/tree"
)

// Mode selects what an expectation does when it does not match.
type Mode int8

const (
	// Lenient expectations fail softly with [ErrNoMatch], so that the caller
	// may try something else.
	Lenient Mode = iota
	// Strict expectations fail with a [*ParseError], which aborts the parse.
	Strict
)

// String implements [fmt.Stringer].
func (m Mode) String() string {
	switch m {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Body is the body of a rule.
//
// It returns the node it built, which is usually [Run.Node]; returning nil
// with a nil error is the same as returning [Run.Node]. Returning [ErrNoMatch]
// (possibly wrapped) reports a soft failure; any other error aborts the parse.
type Body func(r *Run) (*tree.Node, error)

// Rule is a named rule under construction. Use the methods on Rule to
// configure it before calling [Builder.Build].
type Rule struct {
	name string
	body Body

	entry, lowPriority bool
	kind               string

	commentSlot  string
	commentKinds []token.Kind
}

// Name returns the name of this rule.
func (r *Rule) Name() string {
	return r.name
}

// Entry marks this rule as an entry rule. Entry rules are tried by the
// driver in the order they were registered.
func (r *Rule) Entry() *Rule {
	r.entry = true
	return r
}

// LowPriority marks the nodes built by this rule as comment-like material.
func (r *Rule) LowPriority() *Rule {
	r.lowPriority = true
	return r
}

// Kind sets the kind of the nodes this rule builds. It defaults to the rule's
// name.
func (r *Rule) Kind(kind string) *Rule {
	r.kind = kind
	return r
}

// Comments makes this rule consume tokens of the given kinds wherever it
// checks for a token, storing them in slots with the given name.
func (r *Rule) Comments(slot string, kinds ...token.Kind) *Rule {
	r.commentSlot = slot
	r.commentKinds = kinds
	return r
}

func (r *Rule) isComment(tok token.Token) bool {
	return slices.Contains(r.commentKinds, tok.Kind)
}

// Builder collects rules for a [Grammar].
//
// The zero value is ready to use.
type Builder struct {
	rules []*Rule
}

// Rule registers a new rule with the given name and body.
func (b *Builder) Rule(name string, body Body) *Rule {
	r := &Rule{name: name, body: body}
	b.rules = append(b.rules, r)
	return r
}

// Build validates the registered rules and freezes them into a [Grammar].
//
// Changes made to the builder or its rules after Build returns do not affect
// the returned grammar.
func (b *Builder) Build() (*Grammar, error) {
	g := &Grammar{rules: make(map[string]*Rule, len(b.rules))}

	var errs []error
	for _, r := range b.rules {
		switch {
		case r.name == "":
			errs = append(errs, errors.New("rule with empty name"))
			continue
		case r.body == nil:
			errs = append(errs, fmt.Errorf("rule %q has no body", r.name))
		case r.commentSlot != "" && len(r.commentKinds) == 0:
			errs = append(errs, fmt.Errorf("rule %q collects comments without comment kinds", r.name))
		}
		if _, ok := g.rules[r.name]; ok {
			errs = append(errs, fmt.Errorf("rule %q registered more than once", r.name))
			continue
		}

		frozen := *r
		frozen.commentKinds = slices.Clone(r.commentKinds)
		if frozen.kind == "" {
			frozen.kind = frozen.name
		}
		if len(frozen.commentKinds) > 0 && frozen.commentSlot == "" {
			frozen.commentSlot = "comment"
		}

		g.rules[r.name] = &frozen
		g.names = append(g.names, r.name)
		if frozen.entry {
			g.entries = append(g.entries, &frozen)
		}
	}
	if len(g.entries) == 0 {
		errs = append(errs, errors.New("grammar has no entry rules"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}

// Grammar is an immutable set of rules. It is safe to use one Grammar from
// many goroutines at once.
type Grammar struct {
	rules   map[string]*Rule
	names   []string
	entries []*Rule
}

// Rules returns the names of this grammar's rules, in registration order.
func (g *Grammar) Rules() []string {
	return slices.Clone(g.names)
}

// Entries returns the names of this grammar's entry rules, in the order the
// driver tries them.
func (g *Grammar) Entries() []string {
	names := make([]string, len(g.entries))
	for i, r := range g.entries {
		names[i] = r.name
	}
	return names
}

func (g *Grammar) rule(name string) *Rule {
	r, ok := g.rules[name]
	if !ok {
		panic(fmt.Sprintf("layoutkit/parser: unknown rule %q", name))
	}
	return r
}
