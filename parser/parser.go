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

// Package parser is a recursive-descent rule engine.
//
// A grammar is a set of named rules built with a [Builder]. Each rule body
// receives a [Run], which it uses to test and consume tokens and to invoke
// other rules, assigning what it consumes into named slots on its node.
// Failures are either soft ([ErrNoMatch]), in which case the engine rolls
// back to where the rule started, or hard, in which case the parse ends.
package parser

import (
	"errors"
	"fmt"

	"github.com/bufbuild/layoutkit/source"
	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/trace"
	"github.com/bufbuild/layoutkit/tree"
)

// Options configures a call to [Parse].
type Options struct {
	// The file the tokens came from. Used to attach source snippets to
	// errors; may be nil.
	File *source.File

	// If not nil, every rule attempt and token check is recorded here.
	Trace *trace.Trace

	// If not nil, filled in with statistics about the parse.
	Stats *Stats
}

// Stats are counters collected during a parse.
type Stats struct {
	// Number of rule invocations, including ones answered by the memo.
	Steps int
	// Number of rule invocations answered by the failure memo.
	CacheHits int
}

// Parse parses tokens with g.
//
// The entry rules are applied repeatedly starting at the first token until
// every token is consumed; each match becomes a top-level node of the
// returned tree. If no entry rule matches somewhere, returns an
// [*UnhandledTokenError].
func Parse(g *Grammar, tokens []token.Token, opts Options) (*tree.Tree, error) {
	p := &parser{
		grammar: g,
		file:    opts.File,
		tokens:  tokens,
		trace:   opts.Trace,
		stats:   opts.Stats,
		failed:  make(map[memoKey]struct{}),
	}
	if p.stats == nil {
		p.stats = new(Stats)
	}

	t := new(tree.Tree)
	for index := 0; index < len(tokens); {
		node, next, err := p.entry(index)
		if err != nil {
			return nil, err
		}
		t.Nodes = append(t.Nodes, node)
		index = next
	}
	return t, nil
}

type parser struct {
	grammar *Grammar
	file    *source.File
	tokens  []token.Token
	trace   *trace.Trace
	stats   *Stats

	// Rule invocations already known to fail softly.
	failed map[memoKey]struct{}
}

type memoKey struct {
	rule  string
	index int
}

// entry applies the entry rules at index, returning the first match.
func (p *parser) entry(index int) (*tree.Node, int, error) {
	for _, r := range p.grammar.entries {
		node, next, err := p.invoke(r, index, nil)
		switch {
		case err == nil:
			if next <= index {
				panic(fmt.Sprintf("layoutkit/parser: entry rule %q matched without consuming input at %s", r.name, p.position(index)))
			}
			return node, next, nil
		case errors.Is(err, ErrNoMatch):
			continue
		default:
			return nil, index, err
		}
	}
	return nil, index, &UnhandledTokenError{File: p.file, Token: p.tokens[index]}
}

// invoke runs r at index. On success, returns the built node and the index
// just past what it consumed.
func (p *parser) invoke(r *Rule, index int, path Path) (*tree.Node, int, error) {
	p.stats.Steps++
	at := p.at(index)

	key := memoKey{r.name, index}
	if _, ok := p.failed[key]; ok {
		p.stats.CacheHits++
		p.trace.Record(at, trace.Failure, "Cached failure ", r.name, r.lowPriority)
		return nil, index, ErrNoMatch
	}

	run := &Run{
		parser: p,
		rule:   r,
		node:   &tree.Node{Kind: r.kind, LowPriority: r.lowPriority},
		index:  index,
		path:   path.with(r.name, p.position(index)),
	}

	p.trace.Record(at, trace.Info, "Start rule ", r.name, r.lowPriority)
	p.trace.Enter()
	node, err := r.body(run)
	p.trace.Leave()

	switch {
	case err == nil:
		if node == nil {
			node = run.node
		}
		p.trace.Record(at, trace.Success, "Success rule ", r.name, r.lowPriority)
		return node, run.index, nil
	case errors.Is(err, ErrNoMatch):
		p.failed[key] = struct{}{}
		p.trace.Record(at, trace.Failure, "Failed rule ", r.name, r.lowPriority)
		return nil, index, ErrNoMatch
	default:
		p.trace.Record(at, trace.Failure, "Failed rule ", r.name, r.lowPriority)
		return nil, index, err
	}
}

// at returns the token at index, or nil past the end.
func (p *parser) at(index int) *token.Token {
	if index < len(p.tokens) {
		return &p.tokens[index]
	}
	return nil
}

// position returns the position of the token at index. Past the end, it is
// the position just after the last token.
func (p *parser) position(index int) token.Position {
	if index < len(p.tokens) {
		return p.tokens[index].Pos
	}
	if len(p.tokens) == 0 {
		return token.Position{Line: 1, Column: 1}
	}
	last := p.tokens[len(p.tokens)-1]
	return token.Position{
		Line:   last.Pos.Line,
		Column: last.Pos.Column + len(last.Text),
		Offset: last.End(),
	}
}
