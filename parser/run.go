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
	"strings"

	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/trace"
	"github.com/bufbuild/layoutkit/tree"
)

// Run is the state of a single rule invocation: a cursor into the token
// stream and the node being built.
//
// A Run is only valid for the duration of the rule body it was passed to.
type Run struct {
	parser *parser
	rule   *Rule
	node   *tree.Node
	index  int
	path   Path
}

// Check is a single token test for [Run.TestSeq].
type Check struct {
	Kind   token.Kind
	Values []string
}

// Node returns the node this invocation is building.
func (r *Run) Node() *tree.Node {
	return r.node
}

// Path returns the rule invocations leading to this one, including it.
func (r *Run) Path() Path {
	return r.path
}

// Index returns the index of the next token this invocation would consume.
func (r *Run) Index() int {
	return r.index
}

// Token returns the next token, skipping over comments. Returns false at the
// end of the input.
func (r *Run) Token() (token.Token, bool) {
	tok := r.parser.at(r.skip(r.index))
	if tok == nil {
		return token.Token{}, false
	}
	return *tok, true
}

// Test returns whether the next token has the given kind and, if any values
// are given, one of those values. It never consumes anything.
func (r *Run) Test(kind token.Kind, values ...string) bool {
	return r.test(r.skip(r.index), "test.....", kind, values)
}

// TestSeq is like [Run.Test], but tests several consecutive tokens.
func (r *Run) TestSeq(checks ...Check) bool {
	index := r.index
	for _, c := range checks {
		index = r.skip(index)
		if !r.test(index, "test.....", c.Kind, c.Values) {
			return false
		}
		index++
	}
	return true
}

// Expect consumes the next token if it has the given kind and, if any values
// are given, one of those values. Comments skipped to reach it are added to
// the node.
//
// On mismatch, returns [ErrNoMatch] in [Lenient] mode, and a hard error in
// [Strict] mode.
func (r *Run) Expect(mode Mode, kind token.Kind, values ...string) (token.Token, error) {
	index := r.skip(r.index)
	if !r.test(index, "check.....", kind, values) {
		return token.Token{}, r.mismatch(mode, index, describe(kind, values), "")
	}

	r.consumeComments(index)
	r.index = index + 1
	return r.parser.tokens[index], nil
}

// ExpectRule invokes the named rule at the next token and returns the node it
// built.
//
// On mismatch, returns [ErrNoMatch] in [Lenient] mode, and a hard error in
// [Strict] mode. Hard errors from inside the rule are returned as-is.
//
// Panics if the grammar has no such rule.
func (r *Run) ExpectRule(mode Mode, name string) (*tree.Node, error) {
	rule := r.parser.grammar.rule(name)
	index := r.skip(r.index)

	node, next, err := r.parser.invoke(rule, index, r.path)
	switch {
	case err == nil:
		r.consumeComments(index)
		r.index = next
		return node, nil
	case errors.Is(err, ErrNoMatch):
		return nil, r.mismatch(mode, index, name, "")
	default:
		return nil, err
	}
}

// ExpectOneOf tries each of the named rules in order, returning the node
// built by the first one that matches.
//
// On mismatch, returns [ErrNoMatch] in [Lenient] mode, and a hard error in
// [Strict] mode.
func (r *Run) ExpectOneOf(mode Mode, names ...string) (*tree.Node, error) {
	for _, name := range names {
		node, err := r.ExpectRule(Lenient, name)
		if !errors.Is(err, ErrNoMatch) {
			return node, err
		}
	}
	return nil, r.mismatch(mode, r.skip(r.index), "one of ["+strings.Join(names, ", ")+"]", "")
}

// Fail returns a hard error located at the next token.
func (r *Run) Fail(format string, args ...any) error {
	return r.mismatch(Strict, r.skip(r.index), "", fmt.Sprintf(format, args...))
}

// skip returns the index of the first non-comment token at or after index.
func (r *Run) skip(index int) int {
	for index < len(r.parser.tokens) && r.rule.isComment(r.parser.tokens[index]) {
		index++
	}
	return index
}

// consumeComments adds the comments between the cursor and end to the node.
func (r *Run) consumeComments(end int) {
	for i := r.index; i < end; i++ {
		tok := r.parser.tokens[i]
		r.parser.trace.Record(&tok, trace.Info, "comment ", string(tok.Kind), true)
		r.node.AddToken(r.rule.commentSlot, tok)
	}
}

// test checks the token at index, recording the check in the trace.
func (r *Run) test(index int, marker string, kind token.Kind, values []string) bool {
	tok := r.parser.at(index)
	low := r.rule.lowPriority
	r.parser.trace.Record(tok, trace.Info, marker, describe(kind, values), low)

	ok := tok != nil && tok.Is(kind, values...)
	if ok {
		r.parser.trace.Record(tok, trace.Success, "...ok", "", low)
	} else {
		r.parser.trace.Record(tok, trace.Failure, "...no", "", low)
	}
	return ok
}

// mismatch builds the error for a failed expectation at index. If message is
// empty, it is derived from expected.
func (r *Run) mismatch(mode Mode, index int, expected, message string) error {
	if mode == Lenient {
		return ErrNoMatch
	}

	if message == "" {
		message = "expected " + expected
	}
	tok := r.parser.at(index)
	if tok == nil {
		return &UnlocatedParseError{
			File:     r.parser.file,
			Offset:   r.parser.position(index).Offset,
			Message:  message,
			Expected: expected,
			Rule:     r.rule.name,
			Path:     r.path,
		}
	}

	return &ParseError{
		File:      r.parser.file,
		Token:     *tok,
		Message:   message,
		Expected:  expected,
		Rule:      r.rule.name,
		RuleStart: r.path.last().Pos,
		Path:      r.path,
	}
}
