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

// Package lexer provides a grammar-agnostic tokenizer driven by an ordered
// list of pluggable lexical rules.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/bufbuild/layoutkit/source"
	"github.com/bufbuild/layoutkit/token"
)

// Lexer is a configurable tokenizer. A Lexer is immutable once in use and may
// be shared between goroutines.
type Lexer struct {
	// Skip returns how many bytes of insignificant text start rest. It is
	// called repeatedly until it returns zero.
	//
	// If nil, runs of Unicode white space are skipped.
	Skip func(rest string) int

	// Rules are tried in order; the first one that accepts the text at the
	// cursor produces the next token.
	Rules []Rule

	// If positive, lexing fails once more than this many tokens have been
	// produced. This lets callers bound the work of later phases.
	MaxTokens int
}

// Lex runs lexical analysis on file.
//
// Token positions strictly increase. On failure, the returned error is an
// [*Error].
func (l *Lexer) Lex(file *source.File) ([]token.Token, error) {
	lex := &lexer{Lexer: l, file: file}
	if err := lex.loop(); err != nil {
		return nil, err
	}
	return lex.tokens, nil
}

// lexer is the per-invocation book-keeping for a [Lexer].
type lexer struct {
	*Lexer
	file *source.File

	cursor int
	tokens []token.Token
}

func (l *lexer) loop() error {
	mp := l.mustProgress()
	for {
		mp.check()
		l.skip()
		if l.done() {
			return nil
		}

		if l.MaxTokens > 0 && len(l.tokens) >= l.MaxTokens {
			return l.errorf("token limit of %d exceeded", l.MaxTokens)
		}

		matched, err := l.next()
		if err != nil {
			return err
		}
		if !matched {
			r, _ := utf8.DecodeRuneInString(l.rest())
			return l.errorf("unknown character %q", r)
		}
	}
}

// next tries every rule at the cursor. Returns false if none accepted.
func (l *lexer) next() (bool, error) {
	rest := l.rest()
	for _, rule := range l.Rules {
		if !rule.Match(rest) {
			continue
		}

		n, err := rule.Length(rest)
		if err != nil {
			return false, &Error{File: l.file, Offset: l.cursor, Reason: err.Error()}
		}
		if n <= 0 {
			continue
		}
		if n > len(rest) {
			panic(fmt.Sprintf("layoutkit/lexer: rule for %s consumed %d bytes past the end of input", rule.Kind, n-len(rest)))
		}

		l.push(rule.Kind, n)
		return true, nil
	}
	return false, nil
}

// push pushes a new token onto the list the lexer is building.
func (l *lexer) push(kind token.Kind, length int) {
	loc := l.file.Location(l.cursor)
	l.tokens = append(l.tokens, token.Token{
		Kind: kind,
		Text: l.rest()[:length],
		Pos: token.Position{
			Line:   loc.Line,
			Column: loc.Column,
			Offset: loc.Offset,
		},
	})
	l.cursor += length
}

func (l *lexer) skip() {
	skip := l.Skip
	if skip == nil {
		skip = SkipSpace
	}

	for !l.done() {
		n := skip(l.rest())
		if n <= 0 {
			return
		}
		l.cursor = min(l.cursor+n, len(l.file.Text()))
	}
}

// rest returns the remaining unlexed text.
func (l *lexer) rest() string {
	return l.file.Text()[l.cursor:]
}

// done returns whether or not we're done lexing.
func (l *lexer) done() bool {
	return l.rest() == ""
}

func (l *lexer) errorf(format string, args ...any) *Error {
	return &Error{File: l.file, Offset: l.cursor, Reason: fmt.Sprintf(format, args...)}
}

// SkipSpace skips a run of Unicode white space.
func SkipSpace(rest string) int {
	for i, r := range rest {
		if !unicode.IsSpace(r) {
			return i
		}
	}
	return len(rest)
}

// mustProgress returns a progress checker for this lexer.
func (l *lexer) mustProgress() mustProgress {
	return mustProgress{l, -1}
}

// mustProgress is a helper for ensuring that the lexer makes progress
// in each loop iteration. This is intended for turning infinite loops into
// panics.
type mustProgress struct {
	l    *lexer
	prev int
}

// check panics if the cursor has not moved since the last call.
func (mp *mustProgress) check() {
	if mp.prev == mp.l.cursor {
		panic(fmt.Sprintf("layoutkit/lexer: lexer failed to make progress at offset %d", mp.l.cursor))
	}
	mp.prev = mp.l.cursor
}
