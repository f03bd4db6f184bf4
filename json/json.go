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

// Package json is a JSON grammar and layout policy built on the layoutkit
// engine, and the entry points an editor integration needs: formatting a
// document, and collapsing the value under a cursor onto one line.
//
// Formatting only moves tokens between lines and changes the spaces around
// them. It never changes token text.
package json

import (
	"github.com/bufbuild/layoutkit/parser"
	"github.com/bufbuild/layoutkit/report"
	"github.com/bufbuild/layoutkit/source"
	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/trace"
	"github.com/bufbuild/layoutkit/tree"
)

// Tokenize splits file into tokens. On failure, returns a [*lexer.Error].
func Tokenize(file *source.File) ([]token.Token, error) {
	return Lexer.Lex(file)
}

// Parse tokenizes and parses file. If tr is not nil, the parse is recorded
// into it.
func Parse(file *source.File, tr *trace.Trace) (*tree.Tree, error) {
	tokens, err := Tokenize(file)
	if err != nil {
		return nil, err
	}
	return parser.Parse(Grammar(), tokens, parser.Options{File: file, Trace: tr})
}

// Render prints t with the JSON layout policy.
func Render(t *tree.Tree, opts LayoutOptions) string {
	return Policy(opts).Render(t)
}

// Format parses file and prints it with the JSON layout policy.
func Format(file *source.File, opts LayoutOptions) (string, error) {
	t, err := Parse(file, nil)
	if err != nil {
		return "", err
	}
	return Render(t, opts), nil
}

// CollapseAt parses file, finds the value that starts at the given zero-based
// line and column, and prints the file with that value on a single line.
//
// Returns false if no value starts there, or just before there.
func CollapseAt(file *source.File, line, column int, opts LayoutOptions) (string, bool, error) {
	t, err := Parse(file, nil)
	if err != nil {
		return "", false, err
	}

	n := tree.NewIndex(t).NodeAt(line, column)
	if n == nil {
		return "", false, nil
	}
	return Render(tree.Collapse(t, n), opts), true, nil
}

// Check parses file, and records a diagnostic in r if that fails. Returns
// whether file is valid.
func Check(file *source.File, r *report.Report) bool {
	if _, err := Parse(file, nil); err != nil {
		r.Append(err)
		return false
	}
	return true
}
