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
	"fmt"
	"sync"

	"github.com/bufbuild/layoutkit/parser"
	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/tree"
)

// Rule and node kind names.
const (
	Expression = "[expression]"
	Null       = "null"
	Bool       = "bool"
	Number     = "number"
	String     = "string"
	Array      = "array"
	Object     = "object"
)

// Grammar returns the JSON grammar. Its only entry rule is [Expression],
// which returns the node of whichever value it matched.
var Grammar = sync.OnceValue(func() *parser.Grammar {
	b := new(parser.Builder)
	b.Rule(Expression, func(r *parser.Run) (*tree.Node, error) {
		return r.ExpectOneOf(parser.Strict, Null, Bool, Number, String, Array, Object)
	}).Entry()

	b.Rule(Null, scalar(KindKeyword, "null"))
	b.Rule(Bool, scalar(KindKeyword, "true", "false"))
	b.Rule(Number, scalar(KindNumber))
	b.Rule(String, scalar(KindString))
	b.Rule(Array, array)
	b.Rule(Object, object)

	g, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("layoutkit/json: invalid grammar: %v", err))
	}
	return g
})

// scalar returns a rule that matches a single token into the "value" slot.
func scalar(kind token.Kind, values ...string) parser.Body {
	return func(r *parser.Run) (*tree.Node, error) {
		tok, err := r.Expect(parser.Lenient, kind, values...)
		if err != nil {
			return nil, err
		}
		r.Node().AddToken("value", tok)
		return nil, nil
	}
}

// array matches [a, b, ...]. Elements go in "item" slots.
func array(r *parser.Run) (*tree.Node, error) {
	n := r.Node()
	start, end := n.Declare("start", tree.TokenSlot), n.Declare("end", tree.TokenSlot)

	open, err := r.Expect(parser.Lenient, KindBrace, "[")
	if err != nil {
		return nil, err
	}
	start.SetToken(open)

	// A separator is always followed by another element.
	for done := r.Test(KindBrace, "]"); !done; {
		item, err := r.ExpectRule(parser.Strict, Expression)
		if err != nil {
			return nil, err
		}
		n.AddNode("item", item)

		if !r.Test(KindSymbol, ",") {
			done = true
			continue
		}
		comma, err := r.Expect(parser.Strict, KindSymbol, ",")
		if err != nil {
			return nil, err
		}
		n.AddToken("comma", comma)
	}

	closing, err := r.Expect(parser.Strict, KindBrace, "]")
	if err != nil {
		return nil, err
	}
	end.SetToken(closing)
	return n, nil
}

// object matches {"k": v, ...}. Keys go in "item" slots and values in
// "value" slots.
func object(r *parser.Run) (*tree.Node, error) {
	n := r.Node()
	start, end := n.Declare("start", tree.TokenSlot), n.Declare("end", tree.TokenSlot)

	open, err := r.Expect(parser.Lenient, KindBrace, "{")
	if err != nil {
		return nil, err
	}
	start.SetToken(open)

	for done := r.Test(KindBrace, "}"); !done; {
		key, err := r.Expect(parser.Strict, KindString)
		if err != nil {
			return nil, err
		}
		n.AddToken("item", key)

		colon, err := r.Expect(parser.Strict, KindSymbol, ":")
		if err != nil {
			return nil, err
		}
		n.AddToken("colon", colon)

		value, err := r.ExpectRule(parser.Strict, Expression)
		if err != nil {
			return nil, err
		}
		n.AddNode("value", value)

		if !r.Test(KindSymbol, ",") {
			done = true
			continue
		}
		comma, err := r.Expect(parser.Strict, KindSymbol, ",")
		if err != nil {
			return nil, err
		}
		n.AddToken("comma", comma)
	}

	closing, err := r.Expect(parser.Strict, KindBrace, "}")
	if err != nil {
		return nil, err
	}
	end.SetToken(closing)
	return n, nil
}
