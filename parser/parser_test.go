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

package parser_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/layoutkit/lexer"
	"github.com/bufbuild/layoutkit/parser"
	"github.com/bufbuild/layoutkit/report"
	"github.com/bufbuild/layoutkit/source"
	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/trace"
	"github.com/bufbuild/layoutkit/tree"
)

// A tiny call-expression language: f(1, g(2), h()).
var callLexer = &lexer.Lexer{
	Rules: []lexer.Rule{
		lexer.Pattern("COMMENT", regexp.MustCompile(`^#`), regexp.MustCompile(`^#[^\n]*$`)),
		lexer.Pattern("WORD", regexp.MustCompile(`^[a-z]`), regexp.MustCompile(`^[a-z]+$`)),
		lexer.Pattern("NUM", regexp.MustCompile(`^[0-9]`), regexp.MustCompile(`^[0-9]+$`)),
		lexer.Prefix("PUNCT", "(", ")", ",", ":"),
	},
}

func callGrammar(t *testing.T) *parser.Grammar {
	t.Helper()

	b := new(parser.Builder)
	b.Rule("call", func(r *parser.Run) (*tree.Node, error) {
		n := r.Node()
		name, err := r.Expect(parser.Lenient, "WORD")
		if err != nil {
			return nil, err
		}
		n.AddToken("name", name)

		open, err := r.Expect(parser.Strict, "PUNCT", "(")
		if err != nil {
			return nil, err
		}
		n.AddToken("open", open)

		for !r.Test("PUNCT", ")") {
			arg, err := r.ExpectRule(parser.Strict, "arg")
			if err != nil {
				return nil, err
			}
			n.AddNode("arg", arg)

			if r.Test("PUNCT", ")") {
				break
			}
			comma, err := r.Expect(parser.Strict, "PUNCT", ",")
			if err != nil {
				return nil, err
			}
			n.AddToken("comma", comma)
		}

		closing, err := r.Expect(parser.Strict, "PUNCT", ")")
		if err != nil {
			return nil, err
		}
		n.AddToken("close", closing)
		return n, nil
	}).Entry().Comments("comment", "COMMENT")

	b.Rule("arg", func(r *parser.Run) (*tree.Node, error) {
		return r.ExpectOneOf(parser.Strict, "tagged", "call", "num")
	})

	// Never matches in these tests, but makes "call" fail twice at the same
	// index.
	b.Rule("tagged", func(r *parser.Run) (*tree.Node, error) {
		if _, err := r.ExpectRule(parser.Lenient, "call"); err != nil {
			return nil, err
		}
		_, err := r.Expect(parser.Lenient, "PUNCT", ":")
		return nil, err
	})

	b.Rule("num", func(r *parser.Run) (*tree.Node, error) {
		tok, err := r.Expect(parser.Lenient, "NUM")
		if err != nil {
			return nil, err
		}
		r.Node().AddToken("value", tok)
		return nil, nil
	}).Kind("number")

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func parse(t *testing.T, text string, opts parser.Options) (*tree.Tree, error) {
	t.Helper()

	file := source.NewFile("test", text)
	tokens, err := callLexer.Lex(file)
	require.NoError(t, err)

	opts.File = file
	return parser.Parse(callGrammar(t), tokens, opts)
}

func texts(t *tree.Tree) string {
	var out []string
	for tok := range t.Tokens() {
		out = append(out, tok.Text)
	}
	return strings.Join(out, " ")
}

func TestParse(t *testing.T) {
	t.Parallel()

	tr, err := parse(t, "f(1, g(2), h())\nk()", parser.Options{})
	require.NoError(t, err)
	require.Len(t, tr.Nodes, 2)

	assert.Equal(t, "f ( 1 , g ( 2 ) , h ( ) ) k ( )", texts(tr))

	f := tr.Nodes[0]
	assert.Equal(t, "call", f.Kind)
	var kinds []string
	for s := range f.Named("arg") {
		kinds = append(kinds, s.Node().Kind)
	}
	assert.Equal(t, []string{"number", "call", "call"}, kinds)
	assert.Equal(t, 2, countNamed(f, "comma"))

	// The expression rule hands back its child rather than its own node.
	first := f.First("arg").Node()
	assert.Equal(t, "1", first.First("value").Token().Text)
}

func countNamed(n *tree.Node, name string) int {
	var count int
	for range n.Named(name) {
		count++
	}
	return count
}

func TestComments(t *testing.T) {
	t.Parallel()

	tr, err := parse(t, "f(# one\n1, # two\n2)", parser.Options{})
	require.NoError(t, err)
	require.Len(t, tr.Nodes, 1)

	var names []string
	for _, s := range tr.Nodes[0].Content() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"name", "open", "comment", "arg", "comma", "comment", "arg", "close"}, names)
	assert.Equal(t, "f ( # one 1 , # two 2 )", texts(tr))
}

func TestUnhandledToken(t *testing.T) {
	t.Parallel()

	_, err := parse(t, "f() )", parser.Options{})
	var unhandled *parser.UnhandledTokenError
	require.ErrorAs(t, err, &unhandled)
	assert.Equal(t, ")", unhandled.Token.Text)
	assert.Equal(t, 4, unhandled.Token.Pos.Offset)
	assert.Equal(t, `1:5: unhandled token PUNCT ")"`, err.Error())
}

func TestStrictFailure(t *testing.T) {
	t.Parallel()

	_, err := parse(t, "f(1 2)", parser.Options{})
	var parseErr *parser.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, `expected PUNCT ","`, parseErr.Message)
	assert.Equal(t, `PUNCT ","`, parseErr.Expected)
	assert.Equal(t, "2", parseErr.Token.Text)
	assert.Equal(t, "call", parseErr.Rule)
	assert.Equal(t, 1, parseErr.RuleStart.Column)
	assert.Equal(t, "[call 1 1]", parseErr.Path.String())

	r := new(report.Report)
	r.Append(err)
	assert.Equal(t, "error: test:1:5: expected PUNCT \",\"\n", r.String())
}

func TestUnlocatedFailure(t *testing.T) {
	t.Parallel()

	_, err := parse(t, "f(1,", parser.Options{})
	var unlocated *parser.UnlocatedParseError
	require.ErrorAs(t, err, &unlocated)
	assert.Equal(t, 4, unlocated.Offset)
	assert.Equal(t, "arg", unlocated.Rule)
	assert.Equal(t, "expected one of [tagged, call, num]", unlocated.Message)
	assert.Equal(t, "one of [tagged, call, num]", unlocated.Expected)
	assert.Equal(t, "[call 1 1][arg 1 5]", unlocated.Path.String())
}

func TestFail(t *testing.T) {
	t.Parallel()

	b := new(parser.Builder)
	b.Rule("word", func(r *parser.Run) (*tree.Node, error) {
		if r.Test("WORD", "if") {
			return nil, r.Fail("%q is reserved", "if")
		}
		tok, err := r.Expect(parser.Lenient, "WORD")
		if err != nil {
			return nil, err
		}
		r.Node().AddToken("value", tok)
		return nil, nil
	}).Entry()
	b.Rule("paren", func(r *parser.Run) (*tree.Node, error) {
		if _, err := r.Expect(parser.Lenient, "PUNCT", "("); err != nil {
			return nil, err
		}
		_, err := r.ExpectRule(parser.Strict, "word")
		return nil, err
	}).Entry()
	g, err := b.Build()
	require.NoError(t, err)

	file := source.NewFile("test", "a if")
	tokens, err := callLexer.Lex(file)
	require.NoError(t, err)
	_, err = parser.Parse(g, tokens, parser.Options{File: file})

	var parseErr *parser.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, `"if" is reserved`, parseErr.Message)
	assert.Empty(t, parseErr.Expected)
	assert.Equal(t, "word", parseErr.Rule)

	file = source.NewFile("test", "(:")
	tokens, err = callLexer.Lex(file)
	require.NoError(t, err)
	_, err = parser.Parse(g, tokens, parser.Options{File: file})

	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "expected word", parseErr.Message)
	assert.Equal(t, "word", parseErr.Expected)
	assert.Equal(t, ":", parseErr.Token.Text)
}

func TestMemo(t *testing.T) {
	t.Parallel()

	var stats parser.Stats
	_, err := parse(t, "f(1)", parser.Options{Stats: &stats})
	require.NoError(t, err)

	// call@0, arg@2, tagged@2, call@2 (fails), call@2 (memo), num@2.
	assert.Equal(t, 6, stats.Steps)
	assert.Equal(t, 1, stats.CacheHits)
}

func TestTrace(t *testing.T) {
	t.Parallel()

	tr := new(trace.Trace)
	_, err := parse(t, "f()", parser.Options{Trace: tr})
	require.NoError(t, err)

	assert.Equal(t, ""+
		`[info] Start rule call @ WORD "f" 1:1`+"\n"+
		`  [info] check.....WORD @ WORD "f" 1:1`+"\n"+
		`  [ok] ...ok @ WORD "f" 1:1`+"\n"+
		`  [info] check.....PUNCT "(" @ PUNCT "(" 1:2`+"\n"+
		`  [ok] ...ok @ PUNCT "(" 1:2`+"\n"+
		`  [info] test.....PUNCT ")" @ PUNCT ")" 1:3`+"\n"+
		`  [ok] ...ok @ PUNCT ")" 1:3`+"\n"+
		`  [info] check.....PUNCT ")" @ PUNCT ")" 1:3`+"\n"+
		`  [ok] ...ok @ PUNCT ")" 1:3`+"\n"+
		`[ok] Success rule call @ WORD "f" 1:1`+"\n",
		tr.String(),
	)
}

func TestTestSeq(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test", "a # x\n( b")
	tokens, err := callLexer.Lex(file)
	require.NoError(t, err)

	var seen []bool
	b := new(parser.Builder)
	b.Rule("probe", func(r *parser.Run) (*tree.Node, error) {
		seen = append(seen,
			r.TestSeq(parser.Check{Kind: "WORD"}, parser.Check{Kind: "PUNCT", Values: []string{"("}}),
			r.TestSeq(parser.Check{Kind: "WORD"}, parser.Check{Kind: "WORD"}),
		)
		tok, ok := r.Token()
		assert.True(t, ok)
		assert.Equal(t, "a", tok.Text)
		assert.Equal(t, 0, r.Index())

		for {
			next, ok := r.Token()
			if !ok {
				break
			}
			tok, err := r.Expect(parser.Lenient, next.Kind)
			if err != nil {
				return nil, err
			}
			r.Node().AddToken("any", tok)
		}
		return nil, nil
	}).Entry().Comments("", "COMMENT")
	g, err := b.Build()
	require.NoError(t, err)

	tr, err := parser.Parse(g, tokens, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, seen)
	assert.Equal(t, "comment", tr.Nodes[0].Content()[1].Name())
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	body := func(*parser.Run) (*tree.Node, error) { return nil, parser.ErrNoMatch }

	b := new(parser.Builder)
	b.Rule("a", body)
	_, err := b.Build()
	require.ErrorContains(t, err, "no entry rules")

	b.Rule("a", body).Entry()
	b.Rule("b", body).Comments("c")
	b.Rule("c", nil)
	_, err = b.Build()
	require.ErrorContains(t, err, `rule "a" registered more than once`)
	require.ErrorContains(t, err, `rule "b" collects comments without comment kinds`)
	require.ErrorContains(t, err, `rule "c" has no body`)
}

func TestEmptyEntryPanics(t *testing.T) {
	t.Parallel()

	b := new(parser.Builder)
	b.Rule("empty", func(*parser.Run) (*tree.Node, error) { return nil, nil }).Entry()
	g, err := b.Build()
	require.NoError(t, err)

	tokens := []token.Token{{Kind: "WORD", Text: "x", Pos: token.Position{Line: 1, Column: 1}}}
	assert.Panics(t, func() { _, _ = parser.Parse(g, tokens, parser.Options{}) })
}

func TestSlotFaultPanics(t *testing.T) {
	t.Parallel()

	b := new(parser.Builder)
	b.Rule("twice", func(r *parser.Run) (*tree.Node, error) {
		tok, err := r.Expect(parser.Strict, "WORD")
		if err != nil {
			return nil, err
		}
		slot := r.Node().Declare("name", tree.TokenSlot)
		slot.SetToken(tok)
		slot.SetToken(tok)
		return nil, nil
	}).Entry()
	g, err := b.Build()
	require.NoError(t, err)

	tokens := []token.Token{{Kind: "WORD", Text: "x", Pos: token.Position{Line: 1, Column: 1}}}
	assert.PanicsWithValue(t, `layoutkit/tree: slot "name" assigned more than once`, func() {
		_, _ = parser.Parse(g, tokens, parser.Options{})
	})
}
