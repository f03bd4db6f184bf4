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

package tree_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/trace"
	"github.com/bufbuild/layoutkit/tree"
)

func tok(kind token.Kind, text string, line, column, offset int) token.Token {
	return token.Token{Kind: kind, Text: text, Pos: token.Position{Line: line, Column: column, Offset: offset}}
}

func scalar(kind string, t token.Token) *tree.Node {
	n := tree.New(kind)
	n.AddToken("value", t)
	return n
}

// sample builds the tree for
//
//	{"a": [1,
//	 2], "b": 3}
func sample() (obj, arr *tree.Node) {
	arr = tree.New("array")
	arr.AddToken("start", tok("BRACE", "[", 1, 7, 6))
	arr.AddNode("item", scalar("number", tok("NUMBER", "1", 1, 8, 7)))
	arr.AddToken("comma", tok("SYMBOL", ",", 1, 9, 8))
	arr.AddNode("item", scalar("number", tok("NUMBER", "2", 2, 2, 11)))
	arr.AddToken("end", tok("BRACE", "]", 2, 3, 12))

	obj = tree.New("object")
	obj.AddToken("start", tok("BRACE", "{", 1, 1, 0))
	obj.AddToken("item", tok("STRING", `"a"`, 1, 2, 1))
	obj.AddToken("colon", tok("SYMBOL", ":", 1, 5, 4))
	obj.AddNode("value", arr)
	obj.AddToken("comma", tok("SYMBOL", ",", 2, 4, 13))
	obj.AddToken("item", tok("STRING", `"b"`, 2, 6, 15))
	obj.AddToken("colon", tok("SYMBOL", ":", 2, 9, 18))
	obj.AddNode("value", scalar("number", tok("NUMBER", "3", 2, 11, 20)))
	obj.AddToken("end", tok("BRACE", "}", 2, 12, 21))
	return obj, arr
}

func names(slots []*tree.Slot) []string {
	var out []string
	for _, s := range slots {
		out = append(out, s.Name())
	}
	return out
}

func TestFirstLast(t *testing.T) {
	t.Parallel()

	obj, arr := sample()
	first, ok := obj.FirstToken()
	require.True(t, ok)
	assert.Equal(t, "{", first.Text)
	last, ok := obj.LastToken()
	require.True(t, ok)
	assert.Equal(t, "}", last.Text)

	first, _ = arr.FirstToken()
	last, _ = arr.LastToken()
	assert.Equal(t, "[", first.Text)
	assert.Equal(t, "]", last.Text)

	_, ok = tree.New("empty").FirstToken()
	assert.False(t, ok)

	// Empty children are skipped.
	wrapper := tree.New("wrapper")
	wrapper.AddNode("pad", tree.New("empty"))
	wrapper.AddNode("inner", arr)
	first, ok = wrapper.FirstToken()
	require.True(t, ok)
	assert.Equal(t, "[", first.Text)
}

func TestSpanContiguity(t *testing.T) {
	t.Parallel()

	obj, _ := sample()
	all := slices.Collect((&tree.Tree{Nodes: []*tree.Node{obj}}).Tokens())
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Pos.Offset, all[i].Pos.Offset)
	}

	var check func(n *tree.Node)
	check = func(n *tree.Node) {
		first, _ := n.FirstToken()
		last, _ := n.LastToken()
		i := slices.Index(all, first)
		j := slices.Index(all, last)
		require.GreaterOrEqual(t, i, 0)
		assert.Equal(t, all[i:j+1], slices.Collect(n.Tokens()), "node %s", n.Kind)

		for _, s := range n.Content() {
			if s.Kind() == tree.NodeSlot {
				check(s.Node())
			}
		}
	}
	check(obj)
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	obj, arr := sample()
	start, end := arr.First("start"), arr.First("end")
	assert.Equal(t, []string{"item", "comma", "item"}, names(slices.Collect(arr.Between(start, end, false))))
	assert.Equal(t, []string{"start", "item", "comma", "item", "end"}, names(slices.Collect(arr.Between(start, end, true))))
	assert.Empty(t, slices.Collect(arr.Between(end, start, false)))
	assert.Empty(t, slices.Collect(arr.Between(obj.First("start"), end, false)))

	comma := obj.First("comma")
	assert.Equal(t, []string{"item", "colon", "value", "end"}, names(slices.Collect(obj.After(comma, false))))
	assert.Equal(t, []string{"comma", "item", "colon", "value", "end"}, names(slices.Collect(obj.After(comma, true))))

	next := obj.NextByName(obj.First("item"), "item")
	require.NotNil(t, next)
	assert.Equal(t, `"b"`, next.Token().Text)
	assert.Nil(t, obj.NextByName(next, "item"))

	assert.Len(t, slices.Collect(obj.Named("value")), 2)
	assert.Equal(t, 3, obj.Index(obj.First("value")))
	assert.Equal(t, -1, obj.Index(start))
}

func TestSlotAssignment(t *testing.T) {
	t.Parallel()

	n := tree.New("test")
	one := tok("NUMBER", "1", 1, 1, 0)

	declared := n.Declare("end", tree.TokenSlot)
	assert.False(t, declared.IsSet())
	assert.Empty(t, n.Content())
	declared.SetToken(one)
	assert.True(t, declared.IsSet())
	assert.Equal(t, []*tree.Slot{declared}, n.Content())

	assert.PanicsWithValue(t, `layoutkit/tree: slot "end" assigned more than once`, func() {
		declared.SetToken(one)
	})

	child := n.AddNode("child", tree.New("inner"))
	assert.PanicsWithValue(t, `layoutkit/tree: slot "child" assigned more than once`, func() {
		child.SetNode(tree.New("other"))
	})

	assert.PanicsWithValue(t, `layoutkit/tree: assigned a token to node slot "x"`, func() {
		n.Declare("x", tree.NodeSlot).SetToken(one)
	})
	assert.Panics(t, func() { n.Declare("y", tree.NodeSlot).SetNode(nil) })
	assert.Len(t, n.Content(), 2)
}

func TestString(t *testing.T) {
	t.Parallel()

	arr := tree.New("array")
	arr.AddToken("start", tok("BRACE", "[", 1, 1, 0))
	arr.AddNode("item", scalar("number", tok("NUMBER", "1", 1, 2, 1)))
	arr.AddToken("end", tok("BRACE", "]", 1, 3, 2))

	assert.Equal(t,
		" - [array]\n"+
			"   ..start: BRACE \"[\" 1:1\n"+
			"   ..item :\n"+
			"     - [number]\n"+
			"       ..value: NUMBER \"1\" 1:2\n"+
			"   ..end  : BRACE \"]\" 1:3\n",
		(&tree.Tree{Nodes: []*tree.Node{arr}}).String(),
	)
}

func TestReport(t *testing.T) {
	t.Parallel()

	arr := tree.New("array")
	arr.AddToken("start", tok("BRACE", "[", 1, 1, 0))
	inner := scalar("number", tok("NUMBER", "1", 1, 2, 1))
	inner.LowPriority = true
	arr.AddNode("item", inner)
	arr.AddToken("end", tok("BRACE", "]", 1, 3, 2))

	tr := new(trace.Trace)
	(&tree.Tree{Nodes: []*tree.Node{arr}}).Report(tr)

	events := tr.Events()
	kinds := make([]trace.Kind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []trace.Kind{
		trace.Entry, trace.Enter,
		trace.Entry,
		trace.Entry, trace.Enter, trace.Entry, trace.Leave,
		trace.Entry,
		trace.Leave,
	}, kinds)

	assert.Equal(t, "array", events[0].Message)
	assert.Equal(t, "<start>", events[2].Message)
	assert.Equal(t, "item", events[3].Marker)
	assert.Equal(t, "number", events[3].Message)
	assert.True(t, events[3].LowPriority)
	assert.True(t, events[5].LowPriority)
	assert.False(t, events[7].LowPriority)
}

func TestCollapse(t *testing.T) {
	t.Parallel()

	obj, arr := sample()
	before := &tree.Tree{Nodes: []*tree.Node{obj}}
	after := tree.Collapse(before, arr)

	lines := func(t *tree.Tree) []int {
		var out []int
		for tok := range t.Tokens() {
			out = append(out, tok.Pos.Line)
		}
		return out
	}

	// Tokens: { "a" : [ 1 , 2 ] , "b" : 3 }
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2}, lines(before))
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, lines(after))

	assert.Same(t, before, tree.Collapse(before, tree.New("empty")))
}

func TestNodeAt(t *testing.T) {
	t.Parallel()

	obj, arr := sample()
	idx := tree.NewIndex(&tree.Tree{Nodes: []*tree.Node{obj}})

	assert.Same(t, obj, idx.NodeAt(0, 0))
	assert.Same(t, arr, idx.NodeAt(0, 6))
	assert.Same(t, arr.Content()[1].Node(), idx.NodeAt(0, 7))

	// Just after a token: falls back one column.
	assert.Same(t, arr.Content()[1].Node(), idx.NodeAt(0, 8))
	assert.Same(t, obj, idx.NodeAt(0, 1))

	assert.Same(t, arr.Content()[3].Node(), idx.NodeAt(1, 1))
	assert.Nil(t, idx.NodeAt(1, 0))
	assert.Nil(t, idx.NodeAt(5, 0))
}
