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

package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/layoutkit/token"
	"github.com/bufbuild/layoutkit/trace"
)

func TestTrace(t *testing.T) {
	t.Parallel()

	tok := token.Token{Kind: "BRACE", Text: "[", Pos: token.Position{Line: 1, Column: 1}}

	tr := new(trace.Trace)
	tr.Record(&tok, trace.Info, "Start rule ", "array", false)
	tr.Enter()
	tr.Record(nil, trace.Failure, "check...no", "BRACE ]", true)
	tr.Leave()
	tr.Record(&tok, trace.Success, "Success rule ", "array", false)

	tok.Text = "changed"
	events := tr.Events()
	assert.Len(t, events, 5)
	assert.Equal(t, "[", events[0].Token.Text)
	assert.Equal(t, trace.Enter, events[1].Kind)
	assert.Nil(t, events[2].Token)
	assert.True(t, events[2].LowPriority)
	assert.Equal(t, trace.Leave, events[3].Kind)

	assert.Equal(t,
		"[info] Start rule array @ BRACE \"[\" 1:1\n"+
			"  ~ [fail] check...noBRACE ] @ EOF\n"+
			"[ok] Success rule array @ BRACE \"[\" 1:1\n",
		tr.String(),
	)

	tr.Reset()
	assert.Zero(t, tr.Len())
}

func TestNilTrace(t *testing.T) {
	t.Parallel()

	var tr *trace.Trace
	tr.Record(nil, trace.Info, "x", "y", false)
	tr.Enter()
	tr.Leave()
	assert.Empty(t, tr.Events())
	assert.Empty(t, tr.String())
}
