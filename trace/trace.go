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

// Package trace records diagnostic events produced while parsing, and while
// walking finished syntax trees.
//
// A trace is an ordered list of events. Enter and Leave events bracket the
// events of nested rule attempts, so that a trace can be displayed as a
// collapsible tree.
package trace

import (
	"fmt"
	"strings"

	"github.com/bufbuild/layoutkit/token"
)

// Severity classifies a trace event.
type Severity int8

const (
	Info    Severity = iota // Neutral progress.
	Success                 // Something matched.
	Failure                 // Something did not match.
)

// String implements [fmt.Stringer].
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "ok"
	case Failure:
		return "fail"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Kind is the kind of an [Event].
type Kind int8

const (
	Entry Kind = iota // A message.
	Enter             // Start of a nested group.
	Leave             // End of a nested group.
)

// Event is a single trace event.
type Event struct {
	Kind Kind

	// The token the event refers to. Nil when the event refers to the end of
	// the input.
	Token *token.Token

	Marker, Message string
	Severity        Severity

	// Set for events about comment-like, low-priority material, which a
	// viewer may choose to hide.
	LowPriority bool
}

// Trace is an append-only event buffer. Each parse must use its own Trace.
//
// A nil *Trace discards everything recorded into it.
type Trace struct {
	events []Event
}

// Record appends an entry event. tok is copied, so callers may pass the
// address of a loop variable.
func (t *Trace) Record(tok *token.Token, severity Severity, marker, message string, lowPriority bool) {
	if t == nil {
		return
	}
	if tok != nil {
		copied := *tok
		tok = &copied
	}
	t.events = append(t.events, Event{
		Kind:        Entry,
		Token:       tok,
		Marker:      marker,
		Message:     message,
		Severity:    severity,
		LowPriority: lowPriority,
	})
}

// Enter opens a nested group.
func (t *Trace) Enter() {
	if t != nil {
		t.events = append(t.events, Event{Kind: Enter})
	}
}

// Leave closes the innermost nested group.
func (t *Trace) Leave() {
	if t != nil {
		t.events = append(t.events, Event{Kind: Leave})
	}
}

// Events returns the recorded events.
func (t *Trace) Events() []Event {
	if t == nil {
		return nil
	}
	return t.events
}

// Len returns the number of recorded events.
func (t *Trace) Len() int {
	return len(t.Events())
}

// Reset discards all recorded events.
func (t *Trace) Reset() {
	if t != nil {
		t.events = t.events[:0]
	}
}

// String renders the trace as indented text, one entry per line. Enter and
// Leave events change the indentation instead of producing lines.
func (t *Trace) String() string {
	var out strings.Builder
	depth := 0
	for _, e := range t.Events() {
		switch e.Kind {
		case Enter:
			depth++
		case Leave:
			depth = max(depth-1, 0)
		case Entry:
			out.WriteString(strings.Repeat("  ", depth))
			if e.LowPriority {
				out.WriteString("~ ")
			}
			fmt.Fprintf(&out, "[%s] %s%s", e.Severity, e.Marker, e.Message)
			if e.Token != nil {
				fmt.Fprintf(&out, " @ %s", e.Token)
			} else {
				out.WriteString(" @ EOF")
			}
			out.WriteByte('\n')
		}
	}
	return out.String()
}
