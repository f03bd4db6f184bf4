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

package lexer

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bufbuild/layoutkit/token"
)

// Rule is a single lexical rule.
type Rule struct {
	// The kind of token this rule produces.
	Kind token.Kind

	// Match reports whether this rule applies to the text at the cursor.
	Match func(rest string) bool

	// Length returns how many bytes of rest the token occupies. It is only
	// called if Match returned true. A non-positive length declines the
	// match, letting later rules try; an error fails lexing at the start of
	// the token.
	Length func(rest string) (int, error)
}

// Prefix returns a rule that matches any of the given words. Earlier words
// take priority over later ones.
func Prefix(kind token.Kind, words ...string) Rule {
	find := func(rest string) string {
		for _, w := range words {
			if strings.HasPrefix(rest, w) {
				return w
			}
		}
		return ""
	}

	return Rule{
		Kind:   kind,
		Match:  func(rest string) bool { return find(rest) != "" },
		Length: func(rest string) (int, error) { return len(find(rest)), nil },
	}
}

// Pattern returns a rule that applies when start matches at the cursor, and
// which grows the token one byte at a time for as long as the whole token
// still matches body.
//
// body should be anchored at both ends, e.g. `^\d*$`.
func Pattern(kind token.Kind, start, body *regexp.Regexp) Rule {
	return Rule{
		Kind: kind,
		Match: func(rest string) bool {
			loc := start.FindStringIndex(rest)
			return loc != nil && loc[0] == 0
		},
		Length: func(rest string) (int, error) {
			n := 0
			for n < len(rest) && body.MatchString(rest[:n+1]) {
				n++
			}
			return n, nil
		},
	}
}

// Step is a character-wise scanning callback for [Scan]. It is given the
// text from the scan position onwards and returns how many bytes to advance,
// and whether the token ends after those bytes.
type Step func(rest string) (advance int, done bool)

// Scan returns a rule that applies when match accepts the cursor, and which
// then calls step repeatedly, starting from offset bytes into the token,
// until step reports that the token is done.
//
// If the input runs out first, lexing fails with unterminated as the reason.
func Scan(kind token.Kind, match func(rest string) bool, offset int, step Step, unterminated string) Rule {
	return Rule{
		Kind:  kind,
		Match: match,
		Length: func(rest string) (int, error) {
			for i := offset; i < len(rest); {
				n, done := step(rest[i:])
				n = max(n, 1)
				if done {
					return min(i+n, len(rest)), nil
				}
				i += n
			}
			return 0, errors.New(unterminated)
		},
	}
}

// OneOf returns a match predicate that accepts text starting with any of the
// given runes.
func OneOf(runes string) func(string) bool {
	return func(rest string) bool {
		r, _ := utf8.DecodeRuneInString(rest)
		return r != utf8.RuneError && strings.ContainsRune(runes, r)
	}
}
