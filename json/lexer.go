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
	"regexp"

	"github.com/bufbuild/layoutkit/lexer"
	"github.com/bufbuild/layoutkit/token"
)

// Token kinds produced by [Lexer].
const (
	KindKeyword token.Kind = "KEYWORD"
	KindNumber  token.Kind = "NUMBER"
	KindString  token.Kind = "STRING"
	KindBrace   token.Kind = "BRACE"
	KindSymbol  token.Kind = "SYMBOL"
)

// Lexer tokenizes JSON text. White space between tokens is skipped.
var Lexer = &lexer.Lexer{
	Rules: []lexer.Rule{
		lexer.Prefix(KindKeyword, "null", "true", "false"),
		lexer.Pattern(KindNumber,
			regexp.MustCompile(`^[0-9-]`),
			regexp.MustCompile(`^-?\d*\.?\d*(?:[eE][-+]?\d*)?$`),
		),
		lexer.Scan(KindString, lexer.OneOf(`"`), 1, func(rest string) (int, bool) {
			switch rest[0] {
			case '\\':
				return 2, false
			case '"':
				return 1, true
			default:
				return 1, false
			}
		}, "unterminated string"),
		lexer.Prefix(KindBrace, "{", "}", "[", "]"),
		lexer.Prefix(KindSymbol, ":", ","),
	},
}
