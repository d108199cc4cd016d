// Copyright 2025 The AQL Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
 * AQL Parser - String Literal Processing
 *
 * Unescaping helpers for single-quoted string literals and backquoted
 * identifiers. The lexer stores literals in their raw quoted form; the
 * converter routes them through UnquoteString before building constants.
 */

package parser

import (
	"fmt"
	"strings"
)

// UnquoteString converts a raw single-quoted literal (quotes included) into
// its value. Supported escapes are the C-style set ClickHouse accepts plus
// the SQL '' doubling form.
func UnquoteString(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '\'' || raw[len(raw)-1] != '\'' {
		return "", fmt.Errorf("malformed string literal: %s", raw)
	}
	body := raw[1 : len(raw)-1]

	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '\'':
			// '' doubling; the lexer guarantees pairs inside the body.
			if i+1 < len(body) && body[i+1] == '\'' {
				sb.WriteByte('\'')
				i++
				continue
			}
			return "", fmt.Errorf("malformed string literal: %s", raw)
		case '\\':
			if i+1 >= len(body) {
				return "", fmt.Errorf("malformed string literal: %s", raw)
			}
			i++
			switch body[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'a':
				sb.WriteByte('\a')
			case 'v':
				sb.WriteByte('\v')
			case '0':
				sb.WriteByte(0)
			case '\\', '\'', '"', '`':
				sb.WriteByte(body[i])
			default:
				// Unknown escapes keep the escaped character as-is.
				sb.WriteByte(body[i])
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

// unquoteIdentifier strips the backquotes from a quoted identifier,
// collapsing doubled backquotes.
func unquoteIdentifier(raw string) string {
	if len(raw) < 2 || raw[0] != '`' || raw[len(raw)-1] != '`' {
		return raw
	}
	return strings.ReplaceAll(raw[1:len(raw)-1], "``", "`")
}
