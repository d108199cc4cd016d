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
 * AQL Parser - Token Definitions
 *
 * Token types produced by the lexer. Keywords are resolved against the table
 * in keywords.go during scanning; a token therefore arrives at the grammar
 * already classified as keyword or identifier.
 */

package parser

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenKeyword
	TokenNumber
	TokenString
	TokenPlaceholder
	TokenOperator
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenPlaceholder:
		return "placeholder"
	case TokenOperator:
		return "operator"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token is one lexical unit with its exact source position. Line is 1-based
// and Column is 0-based, matching the positions reported in SyntaxError.
type Token struct {
	Type   TokenType
	Text   string // keyword text is normalized to upper case
	Pos    int    // byte offset into the input
	Line   int
	Column int
}

// isKeyword reports whether the token is the given keyword. Keyword text is
// already upper-cased by the lexer.
func (t Token) isKeyword(kw string) bool {
	return t.Type == TokenKeyword && t.Text == kw
}

// isOperator reports whether the token is the given operator or punctuation.
func (t Token) isOperator(op string) bool {
	return t.Type == TokenOperator && t.Text == op
}

// describe renders the token for syntax error messages.
func (t Token) describe() string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Text)
}
