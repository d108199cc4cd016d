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
 * AQL Parser - Lexer
 *
 * Hand-written scanner turning query text into a token stream with exact
 * source positions. The first lexical problem aborts the scan with a
 * SyntaxError; the grammar never sees a partial or recovered stream.
 */

package parser

import (
	"fmt"
	"strings"
)

type lexer struct {
	input     string
	pos       int
	line      int // 1-based
	lineStart int // byte offset of the current line
}

// scanTokens tokenizes the whole input up front. The returned slice always
// ends with a TokenEOF token.
func scanTokens(input string) ([]Token, error) {
	lx := &lexer{input: input, line: 1}
	var tokens []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (lx *lexer) column() int {
	return lx.pos - lx.lineStart
}

func (lx *lexer) errorf(format string, args ...any) error {
	return &SyntaxError{
		Line:    lx.line,
		Column:  lx.column(),
		Message: fmt.Sprintf(format, args...),
	}
}

func (lx *lexer) peek() byte {
	if lx.pos >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos]
}

func (lx *lexer) peekAt(offset int) byte {
	if lx.pos+offset >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos+offset]
}

func (lx *lexer) advance() {
	if lx.pos < len(lx.input) {
		if lx.input[lx.pos] == '\n' {
			lx.line++
			lx.lineStart = lx.pos + 1
		}
		lx.pos++
	}
}

func (lx *lexer) next() (Token, error) {
	if err := lx.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}

	start := Token{Pos: lx.pos, Line: lx.line, Column: lx.column()}
	if lx.pos >= len(lx.input) {
		start.Type = TokenEOF
		return start, nil
	}

	c := lx.peek()
	switch {
	case isIdentStart(c):
		return lx.scanIdent(start)
	case isDigit(c) || (c == '.' && isDigit(lx.peekAt(1))):
		return lx.scanNumber(start)
	case c == '\'':
		return lx.scanString(start)
	case c == '`':
		return lx.scanQuotedIdent(start)
	case c == '{':
		return lx.scanPlaceholder(start)
	default:
		return lx.scanOperator(start)
	}
}

func (lx *lexer) skipSpaceAndComments() error {
	for lx.pos < len(lx.input) {
		c := lx.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.advance()
		case c == '-' && lx.peekAt(1) == '-':
			for lx.pos < len(lx.input) && lx.peek() != '\n' {
				lx.advance()
			}
		case c == '/' && lx.peekAt(1) == '*':
			lx.advance()
			lx.advance()
			for {
				if lx.pos >= len(lx.input) {
					return lx.errorf("unterminated /* comment")
				}
				if lx.peek() == '*' && lx.peekAt(1) == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) scanIdent(tok Token) (Token, error) {
	start := lx.pos
	for lx.pos < len(lx.input) && isIdentPart(lx.peek()) {
		lx.advance()
	}
	word := lx.input[start:lx.pos]
	if upper, ok := lookupKeyword(word); ok {
		tok.Type = TokenKeyword
		tok.Text = upper
		return tok, nil
	}
	tok.Type = TokenIdent
	tok.Text = word
	return tok, nil
}

func (lx *lexer) scanQuotedIdent(tok Token) (Token, error) {
	start := lx.pos
	lx.advance() // opening backquote
	for {
		if lx.pos >= len(lx.input) {
			return Token{}, lx.errorf("unterminated quoted identifier")
		}
		if lx.peek() == '`' {
			if lx.peekAt(1) == '`' {
				lx.advance()
				lx.advance()
				continue
			}
			lx.advance()
			break
		}
		lx.advance()
	}
	name := unquoteIdentifier(lx.input[start:lx.pos])
	if name == "" {
		return Token{}, lx.errorf("zero-length quoted identifier")
	}
	tok.Type = TokenIdent
	tok.Text = name
	return tok, nil
}

// scanNumber scans an integer or float literal. A decimal point makes the
// literal a float; exponent notation is not part of the dialect, so a letter
// directly after the digits is trailing junk.
func (lx *lexer) scanNumber(tok Token) (Token, error) {
	start := lx.pos
	for lx.pos < len(lx.input) && isDigit(lx.peek()) {
		lx.advance()
	}
	if lx.peek() == '.' && !isIdentStart(lx.peekAt(1)) {
		lx.advance()
		for lx.pos < len(lx.input) && isDigit(lx.peek()) {
			lx.advance()
		}
	}
	if isIdentStart(lx.peek()) {
		return Token{}, lx.errorf("trailing junk after numeric literal: %q",
			lx.input[start:lx.pos+1])
	}
	tok.Type = TokenNumber
	tok.Text = lx.input[start:lx.pos]
	return tok, nil
}

func (lx *lexer) scanString(tok Token) (Token, error) {
	start := lx.pos
	lx.advance() // opening quote
	for {
		if lx.pos >= len(lx.input) {
			return Token{}, lx.errorf("unterminated quoted string")
		}
		switch lx.peek() {
		case '\\':
			lx.advance()
			if lx.pos >= len(lx.input) {
				return Token{}, lx.errorf("unterminated quoted string")
			}
			lx.advance()
		case '\'':
			if lx.peekAt(1) == '\'' {
				lx.advance()
				lx.advance()
				continue
			}
			lx.advance()
			tok.Type = TokenString
			tok.Text = lx.input[start:lx.pos]
			return tok, nil
		default:
			lx.advance()
		}
	}
}

func (lx *lexer) scanPlaceholder(tok Token) (Token, error) {
	lx.advance() // '{'
	start := lx.pos
	if !isIdentStart(lx.peek()) {
		return Token{}, lx.errorf("expected placeholder name after \"{\"")
	}
	for lx.pos < len(lx.input) && isIdentPart(lx.peek()) {
		lx.advance()
	}
	name := lx.input[start:lx.pos]
	if lx.peek() != '}' {
		return Token{}, lx.errorf("unterminated placeholder {%s", name)
	}
	lx.advance() // '}'
	tok.Type = TokenPlaceholder
	tok.Text = name
	return tok, nil
}

// twoByteOperators are tried before single-byte ones; order within the slice
// does not matter because no element is a prefix of another.
var twoByteOperators = []string{"==", "!=", "<>", "<=", ">=", "||", "->"}

const singleByteOperators = "+-*/%=<>,()[].?:"

func (lx *lexer) scanOperator(tok Token) (Token, error) {
	if lx.pos+1 < len(lx.input) {
		two := lx.input[lx.pos : lx.pos+2]
		for _, op := range twoByteOperators {
			if two == op {
				lx.advance()
				lx.advance()
				tok.Type = TokenOperator
				tok.Text = op
				return tok, nil
			}
		}
	}
	c := lx.peek()
	if strings.IndexByte(singleByteOperators, c) >= 0 {
		lx.advance()
		tok.Type = TokenOperator
		tok.Text = string(c)
		return tok, nil
	}
	return Token{}, lx.errorf("unexpected character %q", string(c))
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
