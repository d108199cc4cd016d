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
 * AQL Parser - Keyword Recognition
 *
 * Keyword table for the lexer. AQL keywords are reserved: a word in this
 * table always lexes as a keyword, never as an identifier. TRUE and FALSE
 * are intentionally absent; they lex as identifiers and the converter folds
 * them into boolean constants only when they appear without a qualifying
 * table path.
 */

package parser

import "strings"

// keywords holds every reserved word of the grammar, lower-cased.
var keywords = map[string]struct{}{
	"all":      {},
	"and":      {},
	"anti":     {},
	"any":      {},
	"array":    {},
	"as":       {},
	"asc":      {},
	"asof":     {},
	"between":  {},
	"by":       {},
	"case":     {},
	"cast":     {},
	"cross":    {},
	"desc":     {},
	"else":     {},
	"end":      {},
	"final":    {},
	"from":     {},
	"full":     {},
	"global":   {},
	"group":    {},
	"having":   {},
	"ilike":    {},
	"in":       {},
	"inner":    {},
	"interval": {},
	"is":       {},
	"join":     {},
	"left":     {},
	"like":     {},
	"limit":    {},
	"local":    {},
	"not":      {},
	"null":     {},
	"offset":   {},
	"on":       {},
	"or":       {},
	"order":    {},
	"outer":    {},
	"over":     {},
	"prewhere": {},
	"right":    {},
	"sample":   {},
	"select":   {},
	"semi":     {},
	"settings": {},
	"then":     {},
	"top":      {},
	"union":    {},
	"using":    {},
	"when":     {},
	"where":    {},
	"window":   {},
	"with":     {},
}

// lookupKeyword reports whether word is a reserved keyword, returning its
// normalized (upper-case) form when it is.
func lookupKeyword(word string) (string, bool) {
	lower := strings.ToLower(word)
	if _, ok := keywords[lower]; ok {
		return strings.ToUpper(lower), true
	}
	return "", false
}
