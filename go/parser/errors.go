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
 * AQL Parser - Error Taxonomy
 *
 * This file defines the typed errors the front end can return. A given input
 * either fully succeeds or fails with exactly one of these; nothing is
 * retried or recovered internally, and no partial AST accompanies an error.
 */

package parser

import (
	"errors"
	"fmt"
)

// SyntaxError reports a tokenization or parsing failure at an exact source
// position. Line is 1-based, Column is 0-based.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// UnsupportedError reports a grammar production the converter recognizes but
// does not implement. Feature names the production or feature so the
// coverage boundary stays auditable.
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Feature)
}

// SemanticError reports a rule violation the grammar cannot express, such as
// a non-integer LIMIT or array access on a non-field base.
type SemanticError struct {
	Message string
}

func (e *SemanticError) Error() string {
	return e.Message
}

// InternalError reports a combination the converter assumes cannot occur. It
// signals a converter bug, never a problem with the input, and callers
// should log it as such.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal: %s", e.Message)
}

// ComplexityError reports that parsing or conversion exceeded the nesting
// depth bound before the input could be accepted.
type ComplexityError struct {
	Depth int
}

func (e *ComplexityError) Error() string {
	return fmt.Sprintf("query too complex: nesting exceeds %d levels", e.Depth)
}

// ErrorClass returns a stable label for the error's place in the taxonomy,
// or "unknown" for errors that did not come from this package. Internal
// errors should be distinguished from the rest in logging.
func ErrorClass(err error) string {
	var (
		syntaxErr      *SyntaxError
		unsupportedErr *UnsupportedError
		semanticErr    *SemanticError
		internalErr    *InternalError
		complexityErr  *ComplexityError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return "syntax"
	case errors.As(err, &unsupportedErr):
		return "unsupported"
	case errors.As(err, &semanticErr):
		return "semantic"
	case errors.As(err, &internalErr):
		return "internal"
	case errors.As(err, &complexityErr):
		return "complexity"
	default:
		return "unknown"
	}
}

func unsupportedf(format string, args ...any) error {
	return &UnsupportedError{Feature: fmt.Sprintf(format, args...)}
}

func semanticf(format string, args ...any) error {
	return &SemanticError{Message: fmt.Sprintf(format, args...)}
}

func internalf(format string, args ...any) error {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
