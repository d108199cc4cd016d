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
 * AQL Parser - Entry Points
 *
 * Public interface of the front end. Both entry points are pure and
 * stateless: each call scans, parses and converts on the calling goroutine
 * with no shared mutable state, so concurrent use needs no locking.
 */

package parser

import (
	"github.com/aqlang/aql/go/parser/ast"
	"github.com/aqlang/aql/go/parser/cst"
)

// DefaultMaxDepth bounds expression and join nesting. Exceeding the bound
// fails with a ComplexityError instead of exhausting the stack.
const DefaultMaxDepth = 500

type config struct {
	maxDepth int
}

// Option adjusts parser behavior.
type Option func(*config)

// WithMaxDepth overrides the nesting depth bound.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

func newConfig(opts []Option) config {
	cfg := config{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ParseExpression parses a single column or value expression. When
// placeholders are supplied, placeholder nodes are substituted in the result;
// placeholders without a binding pass through unresolved.
func ParseExpression(input string, placeholders map[string]ast.Expr, opts ...Option) (ast.Expr, error) {
	cfg := newConfig(opts)
	g, err := prepare(input, cfg)
	if err != nil {
		return nil, err
	}
	root, err := g.parseExpressionRoot()
	if err != nil {
		return nil, err
	}
	node, err := newConverter(cfg.maxDepth).convertExpr(root)
	if err != nil {
		return nil, err
	}
	return ast.ReplacePlaceholders(node, placeholders), nil
}

// ParseStatement parses a full select statement. The result is always a
// *ast.SelectQuery on success.
func ParseStatement(input string, placeholders map[string]ast.Expr, opts ...Option) (ast.Expr, error) {
	cfg := newConfig(opts)
	g, err := prepare(input, cfg)
	if err != nil {
		return nil, err
	}
	root, err := g.parseStatementRoot()
	if err != nil {
		return nil, err
	}
	node, err := newConverter(cfg.maxDepth).convertUnion(root)
	if err != nil {
		return nil, err
	}
	return ast.ReplacePlaceholders(node, placeholders), nil
}

// Convert exposes the CST-to-AST conversion for callers that obtained a
// concrete syntax tree some other way.
func Convert(node cst.Node, opts ...Option) (ast.Expr, error) {
	cfg := newConfig(opts)
	c := newConverter(cfg.maxDepth)
	switch n := node.(type) {
	case *cst.SelectUnionStmt:
		return c.convertUnion(n)
	default:
		return c.convertExpr(node)
	}
}

func prepare(input string, cfg config) (*grammar, error) {
	tokens, err := scanTokens(input)
	if err != nil {
		return nil, err
	}
	return newGrammar(tokens, cfg.maxDepth), nil
}
