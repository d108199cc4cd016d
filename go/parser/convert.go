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
 * AQL Parser - CST to AST Conversion
 *
 * Node-kind-dispatched traversal turning the concrete syntax tree into the
 * typed AST. This layer owns every semantic rule the grammar cannot express:
 * the unsupported-feature gate, LIMIT/OFFSET integer validation, IS NULL
 * desugaring, boolean flattening, field chain normalization and join chain
 * assembly. Any unsupported construct fails the whole conversion; there are
 * no partial results and no recovery.
 */

package parser

import (
	"strconv"
	"strings"

	"github.com/aqlang/aql/go/parser/ast"
	"github.com/aqlang/aql/go/parser/cst"
)

type converter struct {
	depth    int
	maxDepth int
}

func newConverter(maxDepth int) *converter {
	return &converter{maxDepth: maxDepth}
}

func (c *converter) enter() error {
	c.depth++
	if c.depth > c.maxDepth {
		return &ComplexityError{Depth: c.maxDepth}
	}
	return nil
}

func (c *converter) leave() {
	c.depth--
}

// ==============================================================================
// STATEMENTS
// ==============================================================================

// convertUnion resolves the top-level union wrapper. Exactly one branch is
// accepted and unwrapped transparently; UNION ALL itself is not supported.
func (c *converter) convertUnion(union *cst.SelectUnionStmt) (ast.Expr, error) {
	if len(union.Selects) != 1 {
		return nil, unsupportedf("UNION ALL")
	}
	return c.convertSelectWithParens(union.Selects[0])
}

func (c *converter) convertSelectWithParens(branch *cst.SelectStmtWithParens) (ast.Expr, error) {
	switch sel := branch.Select.(type) {
	case *cst.SelectStmt:
		return c.convertSelect(sel)
	case *cst.SelectUnionStmt:
		return c.convertUnion(sel)
	default:
		return nil, internalf("unexpected select branch %s", branch.Select.Production())
	}
}

func (c *converter) convertSelect(stmt *cst.SelectStmt) (ast.Expr, error) {
	query := &ast.SelectQuery{}

	var err error
	if query.Select, err = c.convertColumnExprList(stmt.Columns); err != nil {
		return nil, err
	}
	if stmt.From != nil {
		if query.SelectFrom, err = c.convertJoin(stmt.From.Join); err != nil {
			return nil, err
		}
	}
	if stmt.Where != nil {
		if query.Where, err = c.convertExpr(stmt.Where.Expr); err != nil {
			return nil, err
		}
	}
	if stmt.Prewhere != nil {
		if query.Prewhere, err = c.convertExpr(stmt.Prewhere.Expr); err != nil {
			return nil, err
		}
	}
	if stmt.Having != nil {
		if query.Having, err = c.convertExpr(stmt.Having.Expr); err != nil {
			return nil, err
		}
	}

	if stmt.Limit != nil {
		if query.Limit, err = c.convertLimitValue(stmt.Limit.Limit, "LIMIT"); err != nil {
			return nil, err
		}
		if stmt.Limit.Offset != nil {
			if query.Offset, err = c.convertLimitValue(stmt.Limit.Offset, "OFFSET"); err != nil {
				return nil, err
			}
		}
	}

	switch {
	case stmt.With != nil:
		return nil, unsupportedf("WithClause")
	case stmt.Top != nil:
		return nil, unsupportedf("TopClause")
	case stmt.ArrayJoin != nil:
		return nil, unsupportedf("ArrayJoinClause")
	case stmt.Window != nil:
		return nil, unsupportedf("WindowClause")
	case stmt.GroupBy != nil:
		return nil, unsupportedf("GroupByClause")
	case stmt.OrderBy != nil:
		return nil, unsupportedf("OrderByClause")
	case stmt.LimitBy != nil:
		return nil, unsupportedf("LimitByClause")
	case stmt.Settings != nil:
		return nil, unsupportedf("SettingsClause")
	}

	return query, nil
}

// convertLimitValue enforces that a LIMIT or OFFSET expression reduces to a
// constant integer.
func (c *converter) convertLimitValue(node cst.Node, clause string) (*int64, error) {
	expr, err := c.convertExpr(node)
	if err != nil {
		return nil, err
	}
	constant, ok := expr.(*ast.Constant)
	if !ok {
		return nil, semanticf("%s must be an integer", clause)
	}
	value, ok := constant.Value.(int64)
	if !ok {
		return nil, semanticf("%s must be an integer", clause)
	}
	return &value, nil
}

func (c *converter) convertColumnExprList(list *cst.ColumnExprList) ([]ast.Expr, error) {
	exprs := make([]ast.Expr, 0, len(list.Items))
	for _, item := range list.Items {
		expr, err := c.convertColumnsExpr(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func (c *converter) convertColumnsExpr(node cst.Node) (ast.Expr, error) {
	switch n := node.(type) {
	case *cst.ColumnsExprAsterisk:
		return ast.NewFieldAccess("*"), nil
	case *cst.ColumnsExprSubquery:
		return c.convertUnion(n.Select)
	case *cst.ColumnsExprColumn:
		return c.convertExpr(n.Expr)
	default:
		return c.convertExpr(node)
	}
}

// ==============================================================================
// JOINS
// ==============================================================================

// convertJoin linearizes the binary join productions into a singly linked
// chain of join steps, returning the head of the chain.
func (c *converter) convertJoin(node cst.Node) (*ast.JoinExpr, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	switch n := node.(type) {
	case *cst.JoinExprOp:
		return c.convertJoinOp(n)

	case *cst.JoinExprTable:
		if n.Sample != nil {
			return nil, unsupportedf("SAMPLE (JoinExprTable.sampleClause)")
		}
		table, err := c.convertTableExpr(n.Table)
		if err != nil {
			return nil, err
		}
		var final *bool
		if n.Final {
			t := true
			final = &t
		}
		// An aliased table already arrives as a JoinExpr carrying the alias;
		// the FINAL flag attaches to it rather than wrapping again.
		if join, ok := table.(*ast.JoinExpr); ok {
			join.TableFinal = final
			return join, nil
		}
		join := ast.NewJoinExpr(table)
		join.TableFinal = final
		return join, nil

	case *cst.JoinExprParens:
		return c.convertJoin(n.Join)

	case *cst.JoinExprCrossOp:
		return nil, unsupportedf("JoinExprCrossOp")

	default:
		return nil, internalf("unexpected join node %s", node.Production())
	}
}

func (c *converter) convertJoinOp(op *cst.JoinExprOp) (*ast.JoinExpr, error) {
	if op.Global {
		return nil, unsupportedf("GLOBAL JOIN")
	}
	if op.Local {
		return nil, unsupportedf("LOCAL JOIN")
	}

	left, err := c.convertJoin(op.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.convertJoin(op.Right)
	if err != nil {
		return nil, err
	}

	joinType := "JOIN"
	if op.Op != nil {
		modifiers, err := joinOpModifiers(op.Op)
		if err != nil {
			return nil, err
		}
		joinType = modifiers + " JOIN"
	}

	constraint, err := c.convertJoinConstraint(op.Constraint)
	if err != nil {
		return nil, err
	}

	// Attach right to the current tail of left's chain. The link fields are
	// written exactly once; the walk is bounded so a malformed chain cannot
	// spin forever.
	tail := left
	for steps := 0; tail.NextJoin != nil; steps++ {
		if steps > c.maxDepth {
			return nil, internalf("join chain does not terminate")
		}
		tail = tail.NextJoin
	}
	tail.NextJoin = right
	tail.JoinType = joinType
	tail.Constraint = constraint
	return left, nil
}

// joinOpModifiers renders a join operator production as its canonical token
// string ("LEFT OUTER", "FULL ALL", ...).
func joinOpModifiers(op cst.Node) (string, error) {
	var tokens []string
	appendIf := func(flag bool, token string) {
		if flag {
			tokens = append(tokens, token)
		}
	}
	switch n := op.(type) {
	case *cst.JoinOpInner:
		tokens = append(tokens, "INNER")
		appendIf(n.All, "ALL")
		appendIf(n.Anti, "ANTI")
		appendIf(n.Any, "ANY")
		appendIf(n.Asof, "ASOF")
	case *cst.JoinOpLeftRight:
		appendIf(n.Left, "LEFT")
		appendIf(n.Right, "RIGHT")
		appendIf(n.Outer, "OUTER")
		appendIf(n.Semi, "SEMI")
		appendIf(n.All, "ALL")
		appendIf(n.Anti, "ANTI")
		appendIf(n.Any, "ANY")
		appendIf(n.Asof, "ASOF")
	case *cst.JoinOpFull:
		tokens = append(tokens, "FULL")
		appendIf(n.Outer, "OUTER")
		appendIf(n.All, "ALL")
		appendIf(n.Any, "ANY")
	default:
		return "", internalf("unexpected join operator %s", op.Production())
	}
	return strings.Join(tokens, " "), nil
}

func (c *converter) convertJoinConstraint(constraint *cst.JoinConstraintClause) (ast.Expr, error) {
	if constraint == nil {
		return nil, internalf("join operation without constraint")
	}
	if constraint.Using {
		return nil, unsupportedf("JOIN ... USING")
	}
	exprs, err := c.convertColumnExprList(constraint.Exprs)
	if err != nil {
		return nil, err
	}
	if len(exprs) != 1 {
		return nil, unsupportedf("JOIN ... ON with multiple expressions")
	}
	return exprs[0], nil
}

func (c *converter) convertTableExpr(node cst.Node) (ast.Expr, error) {
	switch n := node.(type) {
	case *cst.TableExprIdentifier:
		if n.Table.Database != "" {
			return ast.NewFieldAccessChain([]string{n.Table.Database, n.Table.Name}), nil
		}
		return ast.NewFieldAccess(n.Table.Name), nil

	case *cst.TableExprSubquery:
		return c.convertUnion(n.Select)

	case *cst.TableExprAlias:
		inner, err := c.convertTableExpr(n.Table)
		if err != nil {
			return nil, err
		}
		join := ast.NewJoinExpr(inner)
		join.Alias = n.Alias
		return join, nil

	case *cst.TableExprFunction:
		return nil, unsupportedf("TableExprFunction")

	default:
		return nil, internalf("unexpected table node %s", node.Production())
	}
}

// ==============================================================================
// EXPRESSIONS
// ==============================================================================

func (c *converter) convertExpr(node cst.Node) (ast.Expr, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	switch n := node.(type) {
	case *cst.ColumnExprPrecedence1:
		return c.convertBinary(n.Left, n.Right, multiplicativeOp(n.Operator))

	case *cst.ColumnExprPrecedence2:
		if n.Operator == "||" {
			return nil, unsupportedf("string concatenation")
		}
		return c.convertBinary(n.Left, n.Right, additiveOp(n.Operator))

	case *cst.ColumnExprPrecedence3:
		return c.convertCompare(n)

	case *cst.ColumnExprAnd:
		exprs, err := c.flattenBoolean(n.Left, n.Right, isAnd)
		if err != nil {
			return nil, err
		}
		return ast.NewAnd(exprs), nil

	case *cst.ColumnExprOr:
		exprs, err := c.flattenBoolean(n.Left, n.Right, isOr)
		if err != nil {
			return nil, err
		}
		return ast.NewOr(exprs), nil

	case *cst.ColumnExprNot:
		expr, err := c.convertExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return ast.NewNot(expr), nil

	case *cst.ColumnExprIsNull:
		expr, err := c.convertExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		op := ast.Eq
		if n.Not {
			op = ast.NotEq
		}
		return ast.NewCompareOperation(expr, ast.NewConstant(nil), op), nil

	case *cst.ColumnExprArrayAccess:
		return c.convertArrayAccess(n)

	case *cst.ColumnExprParens:
		return c.convertExpr(n.Expr)

	case *cst.ColumnExprFunction:
		return c.convertFunction(n)

	case *cst.ColumnIdentifier:
		return convertColumnIdentifier(n), nil

	case *cst.ColumnExprAsterisk:
		return ast.NewFieldAccess("*"), nil

	case *cst.ColumnExprPlaceholder:
		return ast.NewPlaceholder(n.Name), nil

	case *cst.ColumnExprSubquery:
		return c.convertUnion(n.Select)

	case *cst.Literal:
		return convertLiteral(n)

	case *cst.ColumnsExprColumn:
		return c.convertExpr(n.Expr)

	case *cst.ColumnExprTernaryOp:
		return nil, unsupportedf("ColumnExprTernaryOp")
	case *cst.ColumnExprAlias:
		return nil, unsupportedf("ColumnExprAlias")
	case *cst.ColumnExprNegate:
		return nil, unsupportedf("ColumnExprNegate")
	case *cst.ColumnExprArray:
		return nil, unsupportedf("ColumnExprArray")
	case *cst.ColumnExprTuple:
		return nil, unsupportedf("ColumnExprTuple")
	case *cst.ColumnExprTupleAccess:
		return nil, unsupportedf("ColumnExprTupleAccess")
	case *cst.ColumnExprCast:
		return nil, unsupportedf("ColumnExprCast")
	case *cst.ColumnExprCase:
		return nil, unsupportedf("ColumnExprCase")
	case *cst.ColumnExprInterval:
		return nil, unsupportedf("ColumnExprInterval")
	case *cst.ColumnExprBetween:
		return nil, unsupportedf("ColumnExprBetween")
	case *cst.ColumnExprWinFunction:
		return nil, unsupportedf("ColumnExprWinFunction")
	case *cst.ColumnLambdaExpr:
		return nil, unsupportedf("ColumnLambdaExpr")

	default:
		return nil, internalf("unexpected expression node %s", node.Production())
	}
}

func multiplicativeOp(operator string) ast.BinaryOperationType {
	switch operator {
	case "*":
		return ast.Mult
	case "/":
		return ast.Div
	default:
		return ast.Mod
	}
}

func additiveOp(operator string) ast.BinaryOperationType {
	if operator == "+" {
		return ast.Add
	}
	return ast.Sub
}

func (c *converter) convertBinary(left, right cst.Node, op ast.BinaryOperationType) (ast.Expr, error) {
	l, err := c.convertExpr(left)
	if err != nil {
		return nil, err
	}
	r, err := c.convertExpr(right)
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryOperation(l, r, op), nil
}

func (c *converter) convertCompare(n *cst.ColumnExprPrecedence3) (ast.Expr, error) {
	var op ast.CompareOperationType
	switch n.Operator {
	case "=", "==":
		op = ast.Eq
	case "!=", "<>":
		op = ast.NotEq
	case "<":
		op = ast.Lt
	case "<=":
		op = ast.LtE
	case ">":
		op = ast.Gt
	case ">=":
		op = ast.GtE
	case "LIKE":
		op = ast.Like
		if n.Not {
			op = ast.NotLike
		}
	case "ILIKE":
		op = ast.ILike
		if n.Not {
			op = ast.NotILike
		}
	case "IN":
		if n.Global {
			return nil, unsupportedf("IN GLOBAL")
		}
		op = ast.In
		if n.Not {
			op = ast.NotIn
		}
	default:
		return nil, internalf("unexpected comparison operator %q", n.Operator)
	}

	left, err := c.convertExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.convertExpr(n.Right)
	if err != nil {
		return nil, err
	}
	return ast.NewCompareOperation(left, right, op), nil
}

func isAnd(expr ast.Expr) ([]ast.Expr, bool) {
	if and, ok := expr.(*ast.And); ok {
		return and.Exprs, true
	}
	return nil, false
}

func isOr(expr ast.Expr) ([]ast.Expr, bool) {
	if or, ok := expr.(*ast.Or); ok {
		return or.Exprs, true
	}
	return nil, false
}

// flattenBoolean converts both operands of a binary AND/OR and splices any
// operand of the same logical kind into a single flat, order-preserving
// element list. The grammar produces left-leaning pairs, so recursion over
// the left operand flattens arbitrarily long chains.
func (c *converter) flattenBoolean(left, right cst.Node, sameKind func(ast.Expr) ([]ast.Expr, bool)) ([]ast.Expr, error) {
	l, err := c.convertExpr(left)
	if err != nil {
		return nil, err
	}
	r, err := c.convertExpr(right)
	if err != nil {
		return nil, err
	}

	var exprs []ast.Expr
	if elems, ok := sameKind(l); ok {
		exprs = append(exprs, elems...)
	} else {
		exprs = append(exprs, l)
	}
	if elems, ok := sameKind(r); ok {
		exprs = append(exprs, elems...)
	} else {
		exprs = append(exprs, r)
	}
	return exprs, nil
}

// convertArrayAccess merges expr[key] into a flattened field access chain.
// The key must reduce to a constant and the base must already be field
// access; anything else has no chain representation.
func (c *converter) convertArrayAccess(n *cst.ColumnExprArrayAccess) (ast.Expr, error) {
	object, err := c.convertExpr(n.Object)
	if err != nil {
		return nil, err
	}
	index, err := c.convertExpr(n.Index)
	if err != nil {
		return nil, err
	}

	constant, ok := index.(*ast.Constant)
	if !ok {
		return nil, semanticf("array access must be performed with a constant")
	}
	segment, err := chainSegment(constant.Value)
	if err != nil {
		return nil, err
	}

	switch base := object.(type) {
	case *ast.FieldAccess:
		return ast.NewFieldAccessChain([]string{base.Field, segment}), nil
	case *ast.FieldAccessChain:
		chain := make([]string, 0, len(base.Chain)+1)
		chain = append(chain, base.Chain...)
		chain = append(chain, segment)
		return ast.NewFieldAccessChain(chain), nil
	default:
		return nil, semanticf("array access is only supported on field accesses")
	}
}

func chainSegment(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", semanticf("array access key must be a string or integer constant")
	}
}

func (c *converter) convertFunction(n *cst.ColumnExprFunction) (ast.Expr, error) {
	if n.Params != nil {
		return nil, unsupportedf("functions that return functions")
	}
	args := make([]ast.Expr, 0)
	if n.Args != nil {
		for _, item := range n.Args.Items {
			arg, err := c.convertExpr(item)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	return ast.NewCall(n.Name, args), nil
}

// convertColumnIdentifier collapses a dotted identifier path. The boolean
// fold applies only to a bare single-segment identifier, never to a
// table-qualified path.
func convertColumnIdentifier(n *cst.ColumnIdentifier) ast.Expr {
	parts := n.Nested.Parts
	if len(parts) == 1 {
		switch strings.ToLower(parts[0]) {
		case "true":
			return ast.NewConstant(true)
		case "false":
			return ast.NewConstant(false)
		}
		return ast.NewFieldAccess(parts[0])
	}
	return ast.NewFieldAccessChain(parts)
}

// convertLiteral builds a constant from a literal token. Integer and float
// are distinguished by the decimal point in the source text.
func convertLiteral(n *cst.Literal) (ast.Expr, error) {
	switch n.Kind {
	case cst.LiteralNull:
		return ast.NewConstant(nil), nil
	case cst.LiteralNumber:
		if strings.Contains(n.Text, ".") {
			value, err := strconv.ParseFloat(n.Text, 64)
			if err != nil {
				return nil, semanticf("invalid numeric literal %q", n.Text)
			}
			return ast.NewConstant(value), nil
		}
		value, err := strconv.ParseInt(n.Text, 10, 64)
		if err != nil {
			return nil, semanticf("invalid numeric literal %q", n.Text)
		}
		return ast.NewConstant(value), nil
	case cst.LiteralString:
		text, err := UnquoteString(n.Text)
		if err != nil {
			return nil, internalf("%v", err)
		}
		return ast.NewConstant(text), nil
	default:
		return nil, internalf("unexpected literal kind %d", int(n.Kind))
	}
}
