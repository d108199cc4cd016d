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

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aqlang/aql/go/parser/ast"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func parseExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	expr, err := ParseExpression(input, nil)
	require.NoError(t, err)
	return expr
}

func intp(v int64) *int64 { return &v }

func TestParseExpressionConstants(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"1", int64(1)},
		{"-1", int64(-1)},
		{"+42", int64(42)},
		{"1.5", 1.5},
		{"-1.5", -1.5},
		{".5", 0.5},
		{"NULL", nil},
		{"null", nil},
		{"true", true},
		{"TRUE", true},
		{"false", false},
		{"'string'", "string"},
		{`'esc\'aped'`, "esc'aped"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			require.IsType(t, &ast.Constant{}, expr)
			assert.Equal(t, tt.want, expr.(*ast.Constant).Value)
		})
	}
}

func TestParseExpressionIntegerVersusFloat(t *testing.T) {
	// The decimal point alone decides the type, not magnitude.
	expr := parseExpr(t, "2.0")
	assert.Equal(t, ast.NewConstant(2.0), expr)

	expr = parseExpr(t, "2")
	assert.Equal(t, ast.NewConstant(int64(2)), expr)
}

func TestParseExpressionFieldAccess(t *testing.T) {
	assert.Equal(t, ast.NewFieldAccess("event"), parseExpr(t, "event"))
	assert.Equal(t, ast.NewFieldAccess("*"), parseExpr(t, "*"))
}

func TestParseExpressionFieldAccessChains(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a.b", []string{"a", "b"}},
		{"a.b.c", []string{"a", "b", "c"}},
		{"a['b']", []string{"a", "b"}},
		{"a.b['c']", []string{"a", "b", "c"}},
		{"a['b']['c']", []string{"a", "b", "c"}},
		{"a[0]", []string{"a", "0"}},
		// A table-qualified path never folds to a boolean constant.
		{"a.true", []string{"a", "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, ast.NewFieldAccessChain(tt.want), parseExpr(t, tt.input))
		})
	}
}

func TestParseExpressionArrayAccessValidation(t *testing.T) {
	_, err := ParseExpression("a[b]", nil)
	var semanticErr *SemanticError
	require.ErrorAs(t, err, &semanticErr)
	assert.Contains(t, semanticErr.Message, "constant")

	_, err = ParseExpression("f(x)['key']", nil)
	require.ErrorAs(t, err, &semanticErr)
	assert.Contains(t, semanticErr.Message, "field accesses")
}

func TestParseExpressionArithmeticPrecedence(t *testing.T) {
	// multiplicative > additive
	want := ast.NewBinaryOperation(
		ast.NewConstant(int64(1)),
		ast.NewBinaryOperation(ast.NewConstant(int64(2)), ast.NewConstant(int64(3)), ast.Mult),
		ast.Add,
	)
	assert.Equal(t, want, parseExpr(t, "1 + 2 * 3"))

	// additive > comparison
	wantCmp := ast.NewCompareOperation(
		ast.NewBinaryOperation(ast.NewConstant(int64(1)), ast.NewConstant(int64(2)), ast.Add),
		ast.NewConstant(int64(3)),
		ast.Eq,
	)
	assert.Equal(t, wantCmp, parseExpr(t, "1 + 2 = 3"))

	// parentheses override
	wantParen := ast.NewBinaryOperation(
		ast.NewBinaryOperation(ast.NewConstant(int64(1)), ast.NewConstant(int64(2)), ast.Add),
		ast.NewConstant(int64(3)),
		ast.Mult,
	)
	assert.Equal(t, wantParen, parseExpr(t, "(1 + 2) * 3"))
}

func TestParseExpressionArithmeticOperators(t *testing.T) {
	tests := []struct {
		input string
		op    ast.BinaryOperationType
	}{
		{"1 + 2", ast.Add},
		{"1 - 2", ast.Sub},
		{"1 * 2", ast.Mult},
		{"1 / 2", ast.Div},
		{"1 % 2", ast.Mod},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			require.IsType(t, &ast.BinaryOperation{}, expr)
			assert.Equal(t, tt.op, expr.(*ast.BinaryOperation).Op)
		})
	}
}

func TestParseExpressionComparisonOperators(t *testing.T) {
	tests := []struct {
		input string
		op    ast.CompareOperationType
	}{
		{"a = b", ast.Eq},
		{"a == b", ast.Eq},
		{"a != b", ast.NotEq},
		{"a <> b", ast.NotEq},
		{"a < b", ast.Lt},
		{"a <= b", ast.LtE},
		{"a > b", ast.Gt},
		{"a >= b", ast.GtE},
		{"a LIKE 'x%'", ast.Like},
		{"a NOT LIKE 'x%'", ast.NotLike},
		{"a ILIKE 'x%'", ast.ILike},
		{"a NOT ILIKE 'x%'", ast.NotILike},
		{"a IN b", ast.In},
		{"a NOT IN b", ast.NotIn},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			require.IsType(t, &ast.CompareOperation{}, expr)
			assert.Equal(t, tt.op, expr.(*ast.CompareOperation).Op)
		})
	}
}

func TestParseExpressionNullTests(t *testing.T) {
	want := ast.NewCompareOperation(ast.NewFieldAccess("x"), ast.NewConstant(nil), ast.Eq)
	assert.Equal(t, want, parseExpr(t, "x IS NULL"))

	wantNot := ast.NewCompareOperation(ast.NewFieldAccess("x"), ast.NewConstant(nil), ast.NotEq)
	assert.Equal(t, wantNot, parseExpr(t, "x IS NOT NULL"))
}

func TestParseExpressionBooleanFlattening(t *testing.T) {
	a := ast.NewFieldAccess("a")
	b := ast.NewFieldAccess("b")
	c := ast.NewFieldAccess("c")
	d := ast.NewFieldAccess("d")

	assert.Equal(t, ast.NewAnd([]ast.Expr{a, b, c}), parseExpr(t, "a AND b AND c"))
	assert.Equal(t, ast.NewAnd([]ast.Expr{a, b, c}), parseExpr(t, "a AND (b AND c)"))
	assert.Equal(t, ast.NewAnd([]ast.Expr{a, b, c}), parseExpr(t, "(a AND b) AND c"))
	assert.Equal(t, ast.NewAnd([]ast.Expr{a, b, c, d}), parseExpr(t, "(a AND b) AND (c AND d)"))
	assert.Equal(t, ast.NewOr([]ast.Expr{a, b, c}), parseExpr(t, "a OR b OR c"))

	// Mixed operators never merge; OR binds loosest.
	assert.Equal(t,
		ast.NewOr([]ast.Expr{ast.NewAnd([]ast.Expr{a, b}), c}),
		parseExpr(t, "a AND b OR c"))
	assert.Equal(t,
		ast.NewAnd([]ast.Expr{a, ast.NewOr([]ast.Expr{b, c})}),
		parseExpr(t, "a AND (b OR c)"))
}

func TestParseExpressionNot(t *testing.T) {
	want := ast.NewNot(ast.NewFieldAccess("a"))
	assert.Equal(t, want, parseExpr(t, "NOT a"))

	// NOT binds tighter than AND.
	assert.Equal(t,
		ast.NewAnd([]ast.Expr{ast.NewNot(ast.NewFieldAccess("a")), ast.NewFieldAccess("b")}),
		parseExpr(t, "NOT a AND b"))
}

func TestParseExpressionCalls(t *testing.T) {
	assert.Equal(t, ast.NewCall("now", []ast.Expr{}), parseExpr(t, "now()"))
	assert.Equal(t,
		ast.NewCall("count", []ast.Expr{ast.NewFieldAccess("*")}),
		parseExpr(t, "count(*)"))
	assert.Equal(t,
		ast.NewCall("coalesce", []ast.Expr{
			ast.NewFieldAccess("a"),
			ast.NewConstant(int64(0)),
		}),
		parseExpr(t, "coalesce(a, 0)"))
	assert.Equal(t,
		ast.NewCall("f", []ast.Expr{ast.NewCall("g", []ast.Expr{ast.NewFieldAccess("x")})}),
		parseExpr(t, "f(g(x))"))
}

func TestParseExpressionHigherOrderFunctionsRejected(t *testing.T) {
	_, err := ParseExpression("quantile(0.5)(latency)", nil)
	var unsupportedErr *UnsupportedError
	require.ErrorAs(t, err, &unsupportedErr)
	assert.Contains(t, unsupportedErr.Feature, "functions that return functions")
}

func TestParseExpressionPlaceholders(t *testing.T) {
	expr, err := ParseExpression("{foo}", map[string]ast.Expr{"foo": ast.NewConstant(int64(42))})
	require.NoError(t, err)
	assert.Equal(t, ast.NewConstant(int64(42)), expr)

	// Omitting the binding leaves the placeholder unresolved.
	expr, err = ParseExpression("{foo}", nil)
	require.NoError(t, err)
	assert.Equal(t, ast.NewPlaceholder("foo"), expr)

	expr, err = ParseExpression("event = {event_name} AND ts > {start}", map[string]ast.Expr{
		"event_name": ast.NewConstant("$pageview"),
	})
	require.NoError(t, err)
	want := ast.NewAnd([]ast.Expr{
		ast.NewCompareOperation(ast.NewFieldAccess("event"), ast.NewConstant("$pageview"), ast.Eq),
		ast.NewCompareOperation(ast.NewFieldAccess("ts"), ast.NewPlaceholder("start"), ast.Gt),
	})
	assert.Equal(t, want, expr)
}

func TestParseExpressionTrailingComment(t *testing.T) {
	assert.Equal(t, ast.NewConstant(int64(1)), parseExpr(t, "1 -- the one"))
}

func TestParseExpressionUnsupportedConstructs(t *testing.T) {
	tests := []struct {
		input   string
		feature string
	}{
		{"'a' || 'b'", "string concatenation"},
		{"a ? b : c", "ColumnExprTernaryOp"},
		{"-a", "ColumnExprNegate"},
		{"(1, 2)", "ColumnExprTuple"},
		{"[1, 2]", "ColumnExprArray"},
		{"[]", "ColumnExprArray"},
		{"a.1", "ColumnExprTupleAccess"},
		{"CAST(1 AS UInt8)", "ColumnExprCast"},
		{"CASE WHEN a THEN b ELSE c END", "ColumnExprCase"},
		{"CASE x WHEN 1 THEN 2 END", "ColumnExprCase"},
		{"INTERVAL 1 day", "ColumnExprInterval"},
		{"x -> x + 1", "ColumnLambdaExpr"},
		{"(x, y) -> x + y", "ColumnLambdaExpr"},
		{"count() OVER ()", "ColumnExprWinFunction"},
		{"a BETWEEN 1 AND 2", "ColumnExprBetween"},
		{"a NOT BETWEEN 1 AND 2", "ColumnExprBetween"},
		{"a GLOBAL IN b", "IN GLOBAL"},
		{"x IN (1, 2, 3)", "ColumnExprTuple"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseExpression(tt.input, nil)
			var unsupportedErr *UnsupportedError
			require.ErrorAs(t, err, &unsupportedErr)
			assert.Contains(t, unsupportedErr.Feature, tt.feature)
		})
	}
}

func TestParseExpressionSyntaxErrors(t *testing.T) {
	tests := []string{
		"",
		"1 +",
		"(1",
		"a AND",
		"1 2",
		"a.",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseExpression(input, nil)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestParseExpressionSyntaxErrorPosition(t *testing.T) {
	_, err := ParseExpression("1 +\n+ ,", nil)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 2, syntaxErr.Line)
}

func TestParseExpressionDepthBound(t *testing.T) {
	input := ""
	for i := 0; i < 40; i++ {
		input += "("
	}
	input += "1"
	for i := 0; i < 40; i++ {
		input += ")"
	}
	_, err := ParseExpression(input, nil, WithMaxDepth(10))
	var complexityErr *ComplexityError
	require.ErrorAs(t, err, &complexityErr)
	assert.Equal(t, 10, complexityErr.Depth)

	// The same input parses fine under the default bound.
	_, err = ParseExpression(input, nil)
	require.NoError(t, err)
}

func TestParseExpressionIsPureOnError(t *testing.T) {
	// No partial AST ever accompanies an error.
	expr, err := ParseExpression("a GROUP", nil)
	require.Error(t, err)
	assert.Nil(t, expr)
}
