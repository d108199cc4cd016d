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
 * AQL Parser - Grammar
 *
 * Recursive-descent grammar producing the concrete syntax tree consumed by
 * the converter. Precedence is encoded in the call structure: OR binds
 * loosest, then AND, NOT, comparison and membership, additive, multiplicative,
 * unary, and postfix access binds tightest.
 *
 * The grammar recognizes the full surface of the dialect, including
 * constructs the converter rejects by name (CASE, CAST, tuples, lambdas,
 * window functions and so on). Rejection is the converter's job; the grammar
 * only refuses input it cannot shape into a production at all.
 */

package parser

import (
	"fmt"
	"strings"

	"github.com/aqlang/aql/go/parser/cst"
)

type grammar struct {
	tokens   []Token
	pos      int
	depth    int
	maxDepth int
}

func newGrammar(tokens []Token, maxDepth int) *grammar {
	return &grammar{tokens: tokens, maxDepth: maxDepth}
}

// ==============================================================================
// TOKEN CURSOR
// ==============================================================================

func (g *grammar) cur() Token {
	return g.tokens[g.pos]
}

func (g *grammar) lookahead(n int) Token {
	if g.pos+n >= len(g.tokens) {
		return g.tokens[len(g.tokens)-1] // EOF
	}
	return g.tokens[g.pos+n]
}

func (g *grammar) advance() Token {
	tok := g.tokens[g.pos]
	if g.pos < len(g.tokens)-1 {
		g.pos++
	}
	return tok
}

func (g *grammar) matchKeyword(kw string) bool {
	if g.cur().isKeyword(kw) {
		g.advance()
		return true
	}
	return false
}

func (g *grammar) matchOperator(op string) bool {
	if g.cur().isOperator(op) {
		g.advance()
		return true
	}
	return false
}

func (g *grammar) expectKeyword(kw string) error {
	if !g.matchKeyword(kw) {
		return g.syntaxErrorf("expected %s, found %s", kw, g.cur().describe())
	}
	return nil
}

func (g *grammar) expectOperator(op string) error {
	if !g.matchOperator(op) {
		return g.syntaxErrorf("expected %q, found %s", op, g.cur().describe())
	}
	return nil
}

func (g *grammar) expectIdent() (string, error) {
	if g.cur().Type != TokenIdent {
		return "", g.syntaxErrorf("expected identifier, found %s", g.cur().describe())
	}
	return g.advance().Text, nil
}

func (g *grammar) syntaxErrorf(format string, args ...any) error {
	tok := g.cur()
	return &SyntaxError{
		Line:    tok.Line,
		Column:  tok.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

func (g *grammar) syntaxErrorAtCur() error {
	return g.syntaxErrorf("syntax error at or near %s", g.cur().describe())
}

// enter bounds recursion depth; every recursive production calls it through
// one of the parse entry helpers.
func (g *grammar) enter() error {
	g.depth++
	if g.depth > g.maxDepth {
		return &ComplexityError{Depth: g.maxDepth}
	}
	return nil
}

func (g *grammar) leave() {
	g.depth--
}

// ==============================================================================
// ENTRY POINTS
// ==============================================================================

// parseExpressionRoot parses a single column expression spanning the whole
// input.
func (g *grammar) parseExpressionRoot() (cst.Node, error) {
	expr, err := g.parseColumnExpr()
	if err != nil {
		return nil, err
	}
	if g.cur().Type != TokenEOF {
		return nil, g.syntaxErrorAtCur()
	}
	return expr, nil
}

// parseStatementRoot parses a full select statement spanning the whole input.
func (g *grammar) parseStatementRoot() (*cst.SelectUnionStmt, error) {
	stmt, err := g.parseSelectUnionStmt()
	if err != nil {
		return nil, err
	}
	if g.cur().Type != TokenEOF {
		return nil, g.syntaxErrorAtCur()
	}
	return stmt, nil
}

// ==============================================================================
// STATEMENTS
// ==============================================================================

func (g *grammar) parseSelectUnionStmt() (*cst.SelectUnionStmt, error) {
	if err := g.enter(); err != nil {
		return nil, err
	}
	defer g.leave()

	union := &cst.SelectUnionStmt{}
	for {
		branch, err := g.parseSelectStmtWithParens()
		if err != nil {
			return nil, err
		}
		union.Selects = append(union.Selects, branch)
		if !g.matchKeyword("UNION") {
			return union, nil
		}
		if err := g.expectKeyword("ALL"); err != nil {
			return nil, err
		}
	}
}

func (g *grammar) parseSelectStmtWithParens() (*cst.SelectStmtWithParens, error) {
	if g.matchOperator("(") {
		inner, err := g.parseSelectUnionStmt()
		if err != nil {
			return nil, err
		}
		if err := g.expectOperator(")"); err != nil {
			return nil, err
		}
		return &cst.SelectStmtWithParens{Select: inner}, nil
	}
	stmt, err := g.parseSelectStmt()
	if err != nil {
		return nil, err
	}
	return &cst.SelectStmtWithParens{Select: stmt}, nil
}

func (g *grammar) parseSelectStmt() (*cst.SelectStmt, error) {
	stmt := &cst.SelectStmt{}

	if g.matchKeyword("WITH") {
		exprs, err := g.parseColumnExprList()
		if err != nil {
			return nil, err
		}
		stmt.With = &cst.WithClause{Exprs: exprs}
	}

	if err := g.expectKeyword("SELECT"); err != nil {
		return nil, err
	}

	if g.matchKeyword("TOP") {
		if g.cur().Type != TokenNumber {
			return nil, g.syntaxErrorf("expected number after TOP, found %s", g.cur().describe())
		}
		count := g.advance()
		stmt.Top = &cst.TopClause{Count: &cst.Literal{Kind: cst.LiteralNumber, Text: count.Text}}
	}

	columns, err := g.parseProjectionList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = columns

	if g.matchKeyword("FROM") {
		join, err := g.parseJoinExpr()
		if err != nil {
			return nil, err
		}
		stmt.From = &cst.FromClause{Join: join}
	}

	arrayJoin, err := g.parseArrayJoinClause()
	if err != nil {
		return nil, err
	}
	stmt.ArrayJoin = arrayJoin

	if g.matchKeyword("WINDOW") {
		name, err := g.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := g.expectKeyword("AS"); err != nil {
			return nil, err
		}
		if err := g.skipParenthesized(); err != nil {
			return nil, err
		}
		stmt.Window = &cst.WindowClause{Name: name}
	}

	if g.matchKeyword("PREWHERE") {
		expr, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		stmt.Prewhere = &cst.PrewhereClause{Expr: expr}
	}

	if g.matchKeyword("WHERE") {
		expr, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = &cst.WhereClause{Expr: expr}
	}

	if g.matchKeyword("GROUP") {
		if err := g.expectKeyword("BY"); err != nil {
			return nil, err
		}
		exprs, err := g.parseColumnExprList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = &cst.GroupByClause{Exprs: exprs}
	}

	if g.matchKeyword("HAVING") {
		expr, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		stmt.Having = &cst.HavingClause{Expr: expr}
	}

	if g.matchKeyword("ORDER") {
		if err := g.expectKeyword("BY"); err != nil {
			return nil, err
		}
		exprs, err := g.parseOrderExprList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = &cst.OrderByClause{Exprs: exprs}
	}

	if g.matchKeyword("LIMIT") {
		limit, err := g.parseLimitExpr()
		if err != nil {
			return nil, err
		}
		if g.matchKeyword("BY") {
			exprs, err := g.parseColumnExprList()
			if err != nil {
				return nil, err
			}
			stmt.LimitBy = &cst.LimitByClause{Limit: limit, Exprs: exprs}
		} else {
			stmt.Limit = limit
		}
	}

	if g.matchKeyword("SETTINGS") {
		settings, err := g.parseSettingsClause()
		if err != nil {
			return nil, err
		}
		stmt.Settings = settings
	}

	return stmt, nil
}

func (g *grammar) parseArrayJoinClause() (*cst.ArrayJoinClause, error) {
	// (LEFT | INNER)? ARRAY JOIN; the prefix keyword must only be consumed
	// when ARRAY actually follows, otherwise it belongs to a join.
	prefixed := g.cur().isKeyword("LEFT") || g.cur().isKeyword("INNER")
	if prefixed && !g.lookahead(1).isKeyword("ARRAY") {
		return nil, nil
	}
	if !prefixed && !g.cur().isKeyword("ARRAY") {
		return nil, nil
	}
	if prefixed {
		g.advance()
	}
	if err := g.expectKeyword("ARRAY"); err != nil {
		return nil, err
	}
	if err := g.expectKeyword("JOIN"); err != nil {
		return nil, err
	}
	exprs, err := g.parseColumnExprList()
	if err != nil {
		return nil, err
	}
	return &cst.ArrayJoinClause{Exprs: exprs}, nil
}

func (g *grammar) parseOrderExprList() (*cst.ColumnExprList, error) {
	list := &cst.ColumnExprList{}
	for {
		expr, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		// Direction markers are recognized and dropped; ORDER BY never
		// reaches the AST.
		if !g.matchKeyword("ASC") {
			g.matchKeyword("DESC")
		}
		list.Items = append(list.Items, &cst.ColumnsExprColumn{Expr: expr})
		if !g.matchOperator(",") {
			return list, nil
		}
	}
}

func (g *grammar) parseLimitExpr() (*cst.LimitClause, error) {
	limit, err := g.parseColumnExpr()
	if err != nil {
		return nil, err
	}
	clause := &cst.LimitClause{Limit: limit}
	if g.matchOperator(",") || g.matchKeyword("OFFSET") {
		offset, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		clause.Offset = offset
	}
	return clause, nil
}

func (g *grammar) parseSettingsClause() (*cst.SettingsClause, error) {
	settings := &cst.SettingsClause{}
	for {
		name, err := g.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := g.expectOperator("="); err != nil {
			return nil, err
		}
		switch g.cur().Type {
		case TokenNumber, TokenString, TokenIdent:
			g.advance()
		default:
			return nil, g.syntaxErrorf("expected setting value, found %s", g.cur().describe())
		}
		settings.Names = append(settings.Names, name)
		if !g.matchOperator(",") {
			return settings, nil
		}
	}
}

// ==============================================================================
// JOINS
// ==============================================================================

var joinOpKeywords = map[string]struct{}{
	"INNER": {}, "LEFT": {}, "RIGHT": {}, "FULL": {}, "OUTER": {},
	"ALL": {}, "ANY": {}, "ANTI": {}, "SEMI": {}, "ASOF": {},
}

func (g *grammar) atJoinOperator() bool {
	tok := g.cur()
	if tok.Type != TokenKeyword {
		return false
	}
	if tok.Text == "JOIN" || tok.Text == "CROSS" || tok.Text == "GLOBAL" || tok.Text == "LOCAL" {
		return true
	}
	if _, ok := joinOpKeywords[tok.Text]; ok {
		// LEFT/INNER may instead begin an ARRAY JOIN clause.
		return !g.lookahead(1).isKeyword("ARRAY")
	}
	return false
}

func (g *grammar) parseJoinExpr() (cst.Node, error) {
	if err := g.enter(); err != nil {
		return nil, err
	}
	defer g.leave()

	left, err := g.parseJoinFactor()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case g.matchOperator(","):
			right, err := g.parseJoinFactor()
			if err != nil {
				return nil, err
			}
			left = &cst.JoinExprCrossOp{Left: left, Right: right}

		case g.atJoinOperator():
			var global, local bool
			if g.matchKeyword("GLOBAL") {
				global = true
			} else if g.matchKeyword("LOCAL") {
				local = true
			}
			if g.matchKeyword("CROSS") {
				if err := g.expectKeyword("JOIN"); err != nil {
					return nil, err
				}
				right, err := g.parseJoinFactor()
				if err != nil {
					return nil, err
				}
				left = &cst.JoinExprCrossOp{Left: left, Right: right}
				continue
			}
			op, err := g.parseJoinOp()
			if err != nil {
				return nil, err
			}
			if err := g.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
			right, err := g.parseJoinFactor()
			if err != nil {
				return nil, err
			}
			constraint, err := g.parseJoinConstraint()
			if err != nil {
				return nil, err
			}
			left = &cst.JoinExprOp{
				Left:       left,
				Right:      right,
				Op:         op,
				Constraint: constraint,
				Global:     global,
				Local:      local,
			}

		default:
			return left, nil
		}
	}
}

// parseJoinOp collects join modifier keywords up to the JOIN keyword and
// classifies them into one of the three operator productions. A bare JOIN
// yields nil.
func (g *grammar) parseJoinOp() (cst.Node, error) {
	flags := map[string]bool{}
	for {
		tok := g.cur()
		if tok.Type != TokenKeyword {
			break
		}
		if _, ok := joinOpKeywords[tok.Text]; !ok {
			break
		}
		if flags[tok.Text] {
			return nil, g.syntaxErrorf("duplicate join modifier %s", tok.Text)
		}
		flags[tok.Text] = true
		g.advance()
	}
	switch {
	case len(flags) == 0:
		return nil, nil
	case flags["INNER"]:
		return &cst.JoinOpInner{
			All:  flags["ALL"],
			Anti: flags["ANTI"],
			Any:  flags["ANY"],
			Asof: flags["ASOF"],
		}, nil
	case flags["FULL"]:
		return &cst.JoinOpFull{
			Outer: flags["OUTER"],
			All:   flags["ALL"],
			Any:   flags["ANY"],
		}, nil
	default:
		return &cst.JoinOpLeftRight{
			Left:  flags["LEFT"],
			Right: flags["RIGHT"],
			Outer: flags["OUTER"],
			Semi:  flags["SEMI"],
			All:   flags["ALL"],
			Anti:  flags["ANTI"],
			Any:   flags["ANY"],
			Asof:  flags["ASOF"],
		}, nil
	}
}

func (g *grammar) parseJoinConstraint() (*cst.JoinConstraintClause, error) {
	switch {
	case g.matchKeyword("ON"):
		exprs, err := g.parseColumnExprList()
		if err != nil {
			return nil, err
		}
		return &cst.JoinConstraintClause{Exprs: exprs}, nil
	case g.matchKeyword("USING"):
		parens := g.matchOperator("(")
		exprs, err := g.parseColumnExprList()
		if err != nil {
			return nil, err
		}
		if parens {
			if err := g.expectOperator(")"); err != nil {
				return nil, err
			}
		}
		return &cst.JoinConstraintClause{Using: true, Exprs: exprs}, nil
	default:
		return nil, g.syntaxErrorf("expected ON or USING, found %s", g.cur().describe())
	}
}

// parseJoinFactor parses one term of a join chain: a table expression or a
// parenthesized join. A parenthesis followed by SELECT or WITH is a
// subquery table, not join grouping.
func (g *grammar) parseJoinFactor() (cst.Node, error) {
	if g.cur().isOperator("(") && !g.atSubquery() {
		g.advance()
		inner, err := g.parseJoinExpr()
		if err != nil {
			return nil, err
		}
		if err := g.expectOperator(")"); err != nil {
			return nil, err
		}
		return &cst.JoinExprParens{Join: inner}, nil
	}
	return g.parseJoinTable()
}

// atSubquery reports whether the cursor sits on a parenthesized select.
func (g *grammar) atSubquery() bool {
	if !g.cur().isOperator("(") {
		return false
	}
	for n := 1; ; n++ {
		tok := g.lookahead(n)
		if !tok.isOperator("(") {
			return tok.isKeyword("SELECT") || tok.isKeyword("WITH")
		}
	}
}

func (g *grammar) parseJoinTable() (cst.Node, error) {
	table, err := g.parseTableExpr()
	if err != nil {
		return nil, err
	}
	final := g.matchKeyword("FINAL")
	var sample *cst.SampleClause
	if g.matchKeyword("SAMPLE") {
		if err := g.skipSampleBody(); err != nil {
			return nil, err
		}
		sample = &cst.SampleClause{}
	}
	return &cst.JoinExprTable{Table: table, Final: final, Sample: sample}, nil
}

func (g *grammar) parseTableExpr() (cst.Node, error) {
	var table cst.Node

	switch {
	case g.atSubquery():
		g.advance() // '('
		inner, err := g.parseSelectUnionStmt()
		if err != nil {
			return nil, err
		}
		if err := g.expectOperator(")"); err != nil {
			return nil, err
		}
		table = &cst.TableExprSubquery{Select: inner}

	case g.cur().Type == TokenIdent:
		name := g.advance().Text
		switch {
		case g.cur().isOperator("("):
			if err := g.skipParenthesized(); err != nil {
				return nil, err
			}
			table = &cst.TableExprFunction{Name: name}
		case g.cur().isOperator(".") && g.lookahead(1).Type == TokenIdent:
			g.advance()
			inner, err := g.expectIdent()
			if err != nil {
				return nil, err
			}
			table = &cst.TableExprIdentifier{Table: &cst.TableIdentifier{Database: name, Name: inner}}
		default:
			table = &cst.TableExprIdentifier{Table: &cst.TableIdentifier{Name: name}}
		}

	default:
		return nil, g.syntaxErrorf("expected table expression, found %s", g.cur().describe())
	}

	if g.matchKeyword("AS") {
		alias, err := g.expectIdent()
		if err != nil {
			return nil, err
		}
		return &cst.TableExprAlias{Table: table, Alias: alias}, nil
	}
	if g.cur().Type == TokenIdent {
		return &cst.TableExprAlias{Table: table, Alias: g.advance().Text}, nil
	}
	return table, nil
}

// skipSampleBody consumes the numeric body of a SAMPLE clause. The clause is
// unsupported downstream, so only its token shape matters here.
func (g *grammar) skipSampleBody() error {
	if g.cur().Type != TokenNumber {
		return g.syntaxErrorf("expected number after SAMPLE, found %s", g.cur().describe())
	}
	g.advance()
	if g.matchOperator("/") {
		if g.cur().Type != TokenNumber {
			return g.syntaxErrorf("expected number in SAMPLE ratio, found %s", g.cur().describe())
		}
		g.advance()
	}
	if g.matchKeyword("OFFSET") {
		if g.cur().Type != TokenNumber {
			return g.syntaxErrorf("expected number after SAMPLE OFFSET, found %s", g.cur().describe())
		}
		g.advance()
		if g.matchOperator("/") {
			if g.cur().Type != TokenNumber {
				return g.syntaxErrorf("expected number in SAMPLE ratio, found %s", g.cur().describe())
			}
			g.advance()
		}
	}
	return nil
}

// skipParenthesized consumes a balanced parenthesized token run, used for
// clause bodies that exist only to be named in an unsupported-feature error.
func (g *grammar) skipParenthesized() error {
	if err := g.expectOperator("("); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		tok := g.cur()
		switch {
		case tok.Type == TokenEOF:
			return g.syntaxErrorf("expected \")\", found end of input")
		case tok.isOperator("("):
			depth++
		case tok.isOperator(")"):
			depth--
		}
		g.advance()
	}
	return nil
}

// ==============================================================================
// PROJECTION LISTS
// ==============================================================================

func (g *grammar) parseProjectionList() (*cst.ColumnExprList, error) {
	list := &cst.ColumnExprList{}
	for {
		item, err := g.parseProjectionItem()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
		if !g.matchOperator(",") {
			return list, nil
		}
	}
}

func (g *grammar) parseProjectionItem() (cst.Node, error) {
	if g.cur().isOperator("*") {
		g.advance()
		return &cst.ColumnsExprAsterisk{}, nil
	}
	if g.atSubquery() {
		g.advance() // '('
		inner, err := g.parseSelectUnionStmt()
		if err != nil {
			return nil, err
		}
		if err := g.expectOperator(")"); err != nil {
			return nil, err
		}
		return &cst.ColumnsExprSubquery{Select: inner}, nil
	}
	expr, err := g.parseColumnExpr()
	if err != nil {
		return nil, err
	}
	if g.matchKeyword("AS") {
		alias, err := g.expectIdent()
		if err != nil {
			return nil, err
		}
		return &cst.ColumnsExprColumn{Expr: &cst.ColumnExprAlias{Expr: expr, Alias: alias}}, nil
	}
	if g.cur().Type == TokenIdent {
		alias := g.advance().Text
		return &cst.ColumnsExprColumn{Expr: &cst.ColumnExprAlias{Expr: expr, Alias: alias}}, nil
	}
	return &cst.ColumnsExprColumn{Expr: expr}, nil
}

func (g *grammar) parseColumnExprList() (*cst.ColumnExprList, error) {
	list := &cst.ColumnExprList{}
	for {
		expr, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		if g.matchKeyword("AS") {
			// Aliases inside expression lists (CTE bodies included) are
			// recognized so the enclosing clause can be rejected by name.
			if g.cur().isOperator("(") {
				if err := g.skipParenthesized(); err != nil {
					return nil, err
				}
				expr = &cst.ColumnExprAlias{Expr: expr}
			} else {
				alias, err := g.expectIdent()
				if err != nil {
					return nil, err
				}
				expr = &cst.ColumnExprAlias{Expr: expr, Alias: alias}
			}
		}
		list.Items = append(list.Items, &cst.ColumnsExprColumn{Expr: expr})
		if !g.matchOperator(",") {
			return list, nil
		}
	}
}

// ==============================================================================
// COLUMN EXPRESSIONS
// ==============================================================================

func (g *grammar) parseColumnExpr() (cst.Node, error) {
	if err := g.enter(); err != nil {
		return nil, err
	}
	defer g.leave()

	cond, err := g.parseOrExpr()
	if err != nil {
		return nil, err
	}
	if !g.matchOperator("?") {
		return cond, nil
	}
	thenExpr, err := g.parseColumnExpr()
	if err != nil {
		return nil, err
	}
	if err := g.expectOperator(":"); err != nil {
		return nil, err
	}
	elseExpr, err := g.parseColumnExpr()
	if err != nil {
		return nil, err
	}
	return &cst.ColumnExprTernaryOp{Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

func (g *grammar) parseOrExpr() (cst.Node, error) {
	left, err := g.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for g.matchKeyword("OR") {
		right, err := g.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &cst.ColumnExprOr{Left: left, Right: right}
	}
	return left, nil
}

func (g *grammar) parseAndExpr() (cst.Node, error) {
	left, err := g.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for g.matchKeyword("AND") {
		right, err := g.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = &cst.ColumnExprAnd{Left: left, Right: right}
	}
	return left, nil
}

func (g *grammar) parseNotExpr() (cst.Node, error) {
	if g.matchKeyword("NOT") {
		if err := g.enter(); err != nil {
			return nil, err
		}
		defer g.leave()
		expr, err := g.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return &cst.ColumnExprNot{Expr: expr}, nil
	}
	return g.parseCompareExpr()
}

var compareOperators = map[string]struct{}{
	"=": {}, "==": {}, "!=": {}, "<>": {}, "<": {}, "<=": {}, ">": {}, ">=": {},
}

func (g *grammar) parseCompareExpr() (cst.Node, error) {
	left, err := g.parseAdditiveExpr()
	if err != nil {
		return nil, err
	}
	for {
		tok := g.cur()
		switch {
		case tok.isKeyword("IS"):
			g.advance()
			not := g.matchKeyword("NOT")
			if err := g.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			left = &cst.ColumnExprIsNull{Expr: left, Not: not}

		case tok.Type == TokenOperator && hasCompareOperator(tok.Text):
			g.advance()
			right, err := g.parseAdditiveExpr()
			if err != nil {
				return nil, err
			}
			left = &cst.ColumnExprPrecedence3{Left: left, Right: right, Operator: tok.Text}

		case tok.isKeyword("LIKE") || tok.isKeyword("ILIKE"):
			g.advance()
			right, err := g.parseAdditiveExpr()
			if err != nil {
				return nil, err
			}
			left = &cst.ColumnExprPrecedence3{Left: left, Right: right, Operator: tok.Text}

		case tok.isKeyword("IN"):
			g.advance()
			right, err := g.parseAdditiveExpr()
			if err != nil {
				return nil, err
			}
			left = &cst.ColumnExprPrecedence3{Left: left, Right: right, Operator: "IN"}

		case tok.isKeyword("GLOBAL") && (g.lookahead(1).isKeyword("IN") || g.lookahead(1).isKeyword("NOT")):
			g.advance()
			not := g.matchKeyword("NOT")
			if err := g.expectKeyword("IN"); err != nil {
				return nil, err
			}
			right, err := g.parseAdditiveExpr()
			if err != nil {
				return nil, err
			}
			left = &cst.ColumnExprPrecedence3{Left: left, Right: right, Operator: "IN", Not: not, Global: true}

		case tok.isKeyword("BETWEEN"):
			g.advance()
			node, err := g.parseBetweenTail(left, false)
			if err != nil {
				return nil, err
			}
			left = node

		case tok.isKeyword("NOT"):
			// Postfix NOT only continues a comparison (NOT LIKE, NOT ILIKE,
			// NOT IN, NOT BETWEEN); anything else ends the expression.
			next := g.lookahead(1)
			switch {
			case next.isKeyword("LIKE") || next.isKeyword("ILIKE"):
				g.advance()
				op := g.advance().Text
				right, err := g.parseAdditiveExpr()
				if err != nil {
					return nil, err
				}
				left = &cst.ColumnExprPrecedence3{Left: left, Right: right, Operator: op, Not: true}
			case next.isKeyword("IN"):
				g.advance()
				g.advance()
				right, err := g.parseAdditiveExpr()
				if err != nil {
					return nil, err
				}
				left = &cst.ColumnExprPrecedence3{Left: left, Right: right, Operator: "IN", Not: true}
			case next.isKeyword("BETWEEN"):
				g.advance()
				g.advance()
				node, err := g.parseBetweenTail(left, true)
				if err != nil {
					return nil, err
				}
				left = node
			default:
				return left, nil
			}

		default:
			return left, nil
		}
	}
}

func hasCompareOperator(op string) bool {
	_, ok := compareOperators[op]
	return ok
}

func (g *grammar) parseBetweenTail(expr cst.Node, not bool) (cst.Node, error) {
	low, err := g.parseAdditiveExpr()
	if err != nil {
		return nil, err
	}
	if err := g.expectKeyword("AND"); err != nil {
		return nil, err
	}
	high, err := g.parseAdditiveExpr()
	if err != nil {
		return nil, err
	}
	return &cst.ColumnExprBetween{Expr: expr, Not: not, Low: low, High: high}, nil
}

func (g *grammar) parseAdditiveExpr() (cst.Node, error) {
	left, err := g.parseMultiplicativeExpr()
	if err != nil {
		return nil, err
	}
	for {
		tok := g.cur()
		if !tok.isOperator("+") && !tok.isOperator("-") && !tok.isOperator("||") {
			return left, nil
		}
		g.advance()
		right, err := g.parseMultiplicativeExpr()
		if err != nil {
			return nil, err
		}
		left = &cst.ColumnExprPrecedence2{Left: left, Right: right, Operator: tok.Text}
	}
}

func (g *grammar) parseMultiplicativeExpr() (cst.Node, error) {
	left, err := g.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		tok := g.cur()
		if !tok.isOperator("*") && !tok.isOperator("/") && !tok.isOperator("%") {
			return left, nil
		}
		g.advance()
		right, err := g.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		left = &cst.ColumnExprPrecedence1{Left: left, Right: right, Operator: tok.Text}
	}
}

func (g *grammar) parseUnaryExpr() (cst.Node, error) {
	// A sign directly before a number literal folds into the literal, the
	// way the grammar's numberLiteral production carries its optional sign.
	if g.cur().isOperator("-") || g.cur().isOperator("+") {
		sign := g.cur().Text
		if g.lookahead(1).Type == TokenNumber {
			g.advance()
			num := g.advance()
			return &cst.Literal{Kind: cst.LiteralNumber, Text: sign + num.Text}, nil
		}
		if sign == "-" {
			if err := g.enter(); err != nil {
				return nil, err
			}
			defer g.leave()
			g.advance()
			expr, err := g.parseUnaryExpr()
			if err != nil {
				return nil, err
			}
			return &cst.ColumnExprNegate{Expr: expr}, nil
		}
		return nil, g.syntaxErrorAtCur()
	}
	return g.parsePostfixExpr()
}

func (g *grammar) parsePostfixExpr() (cst.Node, error) {
	expr, err := g.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case g.cur().isOperator("["):
			g.advance()
			index, err := g.parseColumnExpr()
			if err != nil {
				return nil, err
			}
			if err := g.expectOperator("]"); err != nil {
				return nil, err
			}
			expr = &cst.ColumnExprArrayAccess{Object: expr, Index: index}

		case g.cur().isOperator(".") && g.lookahead(1).Type == TokenNumber:
			g.advance()
			index := g.advance()
			expr = &cst.ColumnExprTupleAccess{Object: expr, Index: index.Text}

		// "a.1" lexes the ".1" as a single numeric token, so the tuple
		// element index arrives glued to its leading dot.
		case g.cur().Type == TokenNumber && strings.HasPrefix(g.cur().Text, "."):
			index := g.advance()
			expr = &cst.ColumnExprTupleAccess{Object: expr, Index: index.Text[1:]}

		case g.cur().isKeyword("OVER"):
			g.advance()
			if err := g.skipParenthesized(); err != nil {
				return nil, err
			}
			expr = &cst.ColumnExprWinFunction{Call: expr}

		default:
			return expr, nil
		}
	}
}

func (g *grammar) parsePrimaryExpr() (cst.Node, error) {
	tok := g.cur()
	switch {
	case tok.Type == TokenNumber:
		g.advance()
		return &cst.Literal{Kind: cst.LiteralNumber, Text: tok.Text}, nil

	case tok.Type == TokenString:
		g.advance()
		return &cst.Literal{Kind: cst.LiteralString, Text: tok.Text}, nil

	case tok.isKeyword("NULL"):
		g.advance()
		return &cst.Literal{Kind: cst.LiteralNull}, nil

	case tok.Type == TokenPlaceholder:
		g.advance()
		return &cst.ColumnExprPlaceholder{Name: tok.Text}, nil

	case tok.isOperator("*"):
		g.advance()
		return &cst.ColumnExprAsterisk{}, nil

	case tok.isKeyword("CASE"):
		return g.parseCaseExpr()

	case tok.isKeyword("INTERVAL"):
		g.advance()
		expr, err := g.parseAdditiveExpr()
		if err != nil {
			return nil, err
		}
		unit, err := g.expectIdent()
		if err != nil {
			return nil, err
		}
		return &cst.ColumnExprInterval{Expr: expr, Unit: unit}, nil

	case tok.isKeyword("CAST"):
		return g.parseCastExpr()

	case tok.isOperator("("):
		return g.parseParenExpr()

	case tok.isOperator("["):
		return g.parseArrayLiteral()

	case tok.Type == TokenIdent:
		return g.parseIdentifierExpr()

	default:
		return nil, g.syntaxErrorAtCur()
	}
}

func (g *grammar) parseCaseExpr() (cst.Node, error) {
	g.advance() // CASE
	if !g.cur().isKeyword("WHEN") {
		if _, err := g.parseColumnExpr(); err != nil {
			return nil, err
		}
	}
	for g.matchKeyword("WHEN") {
		if _, err := g.parseColumnExpr(); err != nil {
			return nil, err
		}
		if err := g.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		if _, err := g.parseColumnExpr(); err != nil {
			return nil, err
		}
	}
	if g.matchKeyword("ELSE") {
		if _, err := g.parseColumnExpr(); err != nil {
			return nil, err
		}
	}
	if err := g.expectKeyword("END"); err != nil {
		return nil, err
	}
	return &cst.ColumnExprCase{}, nil
}

func (g *grammar) parseCastExpr() (cst.Node, error) {
	g.advance() // CAST
	if err := g.expectOperator("("); err != nil {
		return nil, err
	}
	expr, err := g.parseColumnExpr()
	if err != nil {
		return nil, err
	}
	if err := g.expectKeyword("AS"); err != nil {
		return nil, err
	}
	typeName, err := g.expectIdent()
	if err != nil {
		return nil, err
	}
	if g.cur().isOperator("(") {
		if err := g.skipParenthesized(); err != nil {
			return nil, err
		}
	}
	if err := g.expectOperator(")"); err != nil {
		return nil, err
	}
	return &cst.ColumnExprCast{Expr: expr, TypeName: typeName}, nil
}

// parseParenExpr handles every '(' form in expression position: subquery,
// grouping, tuple, and parenthesized lambda parameters.
func (g *grammar) parseParenExpr() (cst.Node, error) {
	if g.atSubquery() {
		g.advance()
		inner, err := g.parseSelectUnionStmt()
		if err != nil {
			return nil, err
		}
		if err := g.expectOperator(")"); err != nil {
			return nil, err
		}
		return &cst.ColumnExprSubquery{Select: inner}, nil
	}

	g.advance() // '('
	var items []cst.Node
	for {
		expr, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, expr)
		if !g.matchOperator(",") {
			break
		}
	}
	if err := g.expectOperator(")"); err != nil {
		return nil, err
	}

	if g.matchOperator("->") {
		params, err := g.lambdaParams(items)
		if err != nil {
			return nil, err
		}
		body, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		return &cst.ColumnLambdaExpr{Params: params, Body: body}, nil
	}

	if len(items) == 1 {
		return &cst.ColumnExprParens{Expr: items[0]}, nil
	}
	return &cst.ColumnExprTuple{Items: &cst.ColumnExprList{Items: items}}, nil
}

// lambdaParams validates that a parenthesized list before "->" is a plain
// identifier list.
func (g *grammar) lambdaParams(items []cst.Node) ([]string, error) {
	params := make([]string, len(items))
	for i, item := range items {
		ident, ok := item.(*cst.ColumnIdentifier)
		if !ok || len(ident.Nested.Parts) != 1 {
			return nil, g.syntaxErrorf("lambda parameters must be identifiers")
		}
		params[i] = ident.Nested.Parts[0]
	}
	return params, nil
}

func (g *grammar) parseArrayLiteral() (cst.Node, error) {
	g.advance() // '['
	list := &cst.ColumnExprList{}
	if !g.cur().isOperator("]") {
		for {
			expr, err := g.parseColumnExpr()
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, &cst.ColumnsExprColumn{Expr: expr})
			if !g.matchOperator(",") {
				break
			}
		}
	}
	if err := g.expectOperator("]"); err != nil {
		return nil, err
	}
	return &cst.ColumnExprArray{Items: list}, nil
}

// parseIdentifierExpr handles everything that starts with a bare identifier:
// lambdas, function calls, and dotted column references.
func (g *grammar) parseIdentifierExpr() (cst.Node, error) {
	name := g.advance().Text

	if g.matchOperator("->") {
		body, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		return &cst.ColumnLambdaExpr{Params: []string{name}, Body: body}, nil
	}

	if g.cur().isOperator("(") {
		return g.parseFunctionCall(name)
	}

	parts := []string{name}
	for g.cur().isOperator(".") && g.lookahead(1).Type == TokenIdent {
		g.advance()
		parts = append(parts, g.advance().Text)
	}
	return &cst.ColumnIdentifier{Nested: &cst.NestedIdentifier{Parts: parts}}, nil
}

func (g *grammar) parseFunctionCall(name string) (cst.Node, error) {
	first, err := g.parseArgList()
	if err != nil {
		return nil, err
	}
	if g.cur().isOperator("(") {
		// Two argument lists: f(params)(args), the higher-order call form.
		second, err := g.parseArgList()
		if err != nil {
			return nil, err
		}
		return &cst.ColumnExprFunction{
			Name:   name,
			Params: &cst.ColumnExprList{Items: paramItems(first)},
			Args:   second,
		}, nil
	}
	return &cst.ColumnExprFunction{Name: name, Args: first}, nil
}

func paramItems(args *cst.ColumnArgList) []cst.Node {
	items := make([]cst.Node, len(args.Items))
	copy(items, args.Items)
	return items
}

func (g *grammar) parseArgList() (*cst.ColumnArgList, error) {
	if err := g.expectOperator("("); err != nil {
		return nil, err
	}
	list := &cst.ColumnArgList{}
	if g.matchOperator(")") {
		return list, nil
	}
	for {
		arg, err := g.parseColumnExpr()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, arg)
		if !g.matchOperator(",") {
			break
		}
	}
	if err := g.expectOperator(")"); err != nil {
		return nil, err
	}
	return list, nil
}
