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

// Package cst defines the concrete syntax tree handed from the grammar to
// the converter. There is one node type per grammar production, including
// productions the converter recognizes only to reject by name; which
// productions exist is the auditable boundary of the language surface.
//
// CST nodes carry surface detail (token text, clause presence) and no
// semantics. They are built by the recursive-descent grammar in the parent
// package and consumed exactly once by the converter.
package cst

// Node is implemented by every CST node. Production returns the grammar
// production name, used in diagnostics.
type Node interface {
	Production() string
}

// ==============================================================================
// STATEMENT PRODUCTIONS
// ==============================================================================

// SelectUnionStmt is the top-level statement wrapper. The grammar always
// produces one, even for a single SELECT with no UNION ALL.
type SelectUnionStmt struct {
	Selects []*SelectStmtWithParens
}

// SelectStmtWithParens is one union branch: either a bare select statement
// or a parenthesized union.
type SelectStmtWithParens struct {
	Select Node // *SelectStmt or *SelectUnionStmt
}

// SelectStmt is a full select statement with every optional clause the
// grammar recognizes, supported or not.
type SelectStmt struct {
	With      *WithClause
	Top       *TopClause
	Columns   *ColumnExprList
	From      *FromClause
	ArrayJoin *ArrayJoinClause
	Window    *WindowClause
	Prewhere  *PrewhereClause
	Where     *WhereClause
	GroupBy   *GroupByClause
	Having    *HavingClause
	OrderBy   *OrderByClause
	LimitBy   *LimitByClause
	Limit     *LimitClause
	Settings  *SettingsClause
}

type WithClause struct{ Exprs *ColumnExprList }
type TopClause struct{ Count Node }
type FromClause struct{ Join Node }
type ArrayJoinClause struct{ Exprs *ColumnExprList }
type WindowClause struct{ Name string }
type PrewhereClause struct{ Expr Node }
type WhereClause struct{ Expr Node }
type GroupByClause struct{ Exprs *ColumnExprList }
type HavingClause struct{ Expr Node }
type OrderByClause struct{ Exprs *ColumnExprList }
type LimitByClause struct {
	Limit *LimitClause
	Exprs *ColumnExprList
}
type LimitClause struct {
	Limit  Node
	Offset Node // nil unless a second positional expression was present
}
type SettingsClause struct{ Names []string }

// ==============================================================================
// JOIN PRODUCTIONS
// ==============================================================================

// JoinExprOp is a binary join: left-associative pair of join expressions
// with an operator and a constraint.
type JoinExprOp struct {
	Left       Node
	Right      Node
	Op         Node // *JoinOpInner, *JoinOpLeftRight or *JoinOpFull; nil for bare JOIN
	Constraint *JoinConstraintClause
	Global     bool
	Local      bool
}

// JoinExprTable is a table term of a join chain.
type JoinExprTable struct {
	Table  Node
	Final  bool
	Sample *SampleClause
}

// JoinExprParens is a parenthesized join expression.
type JoinExprParens struct{ Join Node }

// JoinExprCrossOp is a CROSS JOIN or comma join pair.
type JoinExprCrossOp struct {
	Left  Node
	Right Node
}

type JoinOpInner struct {
	All  bool
	Anti bool
	Any  bool
	Asof bool
}

type JoinOpLeftRight struct {
	Left  bool
	Right bool
	Outer bool
	Semi  bool
	All   bool
	Anti  bool
	Any   bool
	Asof  bool
}

type JoinOpFull struct {
	Outer bool
	All   bool
	Any   bool
}

// JoinConstraintClause is ON <exprs> or USING <exprs>.
type JoinConstraintClause struct {
	Using bool
	Exprs *ColumnExprList
}

type SampleClause struct{}

// ==============================================================================
// TABLE PRODUCTIONS
// ==============================================================================

type TableExprIdentifier struct{ Table *TableIdentifier }
type TableExprSubquery struct{ Select *SelectUnionStmt }
type TableExprAlias struct {
	Table Node
	Alias string
}
type TableExprFunction struct{ Name string }

// TableIdentifier is an optionally database-qualified table name.
type TableIdentifier struct {
	Database string
	Name     string
}

// ==============================================================================
// COLUMN EXPRESSION PRODUCTIONS
// ==============================================================================

// ColumnExprList is a comma-separated projection or argument list.
type ColumnExprList struct {
	Items []Node
}

type ColumnsExprAsterisk struct{}
type ColumnsExprSubquery struct{ Select *SelectUnionStmt }
type ColumnsExprColumn struct{ Expr Node }

// ColumnExprPrecedence1 is a multiplicative operation (*, /, %).
type ColumnExprPrecedence1 struct {
	Left     Node
	Right    Node
	Operator string
}

// ColumnExprPrecedence2 is an additive operation (+, -) or string
// concatenation (||).
type ColumnExprPrecedence2 struct {
	Left     Node
	Right    Node
	Operator string
}

// ColumnExprPrecedence3 is a comparison or membership operation.
type ColumnExprPrecedence3 struct {
	Left     Node
	Right    Node
	Operator string // "=", "==", "!=", "<>", "<", "<=", ">", ">=", "LIKE", "ILIKE", "IN"
	Not      bool   // NOT LIKE, NOT ILIKE, NOT IN
	Global   bool   // GLOBAL IN
}

type ColumnExprAnd struct{ Left, Right Node }
type ColumnExprOr struct{ Left, Right Node }
type ColumnExprNot struct{ Expr Node }

// ColumnExprIsNull is x IS [NOT] NULL.
type ColumnExprIsNull struct {
	Expr Node
	Not  bool
}

// ColumnExprArrayAccess is expr[key].
type ColumnExprArrayAccess struct {
	Object Node
	Index  Node
}

// ColumnExprTupleAccess is expr.N with a literal integer N.
type ColumnExprTupleAccess struct {
	Object Node
	Index  string
}

type ColumnExprParens struct{ Expr Node }
type ColumnExprTernaryOp struct{ Cond, Then, Else Node }
type ColumnExprAlias struct {
	Expr  Node
	Alias string
}
type ColumnExprNegate struct{ Expr Node }
type ColumnExprSubquery struct{ Select *SelectUnionStmt }
type ColumnExprArray struct{ Items *ColumnExprList }
type ColumnExprTuple struct{ Items *ColumnExprList }
type ColumnExprCast struct {
	Expr     Node
	TypeName string
}
type ColumnExprCase struct{}
type ColumnExprInterval struct {
	Expr Node
	Unit string
}
type ColumnExprBetween struct {
	Expr Node
	Not  bool
	Low  Node
	High Node
}
type ColumnExprWinFunction struct{ Call Node }
type ColumnLambdaExpr struct {
	Params []string
	Body   Node
}

// ColumnExprFunction is a function call. Params is the optional first
// parameter list of the two-list form f(params)(args); its presence marks a
// higher-order call.
type ColumnExprFunction struct {
	Name   string
	Params *ColumnExprList
	Args   *ColumnArgList
}

// ColumnArgList is a function argument list.
type ColumnArgList struct {
	Items []Node
}

type ColumnExprAsterisk struct{}

// ColumnExprPlaceholder is a {name} template hole.
type ColumnExprPlaceholder struct{ Name string }

// ColumnIdentifier is a possibly dotted column reference. The grammar does
// not resolve which leading segments name a table; the converter merges the
// whole path.
type ColumnIdentifier struct {
	Nested *NestedIdentifier
}

// NestedIdentifier is a dotted identifier path; Parts has at least one
// element.
type NestedIdentifier struct {
	Parts []string
}

// ==============================================================================
// LITERAL PRODUCTIONS
// ==============================================================================

type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralNumber
	LiteralString
)

// Literal is a literal token. Text is the raw source text: for numbers the
// digits (with an optional leading sign already folded in), for strings the
// quoted form before unescaping.
type Literal struct {
	Kind LiteralKind
	Text string
}

// ==============================================================================
// PRODUCTION NAMES
// ==============================================================================

func (*SelectUnionStmt) Production() string       { return "SelectUnionStmt" }
func (*SelectStmtWithParens) Production() string  { return "SelectStmtWithParens" }
func (*SelectStmt) Production() string            { return "SelectStmt" }
func (*WithClause) Production() string            { return "WithClause" }
func (*TopClause) Production() string             { return "TopClause" }
func (*FromClause) Production() string            { return "FromClause" }
func (*ArrayJoinClause) Production() string       { return "ArrayJoinClause" }
func (*WindowClause) Production() string          { return "WindowClause" }
func (*PrewhereClause) Production() string        { return "PrewhereClause" }
func (*WhereClause) Production() string           { return "WhereClause" }
func (*GroupByClause) Production() string         { return "GroupByClause" }
func (*HavingClause) Production() string          { return "HavingClause" }
func (*OrderByClause) Production() string         { return "OrderByClause" }
func (*LimitByClause) Production() string         { return "LimitByClause" }
func (*LimitClause) Production() string           { return "LimitClause" }
func (*SettingsClause) Production() string        { return "SettingsClause" }
func (*JoinExprOp) Production() string            { return "JoinExprOp" }
func (*JoinExprTable) Production() string         { return "JoinExprTable" }
func (*JoinExprParens) Production() string        { return "JoinExprParens" }
func (*JoinExprCrossOp) Production() string       { return "JoinExprCrossOp" }
func (*JoinOpInner) Production() string           { return "JoinOpInner" }
func (*JoinOpLeftRight) Production() string       { return "JoinOpLeftRight" }
func (*JoinOpFull) Production() string            { return "JoinOpFull" }
func (*JoinConstraintClause) Production() string  { return "JoinConstraintClause" }
func (*SampleClause) Production() string          { return "SampleClause" }
func (*TableExprIdentifier) Production() string   { return "TableExprIdentifier" }
func (*TableExprSubquery) Production() string     { return "TableExprSubquery" }
func (*TableExprAlias) Production() string        { return "TableExprAlias" }
func (*TableExprFunction) Production() string     { return "TableExprFunction" }
func (*TableIdentifier) Production() string       { return "TableIdentifier" }
func (*ColumnExprList) Production() string        { return "ColumnExprList" }
func (*ColumnsExprAsterisk) Production() string   { return "ColumnsExprAsterisk" }
func (*ColumnsExprSubquery) Production() string   { return "ColumnsExprSubquery" }
func (*ColumnsExprColumn) Production() string     { return "ColumnsExprColumn" }
func (*ColumnExprPrecedence1) Production() string { return "ColumnExprPrecedence1" }
func (*ColumnExprPrecedence2) Production() string { return "ColumnExprPrecedence2" }
func (*ColumnExprPrecedence3) Production() string { return "ColumnExprPrecedence3" }
func (*ColumnExprAnd) Production() string         { return "ColumnExprAnd" }
func (*ColumnExprOr) Production() string          { return "ColumnExprOr" }
func (*ColumnExprNot) Production() string         { return "ColumnExprNot" }
func (*ColumnExprIsNull) Production() string      { return "ColumnExprIsNull" }
func (*ColumnExprArrayAccess) Production() string { return "ColumnExprArrayAccess" }
func (*ColumnExprTupleAccess) Production() string { return "ColumnExprTupleAccess" }
func (*ColumnExprParens) Production() string      { return "ColumnExprParens" }
func (*ColumnExprTernaryOp) Production() string   { return "ColumnExprTernaryOp" }
func (*ColumnExprAlias) Production() string       { return "ColumnExprAlias" }
func (*ColumnExprNegate) Production() string      { return "ColumnExprNegate" }
func (*ColumnExprSubquery) Production() string    { return "ColumnExprSubquery" }
func (*ColumnExprArray) Production() string       { return "ColumnExprArray" }
func (*ColumnExprTuple) Production() string       { return "ColumnExprTuple" }
func (*ColumnExprCast) Production() string        { return "ColumnExprCast" }
func (*ColumnExprCase) Production() string        { return "ColumnExprCase" }
func (*ColumnExprInterval) Production() string    { return "ColumnExprInterval" }
func (*ColumnExprBetween) Production() string     { return "ColumnExprBetween" }
func (*ColumnExprWinFunction) Production() string { return "ColumnExprWinFunction" }
func (*ColumnLambdaExpr) Production() string      { return "ColumnLambdaExpr" }
func (*ColumnExprFunction) Production() string    { return "ColumnExprFunction" }
func (*ColumnArgList) Production() string         { return "ColumnArgList" }
func (*ColumnExprAsterisk) Production() string    { return "ColumnExprAsterisk" }
func (*ColumnExprPlaceholder) Production() string { return "ColumnExprPlaceholder" }
func (*ColumnIdentifier) Production() string      { return "ColumnIdentifier" }
func (*NestedIdentifier) Production() string      { return "NestedIdentifier" }
func (*Literal) Production() string               { return "Literal" }
