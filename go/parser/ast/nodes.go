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

// Package ast defines the abstract syntax tree produced by the AQL parser.
//
// Every node is immutable once the parser returns it. The one exception is
// the forward link of a JoinExpr chain, which the converter threads exactly
// once while the chain is being assembled.
package ast

import (
	"fmt"
	"strings"
)

// Node is the interface implemented by every AST node.
type Node interface {
	fmt.Stringer
	node()
}

// Expr is the interface implemented by every expression node. All AQL AST
// nodes are expressions; SelectQuery and JoinExpr implement it too so that
// subqueries can appear in expression position.
type Expr interface {
	Node
	expr()
}

// baseExpr provides the marker methods shared by all expression nodes.
type baseExpr struct{}

func (baseExpr) node() {}
func (baseExpr) expr() {}

// ==============================================================================
// OPERATOR KINDS
// ==============================================================================

// BinaryOperationType enumerates arithmetic operators.
type BinaryOperationType int

const (
	Add BinaryOperationType = iota
	Sub
	Mult
	Div
	Mod
)

func (op BinaryOperationType) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mult:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	default:
		return fmt.Sprintf("BinaryOperationType(%d)", int(op))
	}
}

// CompareOperationType enumerates comparison and membership operators.
type CompareOperationType int

const (
	Eq CompareOperationType = iota
	NotEq
	Gt
	GtE
	Lt
	LtE
	Like
	ILike
	NotLike
	NotILike
	In
	NotIn
)

func (op CompareOperationType) String() string {
	switch op {
	case Eq:
		return "=="
	case NotEq:
		return "!="
	case Gt:
		return ">"
	case GtE:
		return ">="
	case Lt:
		return "<"
	case LtE:
		return "<="
	case Like:
		return "LIKE"
	case ILike:
		return "ILIKE"
	case NotLike:
		return "NOT LIKE"
	case NotILike:
		return "NOT ILIKE"
	case In:
		return "IN"
	case NotIn:
		return "NOT IN"
	default:
		return fmt.Sprintf("CompareOperationType(%d)", int(op))
	}
}

// ==============================================================================
// EXPRESSION NODES
// ==============================================================================

// Constant is a literal value. Value holds nil, bool, int64, float64 or
// string; integer and float literals are distinguished by the presence of a
// decimal point in the source text.
type Constant struct {
	baseExpr
	Value any
}

func NewConstant(value any) *Constant {
	return &Constant{Value: value}
}

func (c *Constant) String() string {
	switch v := c.Value.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FieldAccess is a single unqualified field reference. The field "*" stands
// for the wildcard projection.
type FieldAccess struct {
	baseExpr
	Field string
}

func NewFieldAccess(field string) *FieldAccess {
	return &FieldAccess{Field: field}
}

func (f *FieldAccess) String() string {
	return f.Field
}

// FieldAccessChain is the canonical form of qualified or nested property
// access (a.b, a['b'], a.b.c). A chain always has at least two segments;
// single-segment access stays a FieldAccess.
type FieldAccessChain struct {
	baseExpr
	Chain []string
}

func NewFieldAccessChain(chain []string) *FieldAccessChain {
	return &FieldAccessChain{Chain: chain}
}

func (f *FieldAccessChain) String() string {
	return strings.Join(f.Chain, ".")
}

// Placeholder is a named hole in a query, resolved by ReplacePlaceholders.
// An unbound placeholder passes through substitution untouched; rejecting it
// is a downstream concern.
type Placeholder struct {
	baseExpr
	Field string
}

func NewPlaceholder(field string) *Placeholder {
	return &Placeholder{Field: field}
}

func (p *Placeholder) String() string {
	return "{" + p.Field + "}"
}

// BinaryOperation is an arithmetic operation over two operands.
type BinaryOperation struct {
	baseExpr
	Left  Expr
	Right Expr
	Op    BinaryOperationType
}

func NewBinaryOperation(left, right Expr, op BinaryOperationType) *BinaryOperation {
	return &BinaryOperation{Left: left, Right: right, Op: op}
}

func (b *BinaryOperation) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// CompareOperation is a comparison or membership test over two operands.
type CompareOperation struct {
	baseExpr
	Left  Expr
	Right Expr
	Op    CompareOperationType
}

func NewCompareOperation(left, right Expr, op CompareOperationType) *CompareOperation {
	return &CompareOperation{Left: left, Right: right, Op: op}
}

func (c *CompareOperation) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}

// And is an n-ary conjunction. It is always maximally flattened: an And never
// directly contains another And, and Exprs always has at least two elements.
type And struct {
	baseExpr
	Exprs []Expr
}

func NewAnd(exprs []Expr) *And {
	return &And{Exprs: exprs}
}

func (a *And) String() string {
	return "(" + joinExprs(a.Exprs, " AND ") + ")"
}

// Or is an n-ary disjunction with the same flattening invariant as And.
type Or struct {
	baseExpr
	Exprs []Expr
}

func NewOr(exprs []Expr) *Or {
	return &Or{Exprs: exprs}
}

func (o *Or) String() string {
	return "(" + joinExprs(o.Exprs, " OR ") + ")"
}

// Not is a logical negation.
type Not struct {
	baseExpr
	Expr Expr
}

func NewNot(expr Expr) *Not {
	return &Not{Expr: expr}
}

func (n *Not) String() string {
	return fmt.Sprintf("(NOT %s)", n.Expr)
}

// Call is a function invocation with positional arguments.
type Call struct {
	baseExpr
	Name string
	Args []Expr
}

func NewCall(name string, args []Expr) *Call {
	return &Call{Name: name, Args: args}
}

func (c *Call) String() string {
	return c.Name + "(" + joinExprs(c.Args, ", ") + ")"
}

// ==============================================================================
// STATEMENT NODES
// ==============================================================================

// JoinExpr is one step of a FROM clause. Steps form a singly linked chain
// through NextJoin; exactly one node in a finished chain has NextJoin == nil
// (the tail). JoinType and Constraint describe how the *next* step is joined
// onto this one, so they live on every non-tail node.
type JoinExpr struct {
	baseExpr
	Table      Expr
	TableFinal *bool
	Alias      string
	JoinType   string
	Constraint Expr
	NextJoin   *JoinExpr
}

func NewJoinExpr(table Expr) *JoinExpr {
	return &JoinExpr{Table: table}
}

func (j *JoinExpr) String() string {
	var sb strings.Builder
	sb.WriteString(j.Table.String())
	if j.Alias != "" {
		sb.WriteString(" AS ")
		sb.WriteString(j.Alias)
	}
	if j.TableFinal != nil && *j.TableFinal {
		sb.WriteString(" FINAL")
	}
	if j.NextJoin != nil {
		sb.WriteString(" ")
		sb.WriteString(j.JoinType)
		sb.WriteString(" ")
		sb.WriteString(j.NextJoin.String())
		if j.Constraint != nil {
			sb.WriteString(" ON ")
			sb.WriteString(j.Constraint.String())
		}
	}
	return sb.String()
}

// SelectQuery is the root of a parsed statement.
type SelectQuery struct {
	baseExpr
	Select     []Expr
	SelectFrom *JoinExpr
	Where      Expr
	Prewhere   Expr
	Having     Expr
	Limit      *int64
	Offset     *int64
}

func NewSelectQuery(selectExprs []Expr) *SelectQuery {
	return &SelectQuery{Select: selectExprs}
}

func (s *SelectQuery) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(joinExprs(s.Select, ", "))
	if s.SelectFrom != nil {
		sb.WriteString(" FROM ")
		sb.WriteString(s.SelectFrom.String())
	}
	if s.Prewhere != nil {
		sb.WriteString(" PREWHERE ")
		sb.WriteString(s.Prewhere.String())
	}
	if s.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(s.Where.String())
	}
	if s.Having != nil {
		sb.WriteString(" HAVING ")
		sb.WriteString(s.Having.String())
	}
	if s.Limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *s.Limit)
	}
	if s.Offset != nil {
		fmt.Fprintf(&sb, " OFFSET %d", *s.Offset)
	}
	return sb.String()
}

func joinExprs(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}
