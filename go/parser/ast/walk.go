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
 * AQL Parser - AST Traversal and Comparison
 *
 * Depth-first traversal over AST nodes in the style of go/ast, plus deep
 * structural equality. Walk visits a node before its children; a nil return
 * from the visitor prunes the subtree.
 */

package ast

// Visitor is the callback interface for Walk. Visit is invoked for each node
// encountered; returning nil skips the node's children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses the tree rooted at node in depth-first order. It calls
// v.Visit(node) first; if the returned visitor w is not nil, Walk recurses
// into each child with w, followed by a call of w.Visit(nil).
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Constant, *FieldAccess, *FieldAccessChain, *Placeholder:
		// leaves

	case *BinaryOperation:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *CompareOperation:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *And:
		for _, e := range n.Exprs {
			Walk(v, e)
		}

	case *Or:
		for _, e := range n.Exprs {
			Walk(v, e)
		}

	case *Not:
		Walk(v, n.Expr)

	case *Call:
		for _, a := range n.Args {
			Walk(v, a)
		}

	case *JoinExpr:
		Walk(v, n.Table)
		if n.Constraint != nil {
			Walk(v, n.Constraint)
		}
		if n.NextJoin != nil {
			Walk(v, n.NextJoin)
		}

	case *SelectQuery:
		for _, e := range n.Select {
			Walk(v, e)
		}
		if n.SelectFrom != nil {
			Walk(v, n.SelectFrom)
		}
		if n.Prewhere != nil {
			Walk(v, n.Prewhere)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		if n.Having != nil {
			Walk(v, n.Having)
		}
	}

	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at node, calling f for each node. If f
// returns false for a node, the node's children are skipped. Visit calls for
// nil nodes mark the end of a subtree and are not forwarded to f.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(func(n Node) bool {
		if n == nil {
			return false
		}
		return f(n)
	}), node)
}

// Equal reports whether two AST nodes are structurally identical. Two nil
// nodes are equal; a nil node never equals a non-nil one.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Constant:
		y, ok := b.(*Constant)
		return ok && x.Value == y.Value

	case *FieldAccess:
		y, ok := b.(*FieldAccess)
		return ok && x.Field == y.Field

	case *FieldAccessChain:
		y, ok := b.(*FieldAccessChain)
		if !ok || len(x.Chain) != len(y.Chain) {
			return false
		}
		for i := range x.Chain {
			if x.Chain[i] != y.Chain[i] {
				return false
			}
		}
		return true

	case *Placeholder:
		y, ok := b.(*Placeholder)
		return ok && x.Field == y.Field

	case *BinaryOperation:
		y, ok := b.(*BinaryOperation)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)

	case *CompareOperation:
		y, ok := b.(*CompareOperation)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)

	case *And:
		y, ok := b.(*And)
		return ok && equalExprs(x.Exprs, y.Exprs)

	case *Or:
		y, ok := b.(*Or)
		return ok && equalExprs(x.Exprs, y.Exprs)

	case *Not:
		y, ok := b.(*Not)
		return ok && Equal(x.Expr, y.Expr)

	case *Call:
		y, ok := b.(*Call)
		return ok && x.Name == y.Name && equalExprs(x.Args, y.Args)

	case *JoinExpr:
		y, ok := b.(*JoinExpr)
		return ok && equalJoin(x, y)

	case *SelectQuery:
		y, ok := b.(*SelectQuery)
		if !ok || !equalExprs(x.Select, y.Select) {
			return false
		}
		if x.SelectFrom == nil || y.SelectFrom == nil {
			if x.SelectFrom != y.SelectFrom {
				return false
			}
		} else if !equalJoin(x.SelectFrom, y.SelectFrom) {
			return false
		}
		return Equal(x.Where, y.Where) &&
			Equal(x.Prewhere, y.Prewhere) &&
			Equal(x.Having, y.Having) &&
			equalInt64Ptr(x.Limit, y.Limit) &&
			equalInt64Ptr(x.Offset, y.Offset)
	}

	return false
}

func equalExprs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalJoin(a, b *JoinExpr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !Equal(a.Table, b.Table) || a.Alias != b.Alias || a.JoinType != b.JoinType {
		return false
	}
	if !Equal(a.Constraint, b.Constraint) {
		return false
	}
	if (a.TableFinal == nil) != (b.TableFinal == nil) {
		return false
	}
	if a.TableFinal != nil && *a.TableFinal != *b.TableFinal {
		return false
	}
	return equalJoin(a.NextJoin, b.NextJoin)
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
