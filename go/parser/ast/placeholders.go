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

// Placeholder substitution: a post-parse pass that replaces named
// placeholder nodes with caller-supplied expression subtrees.
package ast

// ReplacePlaceholders walks node depth-first and returns a tree in which
// every Placeholder whose name appears in placeholders has been replaced by
// the bound expression. Bound subtrees are shared by reference, not copied;
// the result is read-only downstream so sharing is safe. Placeholders with
// no matching binding are left in place. Nodes whose subtree contains no
// substitution are returned unchanged.
func ReplacePlaceholders(node Expr, placeholders map[string]Expr) Expr {
	if len(placeholders) == 0 {
		return node
	}
	return substitute(node, placeholders)
}

func substitute(node Expr, placeholders map[string]Expr) Expr {
	switch n := node.(type) {
	case nil:
		return nil
	case *Constant, *FieldAccess, *FieldAccessChain:
		return n
	case *Placeholder:
		if bound, ok := placeholders[n.Field]; ok {
			return bound
		}
		return n
	case *BinaryOperation:
		left := substitute(n.Left, placeholders)
		right := substitute(n.Right, placeholders)
		if left == n.Left && right == n.Right {
			return n
		}
		return NewBinaryOperation(left, right, n.Op)
	case *CompareOperation:
		left := substitute(n.Left, placeholders)
		right := substitute(n.Right, placeholders)
		if left == n.Left && right == n.Right {
			return n
		}
		return NewCompareOperation(left, right, n.Op)
	case *And:
		if exprs, changed := substituteList(n.Exprs, placeholders); changed {
			return NewAnd(exprs)
		}
		return n
	case *Or:
		if exprs, changed := substituteList(n.Exprs, placeholders); changed {
			return NewOr(exprs)
		}
		return n
	case *Not:
		if expr := substitute(n.Expr, placeholders); expr != n.Expr {
			return NewNot(expr)
		}
		return n
	case *Call:
		if args, changed := substituteList(n.Args, placeholders); changed {
			return NewCall(n.Name, args)
		}
		return n
	case *JoinExpr:
		return substituteJoin(n, placeholders)
	case *SelectQuery:
		return substituteSelect(n, placeholders)
	default:
		return n
	}
}

func substituteList(exprs []Expr, placeholders map[string]Expr) ([]Expr, bool) {
	changed := false
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = substitute(e, placeholders)
		if out[i] != e {
			changed = true
		}
	}
	return out, changed
}

func substituteJoin(j *JoinExpr, placeholders map[string]Expr) *JoinExpr {
	if j == nil {
		return nil
	}
	table := substitute(j.Table, placeholders)
	constraint := substituteOptional(j.Constraint, placeholders)
	next := substituteJoin(j.NextJoin, placeholders)
	if table == j.Table && constraint == j.Constraint && next == j.NextJoin {
		return j
	}
	return &JoinExpr{
		Table:      table,
		TableFinal: j.TableFinal,
		Alias:      j.Alias,
		JoinType:   j.JoinType,
		Constraint: constraint,
		NextJoin:   next,
	}
}

func substituteSelect(s *SelectQuery, placeholders map[string]Expr) Expr {
	selectExprs, changed := substituteList(s.Select, placeholders)
	from := substituteJoin(s.SelectFrom, placeholders)
	where := substituteOptional(s.Where, placeholders)
	prewhere := substituteOptional(s.Prewhere, placeholders)
	having := substituteOptional(s.Having, placeholders)
	if !changed && from == s.SelectFrom && where == s.Where && prewhere == s.Prewhere && having == s.Having {
		return s
	}
	return &SelectQuery{
		Select:     selectExprs,
		SelectFrom: from,
		Where:      where,
		Prewhere:   prewhere,
		Having:     having,
		Limit:      s.Limit,
		Offset:     s.Offset,
	}
}

func substituteOptional(e Expr, placeholders map[string]Expr) Expr {
	if e == nil {
		return nil
	}
	return substitute(e, placeholders)
}
