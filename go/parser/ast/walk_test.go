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

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectVisitsDepthFirst(t *testing.T) {
	// (a AND f(b, 1)) visited preorder.
	tree := NewAnd([]Expr{
		NewFieldAccess("a"),
		NewCall("f", []Expr{NewFieldAccess("b"), NewConstant(int64(1))}),
	})

	var got []string
	Inspect(tree, func(n Node) bool {
		got = append(got, n.String())
		return true
	})

	assert.Equal(t, []string{"(a AND f(b, 1))", "a", "f(b, 1)", "b", "1"}, got)
}

func TestInspectPrunesSubtree(t *testing.T) {
	tree := NewAnd([]Expr{
		NewCall("f", []Expr{NewFieldAccess("x")}),
		NewFieldAccess("y"),
	})

	var got []string
	Inspect(tree, func(n Node) bool {
		got = append(got, n.String())
		// Do not descend into calls.
		_, isCall := n.(*Call)
		return !isCall
	})

	assert.Equal(t, []string{"(f(x) AND y)", "f(x)", "y"}, got)
}

func TestInspectStatement(t *testing.T) {
	query := NewSelectQuery([]Expr{NewFieldAccess("event")})
	query.SelectFrom = NewJoinExpr(NewFieldAccess("events"))
	query.SelectFrom.JoinType = "JOIN"
	query.SelectFrom.NextJoin = NewJoinExpr(NewFieldAccess("persons"))
	query.SelectFrom.Constraint = NewCompareOperation(
		NewFieldAccessChain([]string{"events", "id"}),
		NewFieldAccessChain([]string{"persons", "id"}),
		Eq,
	)
	query.Where = NewConstant(true)

	placeholders := 0
	fields := 0
	Inspect(query, func(n Node) bool {
		switch n.(type) {
		case *Placeholder:
			placeholders++
		case *FieldAccess:
			fields++
		}
		return true
	})

	assert.Equal(t, 0, placeholders)
	// event, events, persons
	assert.Equal(t, 3, fields)
}

func TestEqual(t *testing.T) {
	limit := int64(10)
	final := true

	join := func() *JoinExpr {
		j := NewJoinExpr(NewFieldAccess("events"))
		j.Alias = "e"
		j.TableFinal = &final
		return j
	}

	tests := []struct {
		name string
		a, b Node
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", NewConstant(int64(1)), nil, false},
		{"equal constants", NewConstant(int64(1)), NewConstant(int64(1)), true},
		{"constant value differs", NewConstant(int64(1)), NewConstant(int64(2)), false},
		{"constant type differs", NewConstant(int64(1)), NewConstant(float64(1)), false},
		{"different kinds", NewConstant("a"), NewFieldAccess("a"), false},
		{"equal chains", NewFieldAccessChain([]string{"a", "b"}), NewFieldAccessChain([]string{"a", "b"}), true},
		{"chain differs", NewFieldAccessChain([]string{"a", "b"}), NewFieldAccessChain([]string{"a", "c"}), false},
		{
			"equal compares",
			NewCompareOperation(NewFieldAccess("a"), NewConstant(int64(1)), Gt),
			NewCompareOperation(NewFieldAccess("a"), NewConstant(int64(1)), Gt),
			true,
		},
		{
			"compare op differs",
			NewCompareOperation(NewFieldAccess("a"), NewConstant(int64(1)), Gt),
			NewCompareOperation(NewFieldAccess("a"), NewConstant(int64(1)), Lt),
			false,
		},
		{
			"equal conjunctions",
			NewAnd([]Expr{NewFieldAccess("a"), NewFieldAccess("b")}),
			NewAnd([]Expr{NewFieldAccess("a"), NewFieldAccess("b")}),
			true,
		},
		{
			"conjunction order matters",
			NewAnd([]Expr{NewFieldAccess("a"), NewFieldAccess("b")}),
			NewAnd([]Expr{NewFieldAccess("b"), NewFieldAccess("a")}),
			false,
		},
		{
			"and is not or",
			NewAnd([]Expr{NewFieldAccess("a"), NewFieldAccess("b")}),
			NewOr([]Expr{NewFieldAccess("a"), NewFieldAccess("b")}),
			false,
		},
		{
			"equal calls",
			NewCall("coalesce", []Expr{NewFieldAccess("a"), NewConstant(nil)}),
			NewCall("coalesce", []Expr{NewFieldAccess("a"), NewConstant(nil)}),
			true,
		},
		{
			"call name differs",
			NewCall("min", []Expr{NewFieldAccess("a")}),
			NewCall("max", []Expr{NewFieldAccess("a")}),
			false,
		},
		{"equal joins", join(), join(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}

	t.Run("final pointer compared by value", func(t *testing.T) {
		a, b := join(), join()
		otherFinal := true
		b.TableFinal = &otherFinal
		assert.True(t, Equal(a, b))
		b.TableFinal = nil
		assert.False(t, Equal(a, b))
	})

	t.Run("select queries", func(t *testing.T) {
		build := func() *SelectQuery {
			q := NewSelectQuery([]Expr{NewFieldAccess("event")})
			q.SelectFrom = NewJoinExpr(NewFieldAccess("events"))
			q.Where = NewCompareOperation(NewFieldAccess("ts"), NewConstant(int64(0)), Gt)
			q.Limit = &limit
			return q
		}
		a, b := build(), build()
		require.True(t, Equal(a, b))

		otherLimit := int64(20)
		b.Limit = &otherLimit
		assert.False(t, Equal(a, b))
	})
}
