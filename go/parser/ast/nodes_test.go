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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantString(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, "NULL"},
		{true, "true"},
		{false, "false"},
		{int64(42), "42"},
		{1.5, "1.5"},
		{"hello", `"hello"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewConstant(tt.value).String())
	}
}

func TestExpressionStrings(t *testing.T) {
	tests := []struct {
		expr Expr
		want string
	}{
		{NewFieldAccess("event"), "event"},
		{NewFieldAccess("*"), "*"},
		{NewFieldAccessChain([]string{"a", "b", "c"}), "a.b.c"},
		{NewPlaceholder("filter"), "{filter}"},
		{
			NewBinaryOperation(NewConstant(int64(1)), NewConstant(int64(2)), Add),
			"(1 + 2)",
		},
		{
			NewCompareOperation(NewFieldAccess("a"), NewConstant(int64(1)), GtE),
			"(a >= 1)",
		},
		{
			NewAnd([]Expr{NewFieldAccess("a"), NewFieldAccess("b"), NewFieldAccess("c")}),
			"(a AND b AND c)",
		},
		{
			NewOr([]Expr{NewFieldAccess("a"), NewFieldAccess("b")}),
			"(a OR b)",
		},
		{NewNot(NewFieldAccess("a")), "(NOT a)"},
		{NewCall("now", nil), "now()"},
		{
			NewCall("coalesce", []Expr{NewFieldAccess("a"), NewConstant(int64(0))}),
			"coalesce(a, 0)",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.expr.String())
	}
}

func TestCompareOperationTypeStrings(t *testing.T) {
	tests := []struct {
		op   CompareOperationType
		want string
	}{
		{Eq, "=="},
		{NotEq, "!="},
		{Gt, ">"},
		{GtE, ">="},
		{Lt, "<"},
		{LtE, "<="},
		{Like, "LIKE"},
		{ILike, "ILIKE"},
		{NotLike, "NOT LIKE"},
		{NotILike, "NOT ILIKE"},
		{In, "IN"},
		{NotIn, "NOT IN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
}

func TestSelectQueryString(t *testing.T) {
	limit := int64(10)
	offset := int64(5)
	final := true

	query := &SelectQuery{
		Select: []Expr{NewFieldAccess("event"), NewCall("count", []Expr{NewFieldAccess("*")})},
		SelectFrom: &JoinExpr{
			Table:      NewFieldAccess("events"),
			Alias:      "e",
			TableFinal: &final,
		},
		Where:  NewCompareOperation(NewFieldAccess("ts"), NewConstant(int64(0)), Gt),
		Limit:  &limit,
		Offset: &offset,
	}
	assert.Equal(t,
		"SELECT event, count(*) FROM events AS e FINAL WHERE (ts > 0) LIMIT 10 OFFSET 5",
		query.String())
}

func TestJoinExprChainString(t *testing.T) {
	chain := &JoinExpr{
		Table:      NewFieldAccess("a"),
		JoinType:   "LEFT JOIN",
		Constraint: NewCompareOperation(NewFieldAccessChain([]string{"a", "id"}), NewFieldAccessChain([]string{"b", "id"}), Eq),
		NextJoin:   &JoinExpr{Table: NewFieldAccess("b")},
	}
	assert.Equal(t, "a LEFT JOIN b ON (a.id == b.id)", chain.String())
}

func TestMarshalJSONNodeDiscriminators(t *testing.T) {
	tests := []struct {
		expr Expr
		want string
	}{
		{NewConstant(int64(1)), `{"node":"Constant","value":1}`},
		{NewConstant(nil), `{"node":"Constant","value":null}`},
		{NewFieldAccess("event"), `{"node":"FieldAccess","field":"event"}`},
		{NewFieldAccessChain([]string{"a", "b"}), `{"node":"FieldAccessChain","chain":["a","b"]}`},
		{NewPlaceholder("f"), `{"node":"Placeholder","field":"f"}`},
		{NewNot(NewFieldAccess("a")), `{"node":"Not","expr":{"node":"FieldAccess","field":"a"}}`},
		{
			NewBinaryOperation(NewConstant(int64(1)), NewConstant(int64(2)), Mult),
			`{"node":"BinaryOperation","op":"*","left":{"node":"Constant","value":1},"right":{"node":"Constant","value":2}}`,
		},
		{
			NewCall("now", []Expr{}),
			`{"node":"Call","name":"now","args":[]}`,
		},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.expr)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data))
	}
}

func TestMarshalJSONSelectQueryOmitsEmptyFields(t *testing.T) {
	query := &SelectQuery{Select: []Expr{NewConstant(int64(1))}}
	data, err := json.Marshal(query)
	require.NoError(t, err)
	assert.JSONEq(t, `{"node":"SelectQuery","select":[{"node":"Constant","value":1}]}`, string(data))
}

func TestMarshalJSONJoinChain(t *testing.T) {
	query := &SelectQuery{
		Select: []Expr{NewFieldAccess("*")},
		SelectFrom: &JoinExpr{
			Table:    NewFieldAccess("a"),
			JoinType: "JOIN",
			Constraint: NewCompareOperation(
				NewFieldAccessChain([]string{"a", "id"}),
				NewFieldAccessChain([]string{"b", "id"}),
				Eq,
			),
			NextJoin: &JoinExpr{Table: NewFieldAccess("b")},
		},
	}
	data, err := json.Marshal(query)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	from := decoded["select_from"].(map[string]any)
	assert.Equal(t, "JoinExpr", from["node"])
	assert.Equal(t, "JOIN", from["join_type"])
	next := from["join_expr"].(map[string]any)
	assert.Equal(t, map[string]any{
		"node":  "FieldAccess",
		"field": "b",
	}, next["table"])
	_, hasType := next["join_type"]
	assert.False(t, hasType)
}
