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

// JSON encoding for AST nodes. Expression fields are interfaces, so each
// concrete node tags itself with a "node" discriminator; without it the
// encoded tree could not be told apart kind by kind.
package ast

import "encoding/json"

func (c *Constant) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node  string `json:"node"`
		Value any    `json:"value"`
	}{"Constant", c.Value})
}

func (f *FieldAccess) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node  string `json:"node"`
		Field string `json:"field"`
	}{"FieldAccess", f.Field})
}

func (f *FieldAccessChain) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node  string   `json:"node"`
		Chain []string `json:"chain"`
	}{"FieldAccessChain", f.Chain})
}

func (p *Placeholder) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node  string `json:"node"`
		Field string `json:"field"`
	}{"Placeholder", p.Field})
}

func (b *BinaryOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node  string `json:"node"`
		Op    string `json:"op"`
		Left  Expr   `json:"left"`
		Right Expr   `json:"right"`
	}{"BinaryOperation", b.Op.String(), b.Left, b.Right})
}

func (c *CompareOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node  string `json:"node"`
		Op    string `json:"op"`
		Left  Expr   `json:"left"`
		Right Expr   `json:"right"`
	}{"CompareOperation", c.Op.String(), c.Left, c.Right})
}

func (a *And) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node  string `json:"node"`
		Exprs []Expr `json:"exprs"`
	}{"And", a.Exprs})
}

func (o *Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node  string `json:"node"`
		Exprs []Expr `json:"exprs"`
	}{"Or", o.Exprs})
}

func (n *Not) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node string `json:"node"`
		Expr Expr   `json:"expr"`
	}{"Not", n.Expr})
}

func (c *Call) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node string `json:"node"`
		Name string `json:"name"`
		Args []Expr `json:"args"`
	}{"Call", c.Name, c.Args})
}

func (j *JoinExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node       string    `json:"node"`
		Table      Expr      `json:"table"`
		TableFinal *bool     `json:"table_final,omitempty"`
		Alias      string    `json:"alias,omitempty"`
		JoinType   string    `json:"join_type,omitempty"`
		Constraint Expr      `json:"join_constraint,omitempty"`
		NextJoin   *JoinExpr `json:"join_expr,omitempty"`
	}{"JoinExpr", j.Table, j.TableFinal, j.Alias, j.JoinType, j.Constraint, j.NextJoin})
}

func (s *SelectQuery) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node       string    `json:"node"`
		Select     []Expr    `json:"select"`
		SelectFrom *JoinExpr `json:"select_from,omitempty"`
		Where      Expr      `json:"where,omitempty"`
		Prewhere   Expr      `json:"prewhere,omitempty"`
		Having     Expr      `json:"having,omitempty"`
		Limit      *int64    `json:"limit,omitempty"`
		Offset     *int64    `json:"offset,omitempty"`
	}{"SelectQuery", s.Select, s.SelectFrom, s.Where, s.Prewhere, s.Having, s.Limit, s.Offset})
}
