// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"errors"
	"reflect"

	"github.com/coregx/chsql/internal/dialects"
)

// Expression is a node of the query tree that renders to SQL text.
// Literals, raw fragments, function calls, conditions and subqueries all
// implement it. Build includes the node's own alias suffix, if it has one.
//
// Example:
//
//	chsql.NewQuery().
//	    Select(fx.Round(fx.AnyLast("price"), 2).As("price")).
//	    From("users")
type Expression interface {
	// Build converts the node into a SQL fragment using the dialect's quoting rules.
	Build(d dialects.Dialect) string
}

// RawExp is an opaque fragment of SQL text inserted verbatim.
// Use it for column references, already composed expressions and
// parameter placeholders such as {name:String}.
//
// Example:
//
//	chsql.NewExp("toStartOfDay(toDate('2021-01-01'))").As("start")
type RawExp struct {
	SQL   string
	Alias string
}

// NewExp creates a raw SQL expression. The text is not validated.
func NewExp(sql string) *RawExp {
	return &RawExp{SQL: sql}
}

// As returns a copy of the expression carrying alias. The receiver is not modified.
func (e *RawExp) As(alias string) *RawExp {
	c := *e
	c.Alias = alias
	return &c
}

// Build returns the SQL text followed by "AS alias" when an alias is set.
func (e *RawExp) Build(_ dialects.Dialect) string {
	return withAliasSuffix(e.SQL, e.Alias)
}

// aliasExp attaches an alias to a node that has no alias of its own (literals, conditions).
type aliasExp struct {
	exp   Expression
	alias string
}

func (e *aliasExp) Build(d dialects.Dialect) string {
	return withAliasSuffix(e.exp.Build(d), e.alias)
}

func withAliasSuffix(sql, alias string) string {
	if alias == "" {
		return sql
	}
	return sql + " AS " + alias
}

// aliased returns e carrying alias, replacing any alias it already had.
func aliased(e Expression, alias string) Expression {
	switch v := e.(type) {
	case *RawExp:
		return v.As(alias)
	case *FuncExp:
		return v.As(alias)
	case *Query:
		c := v.Clone()
		c.alias = alias
		return c
	case *aliasExp:
		return &aliasExp{exp: v.exp, alias: alias}
	default:
		return &aliasExp{exp: e, alias: alias}
	}
}

// aliasOf returns the alias carried by e, or "".
func aliasOf(e Expression) string {
	switch v := e.(type) {
	case *RawExp:
		return v.Alias
	case *FuncExp:
		return v.alias
	case *Query:
		return v.alias
	case *aliasExp:
		return v.alias
	default:
		return ""
	}
}

// errCarrier is implemented by nodes that record construction errors.
type errCarrier interface {
	Err() error
}

// embed prepares an Expression for storage inside another node.
// Queries are snapshotted so later mutation of the original does not
// reach the parent, and any recorded construction error is returned.
func embed(e Expression) (Expression, error) {
	if c, ok := e.(errCarrier); ok {
		if err := c.Err(); err != nil {
			return nil, err
		}
	}
	if q, ok := e.(*Query); ok {
		return q.Clone(), nil
	}
	return e, nil
}

// rawArg resolves a value given to a raw-text slot.
// Strings become RawExp verbatim; numbers, booleans and nil become literals;
// Expressions are embedded as they are.
func rawArg(fn string, pos int, v any) (Expression, error) {
	switch x := v.(type) {
	case string:
		return NewExp(x), nil
	case Expression:
		if isNilPointer(x) {
			return nil, invalidArg(fn, pos, "nil %T", x)
		}
		return embed(x)
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return NewExp(rv.String()), nil
	}

	lit, err := NewLiteral(v)
	if err != nil || lit.Kind() == ArrayLiteral || lit.Kind() == StringLiteral {
		return nil, invalidArg(fn, pos, "cannot use %T as SQL text", v)
	}
	return lit, nil
}

// literalArg resolves a value given to a literal-value slot.
// Expressions are embedded as they are; anything else becomes a Literal.
func literalArg(fn string, pos int, v any) (Expression, error) {
	if x, ok := v.(Expression); ok {
		if isNilPointer(x) {
			return nil, invalidArg(fn, pos, "nil %T", x)
		}
		return embed(x)
	}

	lit, err := NewLiteral(v)
	if err != nil {
		var ae *InvalidArgumentError
		if errors.As(err, &ae) {
			return nil, invalidArg(fn, pos, "%s", ae.Reason)
		}
		return nil, err
	}
	return lit, nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
