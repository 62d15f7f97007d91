package core

import (
	"reflect"
	"strings"

	"github.com/coregx/chsql/internal/dialects"
)

// Operator is a comparison operator of a Condition.
type Operator string

// Supported operators.
const (
	EQ      Operator = "="
	NE      Operator = "!="
	LT      Operator = "<"
	LE      Operator = "<="
	GT      Operator = ">"
	GE      Operator = ">="
	BETWEEN Operator = "BETWEEN"
	IN      Operator = "IN"
	NotIn   Operator = "NOT IN"
	LIKE    Operator = "LIKE"
	NotLike Operator = "NOT LIKE"
)

var operators = map[Operator]struct{}{
	EQ: {}, NE: {}, LT: {}, LE: {}, GT: {}, GE: {},
	BETWEEN: {}, IN: {}, NotIn: {}, LIKE: {}, NotLike: {},
}

// normalize upper-cases op and collapses inner whitespace, so "not  in" is NOT IN.
func (op Operator) normalize() (Operator, error) {
	n := Operator(strings.Join(strings.Fields(strings.ToUpper(string(op))), " "))
	if _, ok := operators[n]; !ok {
		return "", &InvalidOperatorError{Operator: string(op)}
	}
	return n, nil
}

// Logic is the combinator joining entries of a WHERE chain or a group.
type Logic string

// Combinators.
const (
	AND Logic = "AND"
	OR  Logic = "OR"
)

func (l Logic) normalize() (Logic, error) {
	switch n := Logic(strings.ToUpper(strings.TrimSpace(string(l)))); n {
	case AND, OR:
		return n, nil
	default:
		return "", &InvalidOperatorError{Operator: string(l)}
	}
}

// ConditionItem is a predicate that can be placed in a WHERE chain or a group:
// a single Cond or a nested ConditionGroup.
type ConditionItem interface {
	Expression
	Err() error
}

// Cond is a single predicate: column operator value.
type Cond struct {
	column Expression
	op     Operator
	value  Expression   // comparison, LIKE, IN with a subquery or expression
	list   Literal      // IN/NOT IN list
	bounds []Expression // BETWEEN
	err    error
}

// C builds a predicate. The column is a raw-text slot; the value is a
// literal-value slot, so strings are quoted and Expressions are inserted
// as SQL. BETWEEN takes a two-element slice; IN and NOT IN take a slice,
// a subquery or an Expression.
//
// An unsupported operator or a malformed value is recorded on the result
// and reported by the Query the condition is added to.
func C(column any, op Operator, value any) *Cond {
	c := &Cond{}

	c.op, c.err = op.normalize()
	if c.err != nil {
		return c
	}

	c.column, c.err = rawArg(string(c.op), 1, column)
	if c.err != nil {
		return c
	}

	switch c.op {
	case BETWEEN:
		c.err = c.setBounds(value)
	case IN, NotIn:
		c.err = c.setList(value)
	default:
		c.value, c.err = literalArg(string(c.op), 2, value)
	}
	return c
}

func (c *Cond) setBounds(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return invalidArg("BETWEEN", 2, "expected a two-element list, got %T", value)
	}
	if rv.Len() != 2 {
		return invalidArg("BETWEEN", 2, "expected a two-element list, got %d element(s)", rv.Len())
	}
	c.bounds = make([]Expression, 2)
	for i := range c.bounds {
		e, err := literalArg("BETWEEN", 2, rv.Index(i).Interface())
		if err != nil {
			return err
		}
		c.bounds[i] = e
	}
	return nil
}

func (c *Cond) setList(value any) error {
	if e, ok := value.(Expression); ok {
		if _, isLit := e.(Literal); !isLit {
			v, err := literalArg(string(c.op), 2, e)
			c.value = v
			return err
		}
	}

	lit, err := NewLiteral(value)
	if err != nil {
		return invalidArg(string(c.op), 2, "unsupported list value of type %T", value)
	}
	if lit.Kind() != ArrayLiteral {
		lit = Literal{kind: ArrayLiteral, elems: []Literal{lit}}
	}
	if lit.Len() == 0 {
		return invalidArg(string(c.op), 2, "empty list")
	}
	c.list = lit
	return nil
}

// Err returns the error recorded while the condition was built.
func (c *Cond) Err() error {
	return c.err
}

// Build renders the predicate.
func (c *Cond) Build(d dialects.Dialect) string {
	if c.err != nil {
		return ""
	}
	col := c.column.Build(d)
	switch {
	case c.op == BETWEEN:
		return col + " BETWEEN " + c.bounds[0].Build(d) + " AND " + c.bounds[1].Build(d)
	case (c.op == IN || c.op == NotIn) && c.value == nil:
		return col + " " + string(c.op) + " " + c.list.buildList(d)
	default:
		return col + " " + string(c.op) + " " + c.value.Build(d)
	}
}

type groupEntry struct {
	logic Logic
	item  ConditionItem
}

// ConditionGroup is a parenthesized list of predicates joined by AND/OR.
// Entries render left to right; the first entry's combinator is omitted.
type ConditionGroup struct {
	entries []groupEntry
	err     error
}

// And groups items joined by AND.
func And(items ...ConditionItem) *ConditionGroup {
	return newGroup(AND, items)
}

// Or groups items joined by OR.
func Or(items ...ConditionItem) *ConditionGroup {
	return newGroup(OR, items)
}

// Group joins items with the given combinator, which must be AND or OR.
func Group(logic Logic, items ...ConditionItem) *ConditionGroup {
	return newGroup(logic, items)
}

func newGroup(logic Logic, items []ConditionItem) *ConditionGroup {
	g := &ConditionGroup{}
	l, err := logic.normalize()
	if err != nil {
		g.err = err
		return g
	}
	if len(items) == 0 {
		g.err = invalidArg("group", 0, "no conditions")
		return g
	}
	for i, item := range items {
		if item == nil || isNilPointer(item) {
			g.err = invalidArg("group", i+1, "nil condition")
			return g
		}
		if err := item.Err(); err != nil {
			g.err = err
			return g
		}
		g.entries = append(g.entries, groupEntry{logic: l, item: item})
	}
	return g
}

// Err returns the first error of the group or any of its members.
func (g *ConditionGroup) Err() error {
	return g.err
}

// Build renders (item1 OP item2 ...). A group is always parenthesized.
func (g *ConditionGroup) Build(d dialects.Dialect) string {
	return "(" + buildChain(g.entries, d) + ")"
}

// buildChain renders entries strictly left to right without adding
// parentheses around runs of mixed AND/OR.
func buildChain(entries []groupEntry, d dialects.Dialect) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(" " + string(e.logic) + " ")
		}
		sb.WriteString(e.item.Build(d))
	}
	return sb.String()
}
