package core

import (
	"strings"

	"github.com/coregx/chsql/internal/dialects"
)

// Query is a SELECT statement under construction.
//
// Methods mutate the receiver and return it for chaining. The first
// construction error is recorded and every later call becomes a no-op;
// GenerateSQL, Err and the execution methods report it.
//
// A Query embedded in another one (FROM, JOIN, WITH, select list, function
// argument or condition value) is copied at the moment it is embedded, so
// later changes to the original do not affect the parent.
//
// A Query is not safe for concurrent mutation.
type Query struct {
	db      *DB
	dialect dialects.Dialect

	ctes    []Expression
	columns []Expression
	from    Expression
	joins   []joinClause
	where   []groupEntry
	groupBy []Expression
	orderBy []orderEntry
	limit   *int
	offset  *int
	alias   string

	err error
}

type joinClause struct {
	kind   string
	source Expression
	on     string
}

type orderEntry struct {
	exp Expression
	dir string
}

// OrderItem is one ORDER BY entry. Column is a raw-text slot; Direction
// is rendered verbatim and may be empty.
type OrderItem struct {
	Column    any
	Direction string
}

// Asc orders by col ascending.
func Asc(col any) OrderItem {
	return OrderItem{Column: col, Direction: "ASC"}
}

// Desc orders by col descending.
func Desc(col any) OrderItem {
	return OrderItem{Column: col, Direction: "DESC"}
}

// QueryOption configures a standalone Query.
type QueryOption func(*Query)

// WithQueryDialect renders the query with d instead of ClickHouse.
func WithQueryDialect(d dialects.Dialect) QueryOption {
	return func(q *Query) {
		if d != nil {
			q.dialect = d
		}
	}
}

// NewQuery creates a standalone query rendered with the ClickHouse dialect.
// Standalone queries can be rendered and embedded but not executed; use
// DB.Query for a query bound to a connection.
func NewQuery(opts ...QueryOption) *Query {
	q := &Query{dialect: dialects.Default()}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Query) fail(err error) *Query {
	if q.err == nil {
		q.err = err
	}
	return q
}

// With appends common table expressions. Each Expression must carry its
// own alias (RawExp.As, FuncExp.As, Query.As); strings are taken as
// complete "expr AS name" text.
func (q *Query) With(ctes ...any) *Query {
	if q.err != nil {
		return q
	}
	for i, c := range flattenArgs(ctes) {
		e, err := sourceArg("With", i+1, c)
		if err != nil {
			return q.fail(err)
		}
		if _, raw := c.(string); !raw && aliasOf(e) == "" {
			return q.fail(invalidArg("With", i+1, "common table expression %T has no alias", c))
		}
		q.ctes = append(q.ctes, e)
	}
	return q
}

// WithAs appends value AS alias to the WITH list. The value is a
// literal-value slot: a string is quoted, an Expression or Query is inserted
// as SQL.
//
//	q.WithAs("2019-08-01 15:23:00", "ts_upper_bound")  // WITH '2019-08-01 15:23:00' AS ts_upper_bound
//	q.WithAs(fx.Sum("bytes"), "s")                     // WITH sum(bytes) AS s
func (q *Query) WithAs(value any, alias string) *Query {
	if q.err != nil {
		return q
	}
	if strings.TrimSpace(alias) == "" {
		return q.fail(invalidArg("WithAs", 2, "empty alias"))
	}
	e, err := literalArg("WithAs", 1, value)
	if err != nil {
		return q.fail(err)
	}
	q.ctes = append(q.ctes, aliased(e, alias))
	return q
}

// Select replaces the select list. Columns are raw-text slots; slices are
// expanded. An empty select list renders as *.
func (q *Query) Select(cols ...any) *Query {
	if q.err != nil {
		return q
	}
	columns, err := rawArgs("Select", flattenArgs(cols))
	if err != nil {
		return q.fail(err)
	}
	q.columns = columns
	return q
}

// From sets the source table or subquery. An alias given here replaces
// the alias a subquery may already carry.
func (q *Query) From(source any, alias ...string) *Query {
	if q.err != nil {
		return q
	}
	e, err := sourceArg("From", 1, source)
	if err != nil {
		return q.fail(err)
	}
	if len(alias) > 0 && alias[0] != "" {
		e = aliased(e, alias[0])
	}
	q.from = e
	return q
}

// Join appends a join clause. A joinType of "JOIN" renders as INNER JOIN;
// any other value ("LEFT JOIN", "ANY LEFT JOIN", "CROSS JOIN", ...) is
// rendered verbatim. The on condition is raw SQL and is omitted when empty.
func (q *Query) Join(joinType string, source any, alias, on string) *Query {
	if q.err != nil {
		return q
	}
	e, err := sourceArg("Join", 2, source)
	if err != nil {
		return q.fail(err)
	}
	if alias != "" {
		e = aliased(e, alias)
	}
	q.joins = append(q.joins, joinClause{kind: normalizeJoin(joinType), source: e, on: on})
	return q
}

// InnerJoin appends an INNER JOIN.
func (q *Query) InnerJoin(source any, alias, on string) *Query {
	return q.Join("INNER JOIN", source, alias, on)
}

// LeftJoin appends a LEFT JOIN.
func (q *Query) LeftJoin(source any, alias, on string) *Query {
	return q.Join("LEFT JOIN", source, alias, on)
}

func normalizeJoin(kind string) string {
	kind = strings.TrimSpace(kind)
	if kind == "" || strings.EqualFold(kind, "JOIN") {
		return "INNER JOIN"
	}
	return kind
}

// Where appends column op value to the WHERE chain, joined with AND.
func (q *Query) Where(column any, op Operator, value any) *Query {
	return q.addWhere(AND, C(column, op, value))
}

// AndWhere appends column op value to the WHERE chain, joined with AND.
func (q *Query) AndWhere(column any, op Operator, value any) *Query {
	return q.addWhere(AND, C(column, op, value))
}

// OrWhere appends column op value to the WHERE chain, joined with OR.
func (q *Query) OrWhere(column any, op Operator, value any) *Query {
	return q.addWhere(OR, C(column, op, value))
}

// AndWhereGroup appends a parenthesized group of items joined by inner,
// itself joined to the chain with AND.
//
//	q.Where("first_name", LIKE, "John%").
//	    AndWhereGroup(OR, C("email", EQ, "a@x.com"), C("last_name", EQ, "Doe"))
//	// WHERE first_name LIKE 'John%' AND (email = 'a@x.com' OR last_name = 'Doe')
func (q *Query) AndWhereGroup(inner Logic, items ...ConditionItem) *Query {
	return q.addWhere(AND, newGroup(inner, items))
}

// OrWhereGroup is AndWhereGroup joined to the chain with OR.
func (q *Query) OrWhereGroup(inner Logic, items ...ConditionItem) *Query {
	return q.addWhere(OR, newGroup(inner, items))
}

func (q *Query) addWhere(logic Logic, item ConditionItem) *Query {
	if q.err != nil {
		return q
	}
	if err := item.Err(); err != nil {
		return q.fail(err)
	}
	q.where = append(q.where, groupEntry{logic: logic, item: item})
	return q
}

// GroupBy replaces the GROUP BY list. Columns are raw-text slots.
func (q *Query) GroupBy(cols ...any) *Query {
	if q.err != nil {
		return q
	}
	columns, err := rawArgs("GroupBy", flattenArgs(cols))
	if err != nil {
		return q.fail(err)
	}
	q.groupBy = columns
	return q
}

// OrderBy replaces the ORDER BY list.
func (q *Query) OrderBy(items ...OrderItem) *Query {
	if q.err != nil {
		return q
	}
	entries := make([]orderEntry, 0, len(items))
	for i, item := range items {
		e, err := rawArg("OrderBy", i+1, item.Column)
		if err != nil {
			return q.fail(err)
		}
		entries = append(entries, orderEntry{exp: e, dir: strings.TrimSpace(item.Direction)})
	}
	q.orderBy = entries
	return q
}

// Limit sets the maximum number of rows.
func (q *Query) Limit(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 0 {
		return q.fail(invalidArg("Limit", 1, "negative value %d", n))
	}
	q.limit = &n
	return q
}

// Offset sets the number of rows to skip.
func (q *Query) Offset(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 0 {
		return q.fail(invalidArg("Offset", 1, "negative value %d", n))
	}
	q.offset = &n
	return q
}

// As marks the query as an aliased subquery: it renders as (sql) AS alias,
// also when rendered on its own. An empty alias clears the mark.
func (q *Query) As(alias string) *Query {
	if q.err != nil {
		return q
	}
	q.alias = strings.TrimSpace(alias)
	return q
}

// Clone returns an independent copy of the query's clause state.
// The copy stays bound to the same DB.
func (q *Query) Clone() *Query {
	c := *q
	c.ctes = append([]Expression(nil), q.ctes...)
	c.columns = append([]Expression(nil), q.columns...)
	c.joins = append([]joinClause(nil), q.joins...)
	c.where = append([]groupEntry(nil), q.where...)
	c.groupBy = append([]Expression(nil), q.groupBy...)
	c.orderBy = append([]orderEntry(nil), q.orderBy...)
	if q.limit != nil {
		n := *q.limit
		c.limit = &n
	}
	if q.offset != nil {
		n := *q.offset
		c.offset = &n
	}
	return &c
}

// Err returns the first construction error, if any.
func (q *Query) Err() error {
	return q.err
}

// Dialect returns the dialect used by GenerateSQL.
func (q *Query) Dialect() dialects.Dialect {
	return q.dialect
}

// GenerateSQL renders the query. It has no side effects and returns the
// same string on repeated calls if the query was not changed in between.
func (q *Query) GenerateSQL() (string, error) {
	if q.err != nil {
		return "", q.err
	}
	d := q.dialect
	if d == nil {
		d = dialects.Default()
	}
	sql := q.render(d)
	if q.alias != "" {
		sql = "(" + sql + ") AS " + q.alias
	}
	return sql, nil
}

// String returns the generated SQL, or an empty string if construction failed.
func (q *Query) String() string {
	sql, _ := q.GenerateSQL()
	return sql
}

// Build renders the query as a subquery, (sql) AS alias, using the dialect
// of the enclosing statement.
func (q *Query) Build(d dialects.Dialect) string {
	return withAliasSuffix("("+q.render(d)+")", q.alias)
}

func rawArgs(fn string, args []any) ([]Expression, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]Expression, 0, len(args))
	for i, a := range args {
		e, err := rawArg(fn, i+1, a)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// sourceArg accepts a table name or an Expression.
func sourceArg(fn string, pos int, v any) (Expression, error) {
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, invalidArg(fn, pos, "empty source")
		}
		return NewExp(x), nil
	case Expression:
		if isNilPointer(x) {
			return nil, invalidArg(fn, pos, "nil %T", x)
		}
		return embed(x)
	default:
		return nil, invalidArg(fn, pos, "expected a table name or an expression, got %T", v)
	}
}
