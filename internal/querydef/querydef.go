// Package querydef loads SELECT statements described in YAML and turns them
// into query trees. Function calls resolve through the same signature table
// as fx.Call, so a definition renders exactly like the equivalent Go code.
//
//	name: daily_visits
//	select:
//	  - day
//	  - fn: count
//	    args: [id]
//	    as: visits
//	from:
//	  table: visits
//	where:
//	  - column: day
//	    op: ">="
//	    value: {fn: subtractDays, args: ["today()", 7]}
//	group_by: [day]
//	order_by:
//	  - column: day
//	    dir: ASC
package querydef

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coregx/chsql/internal/core"
	"github.com/coregx/chsql/internal/dialects"
)

// ErrInvalidDefinition is returned for definitions that are well-formed YAML
// but do not describe a query.
var ErrInvalidDefinition = errors.New("invalid query definition")

// Definition is a named query.
type Definition struct {
	// Name identifies the query, e.g. in CLI output.
	Name string `yaml:"name,omitempty"`

	// Description is free text.
	Description string `yaml:"description,omitempty"`

	// Dialect selects the rendering dialect; empty means ClickHouse.
	Dialect string `yaml:"dialect,omitempty"`

	Query `yaml:",inline"`
}

// Query mirrors the clauses of core.Query.
type Query struct {
	With    []Node      `yaml:"with,omitempty"`
	Select  []Node      `yaml:"select,omitempty"`
	From    *Source     `yaml:"from,omitempty"`
	Joins   []Join      `yaml:"joins,omitempty"`
	Where   []Predicate `yaml:"where,omitempty"`
	GroupBy []Node      `yaml:"group_by,omitempty"`
	OrderBy []Order     `yaml:"order_by,omitempty"`
	Limit   *int        `yaml:"limit,omitempty"`
	Offset  *int        `yaml:"offset,omitempty"`
	As      string      `yaml:"as,omitempty"`
}

// Source is a table name or a subquery.
type Source struct {
	Table string `yaml:"table,omitempty"`
	Query *Query `yaml:"query,omitempty"`
	As    string `yaml:"as,omitempty"`
}

// Join is one JOIN clause. An empty Type means INNER JOIN.
type Join struct {
	Type   string `yaml:"type,omitempty"`
	Source `yaml:",inline"`
	On     string `yaml:"on,omitempty"`
}

// Predicate is a condition or a parenthesized group. Logic joins it to the
// preceding entry of the WHERE chain and defaults to AND; inside a group the
// group's own logic applies.
type Predicate struct {
	Logic  string `yaml:"logic,omitempty"`
	Column Node   `yaml:"column,omitempty"`
	Op     string `yaml:"op,omitempty"`
	Value  Node   `yaml:"value,omitempty"`
	Group  *Group `yaml:"group,omitempty"`
}

// Group is a list of predicates joined by Logic.
type Group struct {
	Logic string      `yaml:"logic"`
	Items []Predicate `yaml:"items"`
}

// Order is one ORDER BY entry.
type Order struct {
	Column Node   `yaml:"column"`
	Dir    string `yaml:"dir,omitempty"`
}

// Parse decodes a definition. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &def, nil
}

// Load reads and parses a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query definition: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Build returns a standalone query rendered with the definition's dialect.
func (d *Definition) Build() (*core.Query, error) {
	name := d.Dialect
	if name == "" {
		name = dialects.Default().Name()
	}
	dialect, ok := dialects.Lookup(name)
	if !ok {
		return nil, core.WrapError(core.ErrUnsupportedDialect, name)
	}
	return d.Apply(core.NewQuery(core.WithQueryDialect(dialect)))
}

// Apply adds the definition's clauses to target, typically a query started
// with DB.Query, and returns it together with its construction error.
func (q *Query) Apply(target *core.Query) (*core.Query, error) {
	if err := q.apply(target); err != nil {
		return target, err
	}
	return target, target.Err()
}

func (q *Query) apply(t *core.Query) error {
	for i, n := range q.With {
		if err := withEntry(t, n); err != nil {
			return fmt.Errorf("with[%d]: %w", i, err)
		}
	}

	if len(q.Select) > 0 {
		cols, err := values(q.Select)
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}
		t.Select(cols...)
	}

	if q.From != nil {
		src, err := q.From.source()
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}
		t.From(src, q.From.As)
	}

	for i, j := range q.Joins {
		src, err := j.source()
		if err != nil {
			return fmt.Errorf("joins[%d]: %w", i, err)
		}
		t.Join(j.Type, src, j.As, j.On)
	}

	for i, p := range q.Where {
		if err := where(t, p); err != nil {
			return fmt.Errorf("where[%d]: %w", i, err)
		}
	}

	if len(q.GroupBy) > 0 {
		cols, err := values(q.GroupBy)
		if err != nil {
			return fmt.Errorf("group_by: %w", err)
		}
		t.GroupBy(cols...)
	}

	if len(q.OrderBy) > 0 {
		items := make([]core.OrderItem, len(q.OrderBy))
		for i, o := range q.OrderBy {
			col, err := o.Column.value()
			if err != nil {
				return fmt.Errorf("order_by[%d]: %w", i, err)
			}
			items[i] = core.OrderItem{Column: col, Direction: o.Dir}
		}
		t.OrderBy(items...)
	}

	if q.Limit != nil {
		t.Limit(*q.Limit)
	}
	if q.Offset != nil {
		t.Offset(*q.Offset)
	}
	if q.As != "" {
		t.As(q.As)
	}
	return nil
}

// withEntry adds a CTE. A value with an alias is a constant
// (WITH 'x' AS name); every other form must carry its own alias.
func withEntry(t *core.Query, n Node) error {
	if n.Value != nil && n.As != "" {
		t.WithAs(n.Value, n.As)
		return nil
	}
	v, err := n.value()
	if err != nil {
		return err
	}
	t.With(v)
	return nil
}

func (s *Source) source() (any, error) {
	switch {
	case s.Table != "" && s.Query != nil:
		return nil, fmt.Errorf("%w: table and query are exclusive", ErrInvalidDefinition)
	case s.Query != nil:
		sub := core.NewQuery()
		if err := s.Query.apply(sub); err != nil {
			return nil, err
		}
		return sub, nil
	case s.Table != "":
		return s.Table, nil
	default:
		return nil, fmt.Errorf("%w: missing table or query", ErrInvalidDefinition)
	}
}

func where(t *core.Query, p Predicate) error {
	logic := core.AND
	switch strings.ToUpper(strings.TrimSpace(p.Logic)) {
	case "", string(core.AND):
	case string(core.OR):
		logic = core.OR
	default:
		return &core.InvalidOperatorError{Operator: p.Logic}
	}

	if p.Group != nil {
		if p.Op != "" || !p.Column.IsZero() || !p.Value.IsZero() {
			return fmt.Errorf("%w: group excludes column, op and value", ErrInvalidDefinition)
		}
		items, err := p.Group.items()
		if err != nil {
			return err
		}
		if logic == core.OR {
			t.OrWhereGroup(core.Logic(p.Group.Logic), items...)
		} else {
			t.AndWhereGroup(core.Logic(p.Group.Logic), items...)
		}
		return nil
	}

	col, val, err := p.operands()
	if err != nil {
		return err
	}
	if logic == core.OR {
		t.OrWhere(col, core.Operator(p.Op), val)
	} else {
		t.AndWhere(col, core.Operator(p.Op), val)
	}
	return nil
}

func (p Predicate) operands() (col, val any, err error) {
	if p.Column.IsZero() {
		return nil, nil, fmt.Errorf("%w: missing column", ErrInvalidDefinition)
	}
	if col, err = p.Column.value(); err != nil {
		return nil, nil, fmt.Errorf("column: %w", err)
	}
	if val, err = p.Value.value(); err != nil {
		return nil, nil, fmt.Errorf("value: %w", err)
	}
	return col, val, nil
}

func (p Predicate) item() (core.ConditionItem, error) {
	if p.Logic != "" {
		return nil, fmt.Errorf("%w: logic inside a group; set it on the group", ErrInvalidDefinition)
	}
	if p.Group != nil {
		items, err := p.Group.items()
		if err != nil {
			return nil, err
		}
		return core.Group(core.Logic(p.Group.Logic), items...), nil
	}
	col, val, err := p.operands()
	if err != nil {
		return nil, err
	}
	return core.C(col, core.Operator(p.Op), val), nil
}

func (g *Group) items() ([]core.ConditionItem, error) {
	items := make([]core.ConditionItem, len(g.Items))
	for i, p := range g.Items {
		item, err := p.item()
		if err != nil {
			return nil, fmt.Errorf("group[%d]: %w", i, err)
		}
		items[i] = item
	}
	return items, nil
}
