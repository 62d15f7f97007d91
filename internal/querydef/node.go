package querydef

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/coregx/chsql/internal/core"
)

// Node is one expression of a definition. It is written either as a plain
// YAML scalar or list, resolved by the slot it is used in the same way a Go
// value would be, or as a mapping holding exactly one of:
//
//	raw:   SQL text inserted verbatim
//	value: data, always quoted when it is a string
//	fn:    a function call, with args
//	query: a subquery
//
// plus an optional alias in as.
type Node struct {
	Scalar any    `yaml:"-"`
	List   []Node `yaml:"-"`

	Raw   string `yaml:"raw,omitempty"`
	Value any    `yaml:"value,omitempty"`
	Fn    string `yaml:"fn,omitempty"`
	Args  []Node `yaml:"args,omitempty"`
	Query *Query `yaml:"query,omitempty"`
	As    string `yaml:"as,omitempty"`
}

var nodeKeys = map[string]struct{}{
	"raw": {}, "value": {}, "fn": {}, "args": {}, "query": {}, "as": {},
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v any
		if err := value.Decode(&v); err != nil {
			return err
		}
		*n = Node{Scalar: v}
	case yaml.SequenceNode:
		list := make([]Node, 0, len(value.Content))
		for _, c := range value.Content {
			var el Node
			if err := c.Decode(&el); err != nil {
				return err
			}
			list = append(list, el)
		}
		*n = Node{List: list}
	case yaml.MappingNode:
		for i := 0; i < len(value.Content); i += 2 {
			key := value.Content[i]
			if _, ok := nodeKeys[key.Value]; !ok {
				return fmt.Errorf("line %d: field %s not found in expression", key.Line, key.Value)
			}
		}
		type plain Node
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*n = Node(p)
	case yaml.AliasNode:
		return n.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("line %d: unsupported expression", value.Line)
	}
	return nil
}

// IsZero reports whether the node is absent or null.
func (n Node) IsZero() bool {
	return n.Scalar == nil && n.List == nil && n.Raw == "" && n.Value == nil &&
		n.Fn == "" && n.Args == nil && n.Query == nil && n.As == ""
}

// value converts the node into the Go value the query builder accepts for
// the same position.
func (n Node) value() (any, error) {
	forms := 0
	for _, set := range []bool{n.Scalar != nil, n.List != nil, n.Raw != "", n.Value != nil, n.Fn != "", n.Query != nil} {
		if set {
			forms++
		}
	}
	if forms > 1 {
		return nil, fmt.Errorf("%w: an expression needs exactly one of raw, value, fn or query", ErrInvalidDefinition)
	}
	if n.Args != nil && n.Fn == "" {
		return nil, fmt.Errorf("%w: args without fn", ErrInvalidDefinition)
	}

	switch {
	case n.List != nil:
		return values(n.List)
	case n.Raw != "":
		e := core.NewExp(n.Raw)
		if n.As != "" {
			e = e.As(n.As)
		}
		return e, nil
	case n.Value != nil:
		if n.As != "" {
			return nil, fmt.Errorf("%w: an aliased value is only allowed in with", ErrInvalidDefinition)
		}
		return core.NewLiteral(n.Value)
	case n.Fn != "":
		args, err := values(n.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Fn, err)
		}
		f := core.Call(n.Fn, args...)
		if n.As != "" {
			f = f.As(n.As)
		}
		return f, nil
	case n.Query != nil:
		sub := core.NewQuery()
		if err := n.Query.apply(sub); err != nil {
			return nil, err
		}
		if n.As != "" {
			sub.As(n.As)
		}
		return sub, nil
	default:
		if n.As != "" {
			return nil, fmt.Errorf("%w: alias %q without an expression", ErrInvalidDefinition, n.As)
		}
		return n.Scalar, nil
	}
}

func values(nodes []Node) ([]any, error) {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		v, err := n.value()
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
