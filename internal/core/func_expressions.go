// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"sort"
	"strings"

	"github.com/coregx/chsql/internal/dialects"
)

// Slot classifies an argument position of a SQL function.
type Slot int

const (
	// RawSlot inserts a bare string verbatim as SQL text.
	RawSlot Slot = iota
	// LiteralSlot quotes a bare string as data.
	LiteralSlot
)

// signature fixes, per argument position, how a function's arguments are resolved.
type signature struct {
	sqlName  string
	slots    []Slot
	variadic bool // the last slot repeats
	distinct bool // count(DISTINCT ...)
	indexed  bool // a trailing integer renders as an [i] suffix
}

func (s signature) slot(i int) Slot {
	if i >= len(s.slots) {
		return s.slots[len(s.slots)-1]
	}
	return s.slots[i]
}

func sig(name string, slots ...Slot) signature {
	return signature{sqlName: name, slots: slots}
}

// signatures is keyed by the name accepted by Call.
// A slot is LiteralSlot only when the argument is inherently data.
var signatures = map[string]signature{
	"anyLast":                 sig("anyLast", RawSlot),
	"anyLastPos":              {sqlName: "anyLast", slots: []Slot{RawSlot}, indexed: true},
	"avg":                     sig("avg", RawSlot),
	"avgIf":                   sig("avgIf", RawSlot, RawSlot),
	"min":                     sig("min", RawSlot),
	"max":                     sig("max", RawSlot),
	"sum":                     sig("sum", RawSlot),
	"abs":                     sig("abs", RawSlot),
	"count":                   sig("count", RawSlot),
	"countDistinct":           {sqlName: "count", slots: []Slot{RawSlot}, variadic: true, distinct: true},
	"countIf":                 sig("countIf", RawSlot),
	"if":                      sig("if", RawSlot, RawSlot, RawSlot),
	"round":                   sig("round", RawSlot, LiteralSlot),
	"groupArray":              sig("groupArray", RawSlot),
	"arrayJoin":               sig("arrayJoin", RawSlot),
	"subtractDays":            sig("subtractDays", RawSlot, RawSlot),
	"indexOf":                 sig("indexOf", RawSlot, RawSlot),
	"empty":                   sig("empty", RawSlot),
	"positionCaseInsensitive": sig("positionCaseInsensitive", RawSlot, RawSlot),
	"translateUTF8":           sig("translateUTF8", RawSlot, LiteralSlot, LiteralSlot),
}

// Functions returns the names of the functions with a declared signature, sorted.
func Functions() []string {
	names := make([]string, 0, len(signatures))
	for name := range signatures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FuncExp is a SQL function call: name(arg1, arg2, ...).
// It is immutable; As returns an aliased copy.
type FuncExp struct {
	name     string
	args     []Expression
	distinct bool
	index    string
	alias    string
	err      error
}

// Call builds a function call by name.
// Names with a declared signature (see Functions) resolve each argument
// according to that signature and check the argument count. Any other
// name renders as given with every argument in a raw-text slot, which
// covers the rest of the ClickHouse function library:
//
//	Call("toStartOfDay", Call("toDate", NewExp("'2021-01-01'")))
//
// Errors are recorded on the result and surface when it is embedded in a Query.
func Call(name string, args ...any) *FuncExp {
	s, known := signatures[name]
	if !known {
		s = signature{sqlName: name, slots: []Slot{RawSlot}, variadic: true}
	}

	f := &FuncExp{name: s.sqlName, distinct: s.distinct}
	if strings.TrimSpace(name) == "" {
		f.err = invalidArg("Call", 0, "empty function name")
		return f
	}

	if s.indexed {
		if len(args) == 0 {
			f.err = invalidArg(name, 0, "missing index argument")
			return f
		}
		idx, err := NewLiteral(args[len(args)-1])
		if err != nil || idx.Kind() != NumberLiteral || strings.ContainsAny(idx.text, ".-") {
			f.err = invalidArg(name, len(args), "index must be a non-negative integer, got %v", args[len(args)-1])
			return f
		}
		f.index = idx.text
		args = args[:len(args)-1]
	}

	if s.variadic && known {
		args = flattenArgs(args)
		if len(args) == 0 {
			f.err = invalidArg(name, 0, "at least one argument is required")
			return f
		}
	} else if !s.variadic && len(args) != len(s.slots) {
		f.err = invalidArg(name, 0, "expects %d argument(s), got %d", len(s.slots), len(args))
		return f
	}

	f.args = make([]Expression, 0, len(args))
	for i, a := range args {
		var (
			e   Expression
			err error
		)
		if s.slot(i) == LiteralSlot {
			e, err = literalArg(name, i+1, a)
		} else {
			e, err = rawArg(name, i+1, a)
		}
		if err != nil {
			f.err = err
			return f
		}
		f.args = append(f.args, e)
	}
	return f
}

// flattenArgs expands list arguments, so countDistinct([]string{"a", "b"}) equals countDistinct("a", "b").
func flattenArgs(args []any) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case []string:
			for _, s := range v {
				out = append(out, s)
			}
		case []any:
			out = append(out, v...)
		case []Expression:
			for _, e := range v {
				out = append(out, e)
			}
		default:
			out = append(out, a)
		}
	}
	return out
}

// As returns a copy of the call carrying alias.
func (f *FuncExp) As(alias string) *FuncExp {
	c := *f
	c.alias = alias
	return &c
}

// Err returns the error recorded while the call was built.
func (f *FuncExp) Err() error {
	return f.err
}

// Build renders name(args)[index] AS alias.
func (f *FuncExp) Build(d dialects.Dialect) string {
	var sb strings.Builder
	sb.WriteString(f.name)
	sb.WriteByte('(')
	if f.distinct {
		sb.WriteString("DISTINCT ")
	}
	for i, a := range f.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Build(d))
	}
	sb.WriteByte(')')
	if f.index != "" {
		sb.WriteString("[" + f.index + "]")
	}
	return withAliasSuffix(sb.String(), f.alias)
}

// AnyLast renders anyLast(x).
func AnyLast(x any) *FuncExp { return Call("anyLast", x) }

// AnyLastPos renders anyLast(x)[i].
func AnyLastPos(x any, i int) *FuncExp { return Call("anyLastPos", x, i) }

// Avg renders avg(x).
func Avg(x any) *FuncExp { return Call("avg", x) }

// AvgIf renders avgIf(x, cond).
func AvgIf(x, cond any) *FuncExp { return Call("avgIf", x, cond) }

// Min renders min(x).
func Min(x any) *FuncExp { return Call("min", x) }

// Max renders max(x).
func Max(x any) *FuncExp { return Call("max", x) }

// Sum renders sum(x).
func Sum(x any) *FuncExp { return Call("sum", x) }

// Abs renders abs(x).
func Abs(x any) *FuncExp { return Call("abs", x) }

// Count renders count(x).
func Count(x any) *FuncExp { return Call("count", x) }

// CountDistinct renders count(DISTINCT x1, x2, ...). Slices are expanded.
func CountDistinct(xs ...any) *FuncExp { return Call("countDistinct", xs...) }

// CountIf renders countIf(cond).
func CountIf(cond any) *FuncExp { return Call("countIf", cond) }

// If renders if(cond, a, b).
func If(cond, a, b any) *FuncExp { return Call("if", cond, a, b) }

// Round renders round(x, n).
func Round(x any, n int) *FuncExp { return Call("round", x, n) }

// GroupArray renders groupArray(x).
func GroupArray(x any) *FuncExp { return Call("groupArray", x) }

// ArrayJoin renders arrayJoin(x).
func ArrayJoin(x any) *FuncExp { return Call("arrayJoin", x) }

// SubtractDays renders subtractDays(x, n). n is SQL text, so both 10 and
// "{days:UInt32}" work.
func SubtractDays(x, n any) *FuncExp { return Call("subtractDays", x, n) }

// IndexOf renders indexOf(haystack, needle). The needle is SQL text.
func IndexOf(haystack, needle any) *FuncExp { return Call("indexOf", haystack, needle) }

// Empty renders empty(x).
func Empty(x any) *FuncExp { return Call("empty", x) }

// PositionCaseInsensitive renders positionCaseInsensitive(haystack, needle).
func PositionCaseInsensitive(haystack, needle any) *FuncExp {
	return Call("positionCaseInsensitive", haystack, needle)
}

// TranslateUTF8 renders translateUTF8(x, 'from', 'to'); from and to are always quoted.
func TranslateUTF8(x any, from, to string) *FuncExp {
	return Call("translateUTF8", x, from, to)
}
