package core

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/coregx/chsql/internal/dialects"
)

// LiteralKind identifies the data type carried by a Literal.
type LiteralKind int

// Literal kinds.
const (
	NullLiteral LiteralKind = iota
	NumberLiteral
	StringLiteral
	BoolLiteral
	ArrayLiteral
)

var literalKindNames = [...]string{"null", "number", "string", "bool", "array"}

func (k LiteralKind) String() string {
	if int(k) < len(literalKindNames) {
		return literalKindNames[k]
	}
	return "unknown"
}

// timeLayout is the text form of DateTime values accepted by ClickHouse.
const timeLayout = "2006-01-02 15:04:05"

// Literal is a scalar data value. Unlike RawExp it is never SQL text:
// strings are quoted by the dialect, numbers and booleans render bare,
// null renders as NULL.
//
// The zero Literal is NULL.
type Literal struct {
	kind  LiteralKind
	text  string // number digits or unquoted string
	b     bool
	elems []Literal
}

// NewLiteral converts a Go value into a Literal.
// Supported values are nil, bool, all integer and float kinds, string,
// []byte, time.Time, pointers to those, and slices or arrays of them.
// NaN and infinities are rejected.
func NewLiteral(v any) (Literal, error) {
	switch x := v.(type) {
	case nil:
		return Literal{}, nil
	case Literal:
		return x, nil
	case string:
		return Literal{kind: StringLiteral, text: x}, nil
	case []byte:
		return Literal{kind: StringLiteral, text: string(x)}, nil
	case bool:
		return Literal{kind: BoolLiteral, b: x}, nil
	case time.Time:
		return Literal{kind: StringLiteral, text: x.Format(timeLayout)}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Literal{}, nil
		}
		return NewLiteral(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Literal{kind: NumberLiteral, text: strconv.FormatInt(rv.Int(), 10)}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Literal{kind: NumberLiteral, text: strconv.FormatUint(rv.Uint(), 10)}, nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Literal{}, invalidArg("literal", 0, "%v has no SQL representation", f)
		}
		bits := 64
		if rv.Kind() == reflect.Float32 {
			bits = 32
		}
		return Literal{kind: NumberLiteral, text: strconv.FormatFloat(f, 'f', -1, bits)}, nil
	case reflect.String:
		return Literal{kind: StringLiteral, text: rv.String()}, nil
	case reflect.Bool:
		return Literal{kind: BoolLiteral, b: rv.Bool()}, nil
	case reflect.Slice, reflect.Array:
		elems := make([]Literal, rv.Len())
		for i := range elems {
			el, err := NewLiteral(rv.Index(i).Interface())
			if err != nil {
				return Literal{}, err
			}
			elems[i] = el
		}
		return Literal{kind: ArrayLiteral, elems: elems}, nil
	}

	return Literal{}, invalidArg("literal", 0, "unsupported value of type %T", v)
}

// Kind returns the literal's data type.
func (l Literal) Kind() LiteralKind {
	return l.kind
}

// Len returns the number of elements of an array literal and 0 otherwise.
func (l Literal) Len() int {
	return len(l.elems)
}

// Build renders the literal. Arrays render in bracket form, [a, b].
func (l Literal) Build(d dialects.Dialect) string {
	switch l.kind {
	case NumberLiteral:
		return l.text
	case StringLiteral:
		return d.QuoteString(l.text)
	case BoolLiteral:
		return strconv.FormatBool(l.b)
	case ArrayLiteral:
		return "[" + l.join(d) + "]"
	default:
		return "NULL"
	}
}

// buildList renders an array literal as a parenthesized list for IN.
func (l Literal) buildList(d dialects.Dialect) string {
	return "(" + l.join(d) + ")"
}

func (l Literal) join(d dialects.Dialect) string {
	parts := make([]string, len(l.elems))
	for i, el := range l.elems {
		parts[i] = el.Build(d)
	}
	return strings.Join(parts, ", ")
}
