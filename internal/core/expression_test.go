package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/chsql/internal/dialects"
)

func TestRawExp_Build(t *testing.T) {
	d := dialects.Default()

	e := NewExp("toDate(created_at)")
	assert.Equal(t, "toDate(created_at)", e.Build(d))

	aliased := e.As("day")
	assert.Equal(t, "toDate(created_at) AS day", aliased.Build(d))
	assert.Equal(t, "toDate(created_at)", e.Build(d), "As returns a copy")
}

func TestRawArg(t *testing.T) {
	d := dialects.Default()
	type column string

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string is verbatim", "first_name", "first_name"},
		{"placeholder is verbatim", "{name:String}", "{name:String}"},
		{"named string kind is verbatim", column("price"), "price"},
		{"number", 10, "10"},
		{"float", 0.5, "0.5"},
		{"bool", true, "true"},
		{"nil", nil, "NULL"},
		{"expression", NewExp("now()"), "now()"},
		{"function", AnyLast("x"), "anyLast(x)"},
		{"subquery", NewQuery().Select("1"), "(SELECT 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := rawArg("test", 1, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Build(d))
		})
	}
}

func TestRawArg_Rejects(t *testing.T) {
	var nilExp *RawExp

	for _, v := range []any{[]int{1}, struct{}{}, nilExp, []byte("x")} {
		_, err := rawArg("test", 2, v)
		var argErr *InvalidArgumentError
		require.ErrorAs(t, err, &argErr, "%#v", v)
		assert.Equal(t, "test", argErr.Func)
		assert.Equal(t, 2, argErr.Position)
	}
}

func TestRawArg_TransfersError(t *testing.T) {
	_, err := rawArg("test", 1, Call("round", "x"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLiteralArg(t *testing.T) {
	d := dialects.Default()

	e, err := literalArg("test", 1, "ÁáČ")
	require.NoError(t, err)
	assert.Equal(t, "'ÁáČ'", e.Build(d))

	e, err = literalArg("test", 1, NewExp("now()"))
	require.NoError(t, err)
	assert.Equal(t, "now()", e.Build(d))

	_, err = literalArg("test", 3, struct{}{})
	var argErr *InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, 3, argErr.Position)
}

func TestEmbed_SnapshotsQueries(t *testing.T) {
	q := NewQuery().Select("id").From("users")

	e, err := embed(q)
	require.NoError(t, err)
	q.Where("id", EQ, 1)

	assert.Equal(t, "(SELECT id FROM users)", e.Build(dialects.Default()))
}

func TestAliased(t *testing.T) {
	d := dialects.Default()
	lit, _ := NewLiteral("2020-01-01")

	tests := []struct {
		name string
		exp  Expression
		want string
	}{
		{"raw", NewExp("x").As("old"), "x AS a"},
		{"function", Sum("bytes"), "sum(bytes) AS a"},
		{"query", NewQuery().From("t").As("old"), "(SELECT * FROM t) AS a"},
		{"literal", lit, "'2020-01-01' AS a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := aliased(tt.exp, "a")
			assert.Equal(t, tt.want, e.Build(d))
			assert.Equal(t, "a", aliasOf(e))
		})
	}

	assert.Empty(t, aliasOf(NewExp("x")))
	assert.Empty(t, aliasOf(lit))
}

func TestErrors(t *testing.T) {
	opErr := &InvalidOperatorError{Operator: "<>"}
	assert.Equal(t, `invalid operator "<>"`, opErr.Error())
	assert.ErrorIs(t, opErr, ErrInvalidOperator)
	assert.NotErrorIs(t, opErr, ErrInvalidArgument)

	argErr := invalidArg("round", 2, "expected %s", "number")
	assert.Equal(t, "invalid argument 2 to round: expected number", argErr.Error())
	assert.ErrorIs(t, argErr, ErrInvalidArgument)

	wrapped := WrapError(ErrNoRows, "one")
	assert.ErrorIs(t, wrapped, ErrNoRows)
	assert.Contains(t, wrapped.Error(), "one")
	assert.Nil(t, WrapError(nil, "noop"))
}
