package logger

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_MaskSQL(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "equality",
			sql:  "SELECT id FROM users WHERE password = 'hunter2'",
			want: "SELECT id FROM users WHERE password = '***REDACTED***'",
		},
		{
			name: "escaped quote stays inside the literal",
			sql:  `SELECT id FROM users WHERE api_key = 'ab\'cd' AND id = 1`,
			want: `SELECT id FROM users WHERE api_key = '***REDACTED***' AND id = 1`,
		},
		{
			name: "in list",
			sql:  "SELECT id FROM users WHERE token IN ('a', 'b') AND id = 1",
			want: "SELECT id FROM users WHERE token IN '***REDACTED***' AND id = 1",
		},
		{
			name: "case insensitive",
			sql:  "SELECT id FROM users WHERE Password like 'x%'",
			want: "SELECT id FROM users WHERE Password like '***REDACTED***'",
		},
		{
			name: "number",
			sql:  "SELECT id FROM users WHERE ssn = 123456789 AND id > 5",
			want: "SELECT id FROM users WHERE ssn = '***REDACTED***' AND id > 5",
		},
		{
			name: "negative decimal",
			sql:  "SELECT id FROM cards WHERE cvv >= -1.5 LIMIT 1",
			want: "SELECT id FROM cards WHERE cvv >= '***REDACTED***' LIMIT 1",
		},
		{
			name: "between",
			sql:  "SELECT id FROM cards WHERE cvv BETWEEN 100 AND 999 AND id = 1",
			want: "SELECT id FROM cards WHERE cvv BETWEEN '***REDACTED***' AND '***REDACTED***' AND id = 1",
		},
		{
			name: "not between strings",
			sql:  "SELECT id FROM users WHERE token NOT BETWEEN 'a' AND 'b'",
			want: "SELECT id FROM users WHERE token NOT BETWEEN '***REDACTED***' AND '***REDACTED***'",
		},
		{
			name: "query parameter",
			sql:  "SELECT id FROM users WHERE pin = {pin:UInt32} AND ssn = {ssn:String}",
			want: "SELECT id FROM users WHERE pin = {pin:UInt32} AND ssn = '***REDACTED***'",
		},
		{
			name: "non sensitive columns untouched",
			sql:  "SELECT id FROM users WHERE first_name = 'John'",
			want: "SELECT id FROM users WHERE first_name = 'John'",
		},
		{
			name: "word boundary",
			sql:  "SELECT id FROM users WHERE password_hint = 'pet'",
			want: "SELECT id FROM users WHERE password_hint = 'pet'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.MaskSQL(tt.sql))
		})
	}
}

func TestSanitizer_CustomFields(t *testing.T) {
	s := NewSanitizer("email")

	assert.Equal(t,
		"SELECT * FROM users WHERE email = '***REDACTED***'",
		s.MaskSQL("SELECT * FROM users WHERE email = 'john.doe@example.com'"))
	assert.Equal(t,
		"SELECT * FROM users WHERE password = 'x'",
		s.MaskSQL("SELECT * FROM users WHERE password = 'x'"))
}

func TestSanitizer_MaskArgs(t *testing.T) {
	s := NewSanitizer()

	args := []any{"secret-value", 42}
	masked := s.MaskArgs("SELECT id FROM users WHERE password = {p:String}", args)
	assert.Equal(t, []any{Mask, Mask}, masked)
	assert.Equal(t, "secret-value", args[0], "input must not be modified")

	plain := s.MaskArgs("SELECT id FROM users WHERE id = {id:UInt32}", args)
	assert.Equal(t, args, plain)

	assert.Empty(t, s.MaskArgs("SELECT password FROM users", nil))
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "[]", FormatArgs(nil))
	assert.Equal(t, "[1, abc, NULL]", FormatArgs([]any{1, "abc", nil}))

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	out := FormatArgs([]any{string(long)})
	assert.Len(t, out, 2+100+3)
}

func TestFormatArgs_TruncatesOnRuneBoundary(t *testing.T) {
	out := FormatArgs([]any{strings.Repeat("é", 150)})

	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "["+strings.Repeat("é", 100)+"...]", out)
}

func TestSanitizer_ThreadSafety(t *testing.T) {
	s := NewSanitizer()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.MaskSQL("SELECT * FROM users WHERE password = 'p'")
				_ = s.MaskArgs("SELECT * FROM users WHERE token = ?", []any{"t"})
			}
		}()
	}
	wg.Wait()
}
