package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateQuery(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"plain select", "SELECT id, email FROM users WHERE id = 1 LIMIT 10", false},
		{"cte and subquery", "WITH sum(bytes) AS s SELECT formatReadableSize(s), table FROM system.parts GROUP BY table ORDER BY s ASC", false},
		{"dangerous text inside literal", "SELECT id FROM users WHERE note = 'x; DROP TABLE users --'", false},
		{"escaped quote inside literal", `SELECT id FROM users WHERE name = 'O\'Brien -- '`, false},
		{"trailing semicolon", "SELECT 1;", false},
		{"comment in raw fragment", "SELECT id FROM users WHERE id = 1 -- AND tenant = 2", true},
		{"block comment", "SELECT id /* x */ FROM users", true},
		{"stacked statement", "SELECT 1; DROP TABLE users", true},
		{"drop table", "SELECT 1 FROM users WHERE 1 = 1 OR DROP TABLE users", true},
		{"table function", "SELECT * FROM url('http://evil', CSV, 'a String')", true},
		{"sleep", "SELECT sleep(3)", true},
		{"tautology", "SELECT id FROM users WHERE id = 1 OR 1=1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuery(tt.query, BackslashQuoting)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDangerousSQL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_DoubledQuoting(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"trailing backslash in literal", `SELECT * FROM files WHERE path = 'C:\' AND note = 'a -- b'`, false},
		{"doubled quote in literal", `SELECT id FROM users WHERE name = 'O''Brien -- x'`, false},
		{"backslash does not escape the quote", `SELECT id FROM users WHERE name = 'x\' OR 1=1 --'`, true},
		{"comment after literal", `SELECT id FROM users WHERE path = 'C:\' -- AND tenant = 2`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuery(tt.query, DoubledQuoting)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDangerousSQL)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	// Under backslash rules the same text misplaces the literal boundaries.
	assert.Error(t, v.ValidateQuery(`SELECT * FROM files WHERE path = 'C:\' AND note = 'a -- b'`, BackslashQuoting))
}

func TestValidator_Strict(t *testing.T) {
	q := "SELECT id FROM a UNION ALL SELECT id FROM b"

	assert.NoError(t, NewValidator().ValidateQuery(q, BackslashQuoting))
	assert.Error(t, NewValidator(WithStrict(true)).ValidateQuery(q, BackslashQuoting))
	assert.Error(t, NewValidator(WithStrict(true)).ValidateQuery("SELECT * FROM system.parts", BackslashQuoting))
}

func TestValidator_ValidateArgs(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateArgs([]any{1, "john", nil}))

	err := v.ValidateArgs([]any{1, "x' OR '1'='1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDangerousSQL)
	assert.Contains(t, err.Error(), "argument 1")
}
