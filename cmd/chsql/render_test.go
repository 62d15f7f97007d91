package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topUsers = `name: top_users
select: [id, name]
from:
  table: users
where:
  - column: id
    op: ">"
    value: 1
order_by:
  - column: id
    dir: DESC
limit: 2
`

const pagedUsers = `select: [id]
from:
  table: users
where:
  - column: name
    op: "="
    value: it's
limit: 10
offset: 20
`

func TestRender(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "chsql.yaml", "log:\n  level: error\n")
	def := writeFile(t, dir, "top_users.yaml", topUsers)

	out, _, err := execute(t, "render", "--config", cfg, def)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM users WHERE id > 1 ORDER BY id DESC LIMIT 2\n", out)
}

func TestRender_Dialect(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "chsql.yaml", "log:\n  level: error\n")
	def := writeFile(t, dir, "paged.yaml", pagedUsers)

	tests := []struct {
		dialect string
		want    string
	}{
		{"clickhouse", `SELECT id FROM users WHERE name = 'it\'s' OFFSET 20 ROW FETCH FIRST 10 ROWS ONLY`},
		{"postgres", `SELECT id FROM users WHERE name = 'it''s' OFFSET 20 ROWS FETCH FIRST 10 ROWS ONLY`},
		{"sqlite", `SELECT id FROM users WHERE name = 'it''s' LIMIT 10 OFFSET 20`},
		{"mysql", `SELECT id FROM users WHERE name = 'it\'s' LIMIT 10 OFFSET 20`},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			out, _, err := execute(t, "render", "--config", cfg, "--dialect", tt.dialect, def)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestRender_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "chsql.yaml", "log:\n  level: error\n")
	top := writeFile(t, dir, "top_users.yaml", topUsers)
	paged := writeFile(t, dir, "paged.yaml", pagedUsers)

	out, _, err := execute(t, "render", "--config", cfg, "--dialect", "sqlite", top, paged)
	require.NoError(t, err)

	want := "-- top_users\n" +
		"SELECT id, name FROM users WHERE id > 1 ORDER BY id DESC LIMIT 2\n" +
		"\n" +
		"-- " + paged + "\n" +
		"SELECT id FROM users WHERE name = 'it''s' LIMIT 10 OFFSET 20\n"
	assert.Equal(t, want, out)
}

func TestRender_DebugLog(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "chsql.yaml", "log:\n  level: debug\n  format: json\n")
	def := writeFile(t, dir, "top_users.yaml", topUsers)

	_, stderr, err := execute(t, "render", "--config", cfg, def)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"query rendered"`)
	assert.Contains(t, stderr, `"dialect":"clickhouse"`)
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "chsql.yaml", "log:\n  level: error\n")
	badOp := writeFile(t, dir, "bad_op.yaml", "select: [id]\nfrom:\n  table: users\nwhere:\n  - column: id\n    op: \"~\"\n    value: 1\n")
	unknownField := writeFile(t, dir, "unknown.yaml", "selects: [id]\n")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing file", []string{"render", "--config", cfg, dir + "/nope.yaml"}, ExitDefinition},
		{"unknown field", []string{"render", "--config", cfg, unknownField}, ExitDefinition},
		{"invalid operator", []string{"render", "--config", cfg, badOp}, ExitDefinition},
		{"unknown dialect", []string{"render", "--config", cfg, "--dialect", "oracle", badOp}, ExitDefinition},
		{"missing config", []string{"render", "--config", dir + "/nope.yaml", badOp}, ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %T: %v", err, err)
			assert.Equal(t, tt.code, exitErr.Code)
		})
	}
}
