package dialects

import (
	"strconv"
	"strings"
)

// PostgresDialect implements PostgreSQL-specific SQL rendering.
type PostgresDialect struct{}

func init() {
	RegisterDialect("postgres", &PostgresDialect{})
	RegisterDialect("postgresql", &PostgresDialect{})
	RegisterDialect("pgx", &PostgresDialect{})
}

// Name returns "postgres".
func (d *PostgresDialect) Name() string {
	return "postgres"
}

// QuoteString doubles embedded single quotes (standard_conforming_strings).
func (d *PostgresDialect) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// BackslashEscapes reports false.
func (d *PostgresDialect) BackslashEscapes() bool {
	return false
}

// LimitOffset uses the same ANSI OFFSET/FETCH form as ClickHouse, which
// PostgreSQL accepts verbatim.
func (d *PostgresDialect) LimitOffset(limit, offset *int) string {
	switch {
	case offset == nil && limit == nil:
		return ""
	case offset == nil:
		return "LIMIT " + strconv.Itoa(*limit)
	case limit == nil:
		return "OFFSET " + strconv.Itoa(*offset) + " ROWS"
	default:
		return "OFFSET " + strconv.Itoa(*offset) + " ROWS FETCH FIRST " + strconv.Itoa(*limit) + " ROWS ONLY"
	}
}
