package dialects

import (
	"strconv"
	"strings"
)

// SQLiteDialect implements SQLite-specific SQL rendering.
type SQLiteDialect struct{}

func init() {
	RegisterDialect("sqlite", &SQLiteDialect{})
	RegisterDialect("sqlite3", &SQLiteDialect{})
}

// Name returns "sqlite".
func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

// QuoteString doubles embedded single quotes.
func (d *SQLiteDialect) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// BackslashEscapes reports false.
func (d *SQLiteDialect) BackslashEscapes() bool {
	return false
}

// LimitOffset renders "LIMIT n [OFFSET o]". SQLite has no OFFSET without
// LIMIT, so a bare offset is paired with LIMIT -1.
func (d *SQLiteDialect) LimitOffset(limit, offset *int) string {
	switch {
	case offset == nil && limit == nil:
		return ""
	case offset == nil:
		return "LIMIT " + strconv.Itoa(*limit)
	case limit == nil:
		return "LIMIT -1 OFFSET " + strconv.Itoa(*offset)
	default:
		return "LIMIT " + strconv.Itoa(*limit) + " OFFSET " + strconv.Itoa(*offset)
	}
}
