package dialects

import (
	"strconv"
)

// MySQLDialect implements MySQL-specific SQL rendering.
type MySQLDialect struct{}

func init() {
	RegisterDialect("mysql", &MySQLDialect{})
}

// Name returns "mysql".
func (d *MySQLDialect) Name() string {
	return "mysql"
}

// QuoteString escapes backslashes and single quotes with a backslash
// (the server default without NO_BACKSLASH_ESCAPES).
func (d *MySQLDialect) QuoteString(s string) string {
	return "'" + backslashEscaper.Replace(s) + "'"
}

// maxRows is the documented MySQL idiom for "no limit".
const maxRows = "18446744073709551615"

// BackslashEscapes reports true.
func (d *MySQLDialect) BackslashEscapes() bool {
	return true
}

// LimitOffset renders "LIMIT n [OFFSET o]".
func (d *MySQLDialect) LimitOffset(limit, offset *int) string {
	switch {
	case offset == nil && limit == nil:
		return ""
	case offset == nil:
		return "LIMIT " + strconv.Itoa(*limit)
	case limit == nil:
		return "LIMIT " + maxRows + " OFFSET " + strconv.Itoa(*offset)
	default:
		return "LIMIT " + strconv.Itoa(*limit) + " OFFSET " + strconv.Itoa(*offset)
	}
}
