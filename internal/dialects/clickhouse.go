package dialects

import (
	"strconv"
	"strings"
)

// ClickHouseDialect implements ClickHouse SQL rendering.
type ClickHouseDialect struct{}

func init() {
	RegisterDialect("clickhouse", &ClickHouseDialect{})
	RegisterDialect("chhttp", &ClickHouseDialect{})
}

// Name returns "clickhouse".
func (d *ClickHouseDialect) Name() string {
	return "clickhouse"
}

var backslashEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// QuoteString escapes backslashes and single quotes with a backslash.
func (d *ClickHouseDialect) QuoteString(s string) string {
	return "'" + backslashEscaper.Replace(s) + "'"
}

// BackslashEscapes reports true.
func (d *ClickHouseDialect) BackslashEscapes() bool {
	return true
}

// LimitOffset renders LIMIT alone as "LIMIT n". When an offset is present the
// ANSI form is used: "OFFSET o ROW FETCH FIRST n ROWS ONLY", and an offset
// without a limit renders only "OFFSET o ROW".
func (d *ClickHouseDialect) LimitOffset(limit, offset *int) string {
	switch {
	case offset == nil && limit == nil:
		return ""
	case offset == nil:
		return "LIMIT " + strconv.Itoa(*limit)
	case limit == nil:
		return "OFFSET " + strconv.Itoa(*offset) + " ROW"
	default:
		return "OFFSET " + strconv.Itoa(*offset) + " ROW FETCH FIRST " + strconv.Itoa(*limit) + " ROWS ONLY"
	}
}
