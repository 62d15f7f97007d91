// Package dialects provides database-specific rendering rules for the query
// builder: how string literals are quoted and how the LIMIT/OFFSET tail of a
// SELECT is spelled. ClickHouse is the reference dialect; PostgreSQL, MySQL and
// SQLite are registered so the same query tree can run against them.
package dialects

import "sync"

// Dialect defines database-specific behaviors.
type Dialect interface {
	// Name returns the canonical dialect name.
	Name() string
	// QuoteString renders s as a single-quoted string literal.
	QuoteString(s string) string
	// BackslashEscapes reports whether QuoteString escapes with a
	// backslash ('it\'s') rather than by doubling the quote ('it''s').
	BackslashEscapes() bool
	// LimitOffset renders the row-limiting tail. A nil pointer means the
	// clause was never set. The result has no leading space and is empty
	// when both are nil.
	LimitOffset(limit, offset *int) string
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// RegisterDialect registers a database dialect by driver name.
func RegisterDialect(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[name] = d
}

// Lookup retrieves a registered dialect by driver or dialect name.
func Lookup(name string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[name]
	return d, ok
}

// GetDialect retrieves a registered dialect by driver name, panics if not found.
func GetDialect(name string) Dialect {
	if d, ok := Lookup(name); ok {
		return d
	}
	panic("unsupported dialect: " + name)
}

// Default returns the ClickHouse dialect.
func Default() Dialect {
	return GetDialect("clickhouse")
}
