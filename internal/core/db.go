// Package core implements the query tree, its SQL rendering, and the
// database/sql execution client that runs rendered queries.
package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/coregx/chsql/internal/cache"
	"github.com/coregx/chsql/internal/dialects"
	"github.com/coregx/chsql/internal/logger"
	"github.com/coregx/chsql/internal/security"
	"github.com/coregx/chsql/internal/tracer"
)

// DB executes rendered queries through database/sql.
type DB struct {
	sqlDB      *sql.DB
	driverName string
	ownsSQLDB  bool

	dialect     dialects.Dialect
	dialectName string

	stmtCache *cache.StmtCache
	prepare   bool

	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer
	queryHook QueryHook
	validator *security.Validator

	healthInterval time.Duration
	health         *healthChecker

	maxOpenConns int
	maxIdleConns int
}

// Option is a functional option for configuring DB.
type Option func(*DB)

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(db *DB) {
		db.maxOpenConns = n
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(db *DB) {
		db.maxIdleConns = n
	}
}

// WithStmtCacheCapacity sets the prepared statement cache capacity.
func WithStmtCacheCapacity(capacity int) Option {
	return func(db *DB) {
		db.stmtCache = cache.NewStmtCache(capacity)
	}
}

// WithPreparedStatements turns statement preparation and caching on or off.
// It is on by default except for ClickHouse drivers, whose server binds
// {name:Type} parameters per query.
func WithPreparedStatements(enabled bool) Option {
	return func(db *DB) {
		db.prepare = enabled
	}
}

// WithDialect renders queries with the named dialect instead of the one
// registered for the driver, e.g. ClickHouse SQL through a PostgreSQL wire driver.
func WithDialect(name string) Option {
	return func(db *DB) {
		db.dialectName = name
	}
}

// WithLogger logs every executed statement. Values bound to sensitive
// columns are redacted.
func WithLogger(l logger.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithSensitiveFields replaces the column names whose values are redacted in logs.
func WithSensitiveFields(fields ...string) Option {
	return func(db *DB) {
		db.sanitizer = logger.NewSanitizer(fields...)
	}
}

// WithTracer wraps every execution in a span.
func WithTracer(t tracer.Tracer) Option {
	return func(db *DB) {
		if t != nil {
			db.tracer = t
		}
	}
}

// WithQueryHook sets a callback invoked after every execution.
func WithQueryHook(hook QueryHook) Option {
	return func(db *DB) {
		db.queryHook = hook
	}
}

// WithValidator rejects statements the validator flags before they reach the driver.
func WithValidator(v *security.Validator) Option {
	return func(db *DB) {
		db.validator = v
	}
}

// WithHealthCheck pings the database every interval in the background.
// A zero interval disables the check.
func WithHealthCheck(interval time.Duration) Option {
	return func(db *DB) {
		db.healthInterval = interval
	}
}

// Open opens a database with the given database/sql driver. The driver
// must be registered by the caller (blank import) and its name must match
// a dialect unless WithDialect is given.
func Open(driverName, dsn string, opts ...Option) (*DB, error) {
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	db, err := newDB(sqlDB, driverName, opts)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	db.ownsSQLDB = true
	return db, nil
}

// WrapDB wraps an existing *sql.DB. Close does not close sqlDB.
func WrapDB(sqlDB *sql.DB, driverName string, opts ...Option) (*DB, error) {
	return newDB(sqlDB, driverName, opts)
}

func newDB(sqlDB *sql.DB, driverName string, opts []Option) (*DB, error) {
	db := &DB{
		sqlDB:       sqlDB,
		driverName:  driverName,
		dialectName: driverName,
		stmtCache:   cache.NewStmtCache(cache.DefaultCapacity),
		prepare:     !IsClickHouseDriver(driverName),
		logger:      &logger.NoopLogger{},
		sanitizer:   logger.NewSanitizer(),
		tracer:      tracer.NoopTracer{},
	}

	for _, opt := range opts {
		opt(db)
	}

	d, ok := dialects.Lookup(db.dialectName)
	if !ok {
		return nil, WrapError(ErrUnsupportedDialect, db.dialectName)
	}
	db.dialect = d

	if db.maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(db.maxOpenConns)
	}
	if db.maxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(db.maxIdleConns)
	}

	if db.healthInterval > 0 {
		db.health = newHealthChecker(sqlDB, db.logger, db.healthInterval)
		db.health.start()
	}

	return db, nil
}

// IsClickHouseDriver reports whether driverName is one of the clickhouse-go
// drivers. They bind {name:Type} placeholders from the query context.
func IsClickHouseDriver(driverName string) bool {
	return driverName == "clickhouse" || driverName == "chhttp"
}

// quoting tells the validator how the dialect escapes string literals.
func (db *DB) quoting() security.Quoting {
	if db.dialect.BackslashEscapes() {
		return security.BackslashQuoting
	}
	return security.DoubledQuoting
}

// Query starts a query bound to this database and rendered with its dialect.
func (db *DB) Query() *Query {
	q := NewQuery(WithQueryDialect(db.dialect))
	q.db = db
	return q
}

// Close stops the health check, closes cached statements and, for
// databases opened with Open, the connection pool.
func (db *DB) Close() error {
	if db.health != nil {
		db.health.shutdown()
	}
	db.stmtCache.Clear()
	if db.ownsSQLDB {
		return db.sqlDB.Close()
	}
	return nil
}

// SQLDB returns the underlying *sql.DB.
func (db *DB) SQLDB() *sql.DB {
	return db.sqlDB
}

// DriverName returns the database/sql driver name.
func (db *DB) DriverName() string {
	return db.driverName
}

// Dialect returns the dialect queries are rendered with.
func (db *DB) Dialect() dialects.Dialect {
	return db.dialect
}

// PingContext verifies the connection.
func (db *DB) PingContext(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// IsHealthy reports the result of the last background health check.
// It is always true when WithHealthCheck was not used.
func (db *DB) IsHealthy() bool {
	return db.Health().Healthy
}

// Health returns the outcome of the last background ping. Without
// WithHealthCheck it reports healthy with a zero CheckedAt.
func (db *DB) Health() HealthStatus {
	if db.health == nil {
		return HealthStatus{Healthy: true}
	}
	return db.health.current()
}

// CacheStats returns prepared statement cache statistics.
func (db *DB) CacheStats() cache.Stats {
	return db.stmtCache.Stats()
}
