package core

import (
	"context"
	"time"
)

// QueryEvent describes one execution of a rendered query.
type QueryEvent struct {
	// SQL is the rendered statement
	SQL string
	// Args are the driver arguments, as passed by the caller
	Args []any
	// Duration covers preparation, execution and scanning
	Duration time.Duration
	// Rows is the number of rows scanned; zero for Rows()
	Rows int64
	// Error is nil on success
	Error error
	// Operation is SELECT for builder queries
	Operation string
	// Method is the executing call: all, one, maps or rows
	Method string
	// Dialect is the rendering dialect
	Dialect string
}

// QueryHook is a callback function invoked after each query execution.
//
// Example:
//
//	db, _ := chsql.Open("clickhouse", dsn,
//	    chsql.WithQueryHook(func(ctx context.Context, e chsql.QueryEvent) {
//	        slog.Info("query", "sql", e.SQL, "duration", e.Duration, "err", e.Error)
//	    }))
type QueryHook func(ctx context.Context, event QueryEvent)

func (db *DB) invokeHook(ctx context.Context, event QueryEvent) {
	if db.queryHook != nil {
		db.queryHook(ctx, event)
	}
}
