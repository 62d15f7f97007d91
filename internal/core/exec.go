package core

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/coregx/chsql/internal/logger"
	"github.com/coregx/chsql/internal/tracer"
)

// All runs the query and appends every row to dest, a pointer to a slice of
// structs (or struct pointers) whose fields are matched to columns by db tag.
// args are passed to the driver untouched, e.g. values for {name:Type}
// placeholders or clickhouse.Named parameters.
func (q *Query) All(ctx context.Context, dest any, args ...any) error {
	return q.run(ctx, "all", args, func(rows *sql.Rows) (int64, error) {
		return globalScanner.scanAll(rows, dest)
	})
}

// One runs the query and scans the first row into dest, a pointer to a struct.
// It returns ErrNoRows when the result is empty.
func (q *Query) One(ctx context.Context, dest any, args ...any) error {
	return q.run(ctx, "one", args, func(rows *sql.Rows) (int64, error) {
		return globalScanner.scanOne(rows, dest)
	})
}

// Maps runs the query and returns each row as a column name to value map.
func (q *Query) Maps(ctx context.Context, args ...any) ([]map[string]any, error) {
	var out []map[string]any
	err := q.run(ctx, "maps", args, func(rows *sql.Rows) (int64, error) {
		var err error
		out, err = scanMaps(rows)
		return int64(len(out)), err
	})
	return out, err
}

// Rows runs the query and returns the open result set. The caller must close it.
func (q *Query) Rows(ctx context.Context, args ...any) (*sql.Rows, error) {
	if err := q.executable(); err != nil {
		return nil, err
	}
	query, err := q.GenerateSQL()
	if err != nil {
		return nil, err
	}

	ctx, span := q.db.tracer.StartSpan(ctx, "chsql.query.rows")

	start := time.Now()
	rows, err := q.db.query(ctx, query, args)
	q.db.observe(ctx, span, "rows", query, args, 0, time.Since(start), err)
	return rows, err
}

func (q *Query) executable() error {
	if q.err != nil {
		return q.err
	}
	if q.db == nil {
		return ErrNoExecutor
	}
	return nil
}

// run renders the query, executes it, hands the rows to consume and
// reports the outcome to the logger, tracer and hook.
func (q *Query) run(ctx context.Context, name string, args []any, consume func(*sql.Rows) (int64, error)) error {
	if err := q.executable(); err != nil {
		return err
	}
	query, err := q.GenerateSQL()
	if err != nil {
		return err
	}

	ctx, span := q.db.tracer.StartSpan(ctx, "chsql.query."+name)

	start := time.Now()
	var n int64
	rows, err := q.db.query(ctx, query, args)
	if err == nil {
		n, err = consume(rows)
		if closeErr := rows.Close(); err == nil {
			err = closeErr
		}
	}
	q.db.observe(ctx, span, name, query, args, n, time.Since(start), err)
	return err
}

// query validates and executes a statement, through the statement cache
// when preparation is enabled.
func (db *DB) query(ctx context.Context, query string, args []any) (*sql.Rows, error) {
	if db.validator != nil {
		if err := db.validator.ValidateQuery(query, db.quoting()); err != nil {
			return nil, err
		}
		if err := db.validator.ValidateArgs(args); err != nil {
			return nil, err
		}
	}

	if !db.prepare {
		return db.sqlDB.QueryContext(ctx, query, args...)
	}

	stmt, release, err := db.prepared(ctx, query)
	if err != nil {
		return nil, WrapError(err, "prepare")
	}
	// Open rows keep the statement alive on their own, so the pin only
	// has to cover the call.
	defer release()
	return stmt.QueryContext(ctx, args...)
}

// prepared returns a pinned statement for query, preparing and caching it
// on a miss.
func (db *DB) prepared(ctx context.Context, query string) (*sql.Stmt, func(), error) {
	if stmt, release, ok := db.stmtCache.Acquire(query); ok {
		return stmt, release, nil
	}

	stmt, err := db.sqlDB.PrepareContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	stmt, release := db.stmtCache.Add(query, stmt)
	return stmt, release, nil
}

// observe logs, traces and reports one execution.
func (db *DB) observe(ctx context.Context, span tracer.Span, method, query string, args []any, rows int64, elapsed time.Duration, err error) {
	operation := tracer.DetectOperation(query)

	masked := db.sanitizer.MaskSQL(query)
	fields := []any{
		"sql", masked,
		"args", logger.FormatArgs(db.sanitizer.MaskArgs(query, args)),
		"duration_ms", elapsed.Milliseconds(),
		"database", db.driverName,
		"dialect", db.dialect.Name(),
	}
	switch {
	case errors.Is(err, ErrNoRows):
		db.logger.Warn("query returned no rows", fields...)
	case err != nil:
		db.logger.Error("query execution failed", append(fields, "error", err)...)
	default:
		db.logger.Info("query executed", append(fields, "rows", rows)...)
	}

	span.Finish(&tracer.QueryMetadata{
		SQL:       masked,
		Duration:  elapsed,
		Rows:      rows,
		Error:     err,
		System:    db.driverName,
		Dialect:   db.dialect.Name(),
		Operation: operation,
	})

	db.invokeHook(ctx, QueryEvent{
		SQL:       query,
		Args:      args,
		Duration:  elapsed,
		Rows:      rows,
		Error:     err,
		Operation: operation,
		Method:    method,
		Dialect:   db.dialect.Name(),
	})
}
