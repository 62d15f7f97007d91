// Package chsql builds ClickHouse SELECT statements from composable parts
// (columns, function calls, conditions, joins, common table expressions and
// subqueries) and renders them into a single SQL string. Bare strings in
// column positions are inserted as SQL text; values in comparison
// positions are quoted as data. Rendered queries can be executed through
// database/sql with struct scanning, statement caching, logging and
// OpenTelemetry tracing.
//
//	q := chsql.NewQuery().
//	    Select("id", "email").
//	    From("users").
//	    Where("status", chsql.GT, 10).
//	    OrderBy(chsql.Desc("created_date")).
//	    Limit(10)
//	sql, err := q.GenerateSQL()
//	// SELECT id, email FROM users WHERE status > 10 ORDER BY created_date DESC LIMIT 10
package chsql

import (
	"github.com/coregx/chsql/internal/cache"
	"github.com/coregx/chsql/internal/core"
	"github.com/coregx/chsql/internal/dialects"
	"github.com/coregx/chsql/internal/logger"
	"github.com/coregx/chsql/internal/security"
	"github.com/coregx/chsql/internal/tracer"
)

type (
	// Query is a SELECT statement under construction.
	Query = core.Query
	// QueryOption configures a standalone Query.
	QueryOption = core.QueryOption
	// Expression is a node of the query tree.
	Expression = core.Expression
	// RawExp is SQL text inserted verbatim.
	RawExp = core.RawExp
	// Literal is a quoted-as-data value.
	Literal = core.Literal
	// LiteralKind identifies the data type of a Literal.
	LiteralKind = core.LiteralKind
	// FuncExp is a SQL function call.
	FuncExp = core.FuncExp
	// Cond is a single predicate.
	Cond = core.Cond
	// ConditionGroup is a parenthesized AND/OR group of predicates.
	ConditionGroup = core.ConditionGroup
	// ConditionItem is a Cond or a ConditionGroup.
	ConditionItem = core.ConditionItem
	// Operator is a comparison operator.
	Operator = core.Operator
	// Logic is AND or OR.
	Logic = core.Logic
	// OrderItem is one ORDER BY entry.
	OrderItem = core.OrderItem

	// DB executes rendered queries through database/sql.
	DB = core.DB
	// Option is a functional option for configuring DB.
	Option = core.Option
	// QueryEvent describes one execution.
	QueryEvent = core.QueryEvent
	// QueryHook is called after every execution.
	QueryHook = core.QueryHook
	// CacheStats holds prepared statement cache statistics.
	CacheStats = cache.Stats
	// HealthStatus is the outcome of the last background ping.
	HealthStatus = core.HealthStatus

	// InvalidOperatorError reports an unsupported operator or combinator.
	InvalidOperatorError = core.InvalidOperatorError
	// InvalidArgumentError reports an argument that does not fit its slot.
	InvalidArgumentError = core.InvalidArgumentError

	// Dialect defines database-specific rendering rules.
	Dialect = dialects.Dialect
	// Logger is the structured logger used during execution.
	Logger = logger.Logger
	// Tracer starts spans around execution.
	Tracer = tracer.Tracer
	// Validator screens statements before execution.
	Validator = security.Validator
)

// Operators.
const (
	EQ      = core.EQ
	NE      = core.NE
	LT      = core.LT
	LE      = core.LE
	GT      = core.GT
	GE      = core.GE
	BETWEEN = core.BETWEEN
	IN      = core.IN
	NotIn   = core.NotIn
	LIKE    = core.LIKE
	NotLike = core.NotLike

	AND = core.AND
	OR  = core.OR
)

// Literal kinds.
const (
	NullLiteral   = core.NullLiteral
	NumberLiteral = core.NumberLiteral
	StringLiteral = core.StringLiteral
	BoolLiteral   = core.BoolLiteral
	ArrayLiteral  = core.ArrayLiteral
)

// Errors.
var (
	ErrInvalidOperator    = core.ErrInvalidOperator
	ErrInvalidArgument    = core.ErrInvalidArgument
	ErrNoExecutor         = core.ErrNoExecutor
	ErrUnsupportedDialect = core.ErrUnsupportedDialect
	ErrNoRows             = core.ErrNoRows
	ErrDangerousSQL       = security.ErrDangerousSQL
)

// Re-export core functions.
var (
	NewQuery         = core.NewQuery
	WithQueryDialect = core.WithQueryDialect

	// Expression builders
	NewExp     = core.NewExp
	NewLiteral = core.NewLiteral
	C          = core.C
	And        = core.And
	Or         = core.Or
	Group      = core.Group
	Asc        = core.Asc
	Desc       = core.Desc

	// Execution
	Open                   = core.Open
	WrapDB                 = core.WrapDB
	WithMaxOpenConns       = core.WithMaxOpenConns
	WithMaxIdleConns       = core.WithMaxIdleConns
	WithStmtCacheCapacity  = core.WithStmtCacheCapacity
	WithPreparedStatements = core.WithPreparedStatements
	WithDialect            = core.WithDialect
	WithLogger             = core.WithLogger
	WithSensitiveFields    = core.WithSensitiveFields
	WithTracer             = core.WithTracer
	WithQueryHook          = core.WithQueryHook
	WithValidator          = core.WithValidator
	WithHealthCheck        = core.WithHealthCheck
	WrapError              = core.WrapError

	// Observability and safety
	NewSlogAdapter = logger.NewSlogAdapter
	NewOtelTracer  = tracer.NewOtelTracer
	NewValidator   = security.NewValidator
	WithStrict     = security.WithStrict

	// Dialects
	RegisterDialect = dialects.RegisterDialect
	LookupDialect   = dialects.Lookup

	// IsClickHouseDriver reports whether a driver binds ClickHouse query parameters.
	IsClickHouseDriver = core.IsClickHouseDriver
)
