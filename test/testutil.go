//go:build integration
// +build integration

package test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	chcontainer "github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)

	"github.com/coregx/chsql"
)

// DatabaseSetup encapsulates database connection and cleanup.
type DatabaseSetup struct {
	DB        *chsql.DB
	Container testcontainers.Container
	Dialect   string
	DSN       string
}

// Close cleans up database resources.
func (ds *DatabaseSetup) Close() {
	if ds.DB != nil {
		ds.DB.Close() //nolint:errcheck
	}
	if ds.Container != nil {
		ds.Container.Terminate(context.Background()) //nolint:errcheck
	}
}

// Exec runs setup statements directly on the connection pool.
func (ds *DatabaseSetup) Exec(t *testing.T, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := ds.DB.SQLDB().ExecContext(context.Background(), stmt)
		require.NoError(t, err, stmt)
	}
}

// SetupClickHouseTestDB creates a ClickHouse test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupClickHouseTestDB(t *testing.T, opts ...chsql.Option) *DatabaseSetup {
	ctx := context.Background()

	if dsn := os.Getenv("CLICKHOUSE_TEST_DSN"); dsn != "" {
		db, err := chsql.Open("clickhouse", dsn, opts...)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "clickhouse", DSN: dsn}
	}

	chContainer, err := chcontainer.Run(
		ctx,
		"clickhouse/clickhouse-server:24.8-alpine",
		chcontainer.WithDatabase("testdb"),
		chcontainer.WithUsername("user"),
		chcontainer.WithPassword("password"),
	)
	if err != nil {
		t.Skip("Docker not available for ClickHouse integration tests: " + err.Error())
	}

	dsn, err := chContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := chsql.Open("clickhouse", dsn, opts...)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		Container: chContainer,
		Dialect:   "clickhouse",
		DSN:       dsn,
	}
}

// SetupPostgreSQLTestDB creates a PostgreSQL test database on the given
// driver ("postgres" or "pgx").
// Uses testcontainers if available, falls back to env DSN.
func SetupPostgreSQLTestDB(t *testing.T, driver string, opts ...chsql.Option) *DatabaseSetup {
	ctx := context.Background()

	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		db, err := chsql.Open(driver, dsn, opts...)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "postgres", DSN: dsn}
	}

	pgContainer, err := postgres.Run(
		ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for PostgreSQL integration tests: " + err.Error())
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := chsql.Open(driver, dsn, opts...)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		Container: pgContainer,
		Dialect:   "postgres",
		DSN:       dsn,
	}
}

// SetupMySQLTestDB creates a MySQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupMySQLTestDB(t *testing.T, opts ...chsql.Option) *DatabaseSetup {
	ctx := context.Background()

	if dsn := os.Getenv("MYSQL_TEST_DSN"); dsn != "" {
		dsn = withParseTime(dsn)
		db, err := chsql.Open("mysql", dsn, opts...)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "mysql", DSN: dsn}
	}

	mysqlContainer, err := mysql.Run(
		ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for MySQL integration tests: " + err.Error())
	}

	dsn, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)
	dsn = withParseTime(dsn)

	db, err := chsql.Open("mysql", dsn, opts...)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		Container: mysqlContainer,
		Dialect:   "mysql",
		DSN:       dsn,
	}
}

// withParseTime makes the MySQL driver return time.Time for DATE columns.
func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=true") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// SetupSQLiteTestDB creates an in-memory SQLite database.
// Always works, no external dependencies.
func SetupSQLiteTestDB(t *testing.T, opts ...chsql.Option) *DatabaseSetup {
	// One connection: every new connection to :memory: is a fresh database.
	opts = append([]chsql.Option{chsql.WithMaxOpenConns(1)}, opts...)
	db, err := chsql.Open("sqlite", ":memory:", opts...)
	require.NoError(t, err)

	return &DatabaseSetup{DB: db, Dialect: "sqlite", DSN: ":memory:"}
}

// CreateSchema creates and fills the users and visits tables.
func CreateSchema(t *testing.T, ds *DatabaseSetup) {
	t.Helper()

	switch ds.Dialect {
	case "clickhouse":
		ds.Exec(t,
			`CREATE TABLE users (id Int64, name String, email String, status Int64) ENGINE = MergeTree ORDER BY id`,
			`CREATE TABLE visits (id Int64, user_id Int64, page String, created_date Date) ENGINE = MergeTree ORDER BY id`,
		)
	default:
		ds.Exec(t,
			`CREATE TABLE users (id BIGINT PRIMARY KEY, name VARCHAR(255) NOT NULL, email VARCHAR(255) NOT NULL, status BIGINT NOT NULL)`,
			`CREATE TABLE visits (id BIGINT PRIMARY KEY, user_id BIGINT NOT NULL, page VARCHAR(255) NOT NULL, created_date DATE NOT NULL)`,
		)
	}

	ds.Exec(t,
		`INSERT INTO users (id, name, email, status) VALUES
			(1, 'alice', 'alice@example.com', 1),
			(2, 'bob', 'bob@example.com', 0),
			(3, 'carol', 'carol@example.com', 1),
			(4, 'dave', 'dave@example.com', 1)`,
		`INSERT INTO visits (id, user_id, page, created_date) VALUES
			(1, 1, '/home', '2024-01-01'),
			(2, 1, '/docs', '2024-01-02'),
			(3, 2, '/home', '2024-01-02'),
			(4, 3, '/pricing', '2024-01-03'),
			(5, 3, '/home', '2024-01-03'),
			(6, 3, '/docs', '2024-01-04')`,
	)
}

// forEachDatabase runs fn against every supported database, each filled
// by CreateSchema.
func forEachDatabase(t *testing.T, fn func(t *testing.T, ds *DatabaseSetup)) {
	setups := []struct {
		name  string
		setup func(t *testing.T) *DatabaseSetup
	}{
		{"clickhouse", func(t *testing.T) *DatabaseSetup { return SetupClickHouseTestDB(t) }},
		{"postgres", func(t *testing.T) *DatabaseSetup { return SetupPostgreSQLTestDB(t, "postgres") }},
		{"mysql", func(t *testing.T) *DatabaseSetup { return SetupMySQLTestDB(t) }},
		{"sqlite", func(t *testing.T) *DatabaseSetup { return SetupSQLiteTestDB(t) }},
	}

	for _, s := range setups {
		t.Run(s.name, func(t *testing.T) {
			ds := s.setup(t)
			defer ds.Close()

			CreateSchema(t, ds)
			fn(t, ds)
		})
	}
}
