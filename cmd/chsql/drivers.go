package main

// database/sql drivers selectable with database.driver.
import (
	_ "github.com/ClickHouse/clickhouse-go/v2" // clickhouse
	_ "github.com/go-sql-driver/mysql"         // mysql
	_ "github.com/jackc/pgx/v5/stdlib"         // pgx
	_ "github.com/lib/pq"                      // postgres
	_ "github.com/mattn/go-sqlite3"            // sqlite3
	_ "modernc.org/sqlite"                     // sqlite
)
