package benchmark

import (
	"context"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/coregx/chsql"
)

type BenchUser struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

// setupBenchDB creates an in-memory SQLite database with 1000 users.
func setupBenchDB(b *testing.B, opts ...chsql.Option) *chsql.DB {
	opts = append([]chsql.Option{chsql.WithMaxOpenConns(1)}, opts...)
	db, err := chsql.Open("sqlite", ":memory:", opts...)
	if err != nil {
		b.Fatalf("Failed to open database: %v", err)
	}

	ctx := context.Background()
	sqlDB := db.SQLDB()
	if _, err := sqlDB.ExecContext(ctx, `CREATE TABLE bench_users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, email TEXT NOT NULL)`); err != nil {
		b.Fatalf("Failed to create test table: %v", err)
	}
	for i := 1; i <= 1000; i++ {
		_, err := sqlDB.ExecContext(ctx,
			"INSERT INTO bench_users (id, name, email) VALUES (?, ?, ?)",
			i, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i))
		if err != nil {
			b.Fatalf("Failed to insert test data: %v", err)
		}
	}
	return db
}

func BenchmarkOne(b *testing.B) {
	for _, prepared := range []bool{true, false} {
		b.Run(fmt.Sprintf("prepared=%t", prepared), func(b *testing.B) {
			db := setupBenchDB(b, chsql.WithPreparedStatements(prepared))
			defer db.Close()

			ctx := context.Background()
			q := db.Query().Select("id", "name", "email").From("bench_users").Where("id", chsql.EQ, 500)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				var u BenchUser
				if err := q.One(ctx, &u); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkAll(b *testing.B) {
	db := setupBenchDB(b)
	defer db.Close()

	ctx := context.Background()
	q := db.Query().Select("id", "name", "email").From("bench_users").OrderBy(chsql.Asc("id")).Limit(100)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var users []BenchUser
		if err := q.All(ctx, &users); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMaps(b *testing.B) {
	db := setupBenchDB(b)
	defer db.Close()

	ctx := context.Background()
	q := db.Query().Select("id", "name", "email").From("bench_users").OrderBy(chsql.Asc("id")).Limit(100)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := q.Maps(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkOne_WithValidator measures the cost of screening every statement.
func BenchmarkOne_WithValidator(b *testing.B) {
	db := setupBenchDB(b, chsql.WithValidator(chsql.NewValidator()))
	defer db.Close()

	ctx := context.Background()
	q := db.Query().Select("id", "name", "email").From("bench_users").Where("id", chsql.EQ, 500)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var u BenchUser
		if err := q.One(ctx, &u); err != nil {
			b.Fatal(err)
		}
	}
}
