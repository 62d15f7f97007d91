package benchmark

import (
	"testing"

	"github.com/coregx/chsql"
	"github.com/coregx/chsql/fx"
)

// ============================================================================
// Rendering benchmarks
// These measure SQL generation only; nothing is executed.
// ============================================================================

func BenchmarkGenerateSQL_Simple(b *testing.B) {
	q := chsql.NewQuery().
		Select("id", "email").
		From("users").
		Where("status", chsql.GT, 10).
		OrderBy(chsql.Desc("created_date")).
		Limit(10)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = q.GenerateSQL()
	}
}

func BenchmarkGenerateSQL_Report(b *testing.B) {
	lastVisits := chsql.NewQuery().
		Select("user_id", fx.AnyLast("created_date").As("last_visit")).
		From("visits").
		GroupBy("user_id").
		As("lv")

	q := chsql.NewQuery().
		WithAs(30, "window_days").
		With(fx.SubtractDays("today()", "window_days").As("since")).
		Select("u.id", "u.email", fx.Round(fx.Avg("o.total"), 2).As("avg_total"), fx.CountDistinct("o.id").As("orders")).
		From("users", "u").
		InnerJoin("orders", "o", "o.user_id = u.id").
		LeftJoin(lastVisits, "", "lv.user_id = u.id").
		Where("o.created_date", chsql.GE, chsql.NewExp("since")).
		AndWhereGroup(chsql.OR,
			chsql.C("u.status", chsql.IN, []string{"active", "pending"}),
			chsql.C(fx.PositionCaseInsensitive(fx.TranslateUTF8("u.first_name", "ÁáČ", "AaC"), "{name:String}"), chsql.GT, 0),
		).
		GroupBy("u.id", "u.email").
		OrderBy(chsql.Desc("avg_total")).
		Limit(100).
		Offset(200)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = q.GenerateSQL()
	}
}

// BenchmarkBuild_FromScratch includes constructing the tree on every iteration.
func BenchmarkBuild_FromScratch(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = chsql.NewQuery().
			Select("id", fx.Count("id").As("n")).
			From("events").
			Where("type", chsql.EQ, "click").
			AndWhere("ts", chsql.BETWEEN, []string{"2024-01-01", "2024-02-01"}).
			GroupBy("id").
			Limit(10).
			GenerateSQL()
	}
}

// BenchmarkInList compares IN over a 100 element list with IN over a subquery.
func BenchmarkInList(b *testing.B) {
	ids := make([]int, 100)
	for i := range ids {
		ids[i] = i + 1
	}

	b.Run("List", func(b *testing.B) {
		q := chsql.NewQuery().Select("id").From("users").Where("id", chsql.IN, ids)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = q.GenerateSQL()
		}
	})

	b.Run("Subquery", func(b *testing.B) {
		sub := chsql.NewQuery().Select("user_id").From("orders").Where("status", chsql.EQ, "active")
		q := chsql.NewQuery().Select("id").From("users").Where("id", chsql.IN, sub)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = q.GenerateSQL()
		}
	})
}

func BenchmarkDialects(b *testing.B) {
	for _, name := range []string{"clickhouse", "postgres", "mysql", "sqlite"} {
		d, _ := chsql.LookupDialect(name)
		q := chsql.NewQuery(chsql.WithQueryDialect(d)).
			Select("id").
			From("users").
			Where("name", chsql.EQ, "O'Brien").
			Limit(10).
			Offset(20)

		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = q.GenerateSQL()
			}
		})
	}
}
