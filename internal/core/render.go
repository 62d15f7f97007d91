package core

import (
	"strings"

	"github.com/coregx/chsql/internal/dialects"
)

// render emits the clauses in fixed order:
// WITH, SELECT, FROM, JOIN, WHERE, GROUP BY, ORDER BY, then the dialect's
// LIMIT/OFFSET tail. Empty clauses are omitted.
func (q *Query) render(d dialects.Dialect) string {
	var sb strings.Builder

	if len(q.ctes) > 0 {
		sb.WriteString("WITH ")
		writeList(&sb, q.ctes, d)
		sb.WriteByte(' ')
	}

	sb.WriteString("SELECT ")
	if len(q.columns) == 0 {
		sb.WriteByte('*')
	} else {
		writeList(&sb, q.columns, d)
	}

	if q.from != nil {
		sb.WriteString(" FROM ")
		sb.WriteString(q.from.Build(d))
	}

	for _, j := range q.joins {
		sb.WriteString(" " + j.kind + " " + j.source.Build(d))
		if j.on != "" {
			sb.WriteString(" ON " + j.on)
		}
	}

	if len(q.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(buildChain(q.where, d))
	}

	if len(q.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		writeList(&sb, q.groupBy, d)
	}

	if len(q.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range q.orderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(o.exp.Build(d))
			if o.dir != "" {
				sb.WriteString(" " + o.dir)
			}
		}
	}

	if tail := d.LimitOffset(q.limit, q.offset); tail != "" {
		sb.WriteString(" " + tail)
	}

	return sb.String()
}

func writeList(sb *strings.Builder, exps []Expression, d dialects.Dialect) {
	for i, e := range exps {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Build(d))
	}
}
