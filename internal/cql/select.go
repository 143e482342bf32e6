package cql

import (
	"strings"

	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/queryir"
)

// BuildSelect renders a SELECT.
//
// The ALLOW FILTERING directive is always appended; q.AllowFiltering is
// currently not consulted.
func BuildSelect(q *queryir.Select) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(q.Columns, ", "))
	}

	b.WriteString(" FROM ")
	b.WriteString(tableRef(q.Keyspace, q.Table))

	if where := ir.FilterBindings(q.Schema, q.Where); len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(renderConditions(where))
	}

	if len(q.OrderBy) > 0 {
		parts := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			parts[i] = o.Column + " " + o.Direction
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}

	if q.Options.HasLimit() {
		b.WriteString(" LIMIT ?")
	}

	b.WriteString(" ALLOW FILTERING")
	return b.String()
}

// CompileSelectParams compiles the extractor for a SELECT shape: where
// values in order, then the limit.
func CompileSelectParams(q *queryir.Select) Extractor {
	slots := compileSlots(ir.FilterBindings(q.Schema, q.Where), fromDocument)
	if q.Options.HasLimit() {
		slots = append(slots, limitSlot)
	}
	return newExtractor(slots)
}

// GenerateSelect pairs BuildSelect with its extractor.
func GenerateSelect(q *queryir.Select) *GeneratedStatement {
	return &GeneratedStatement{
		Kind:       queryir.KindSelect,
		Query:      BuildSelect(q),
		Extractor:  CompileSelectParams(q),
		Idempotent: true,
	}
}
