package cql

import (
	"strings"

	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/queryir"
)

// BuildDelete renders a DELETE and compiles its extractor.
//
// By default the whole row is deleted. With Options.DeleteOnlyColumns the
// non-key bound columns are listed instead; when none survive filtering the
// statement silently falls back to the whole-row form.
func BuildDelete(q *queryir.Delete) *GeneratedStatement {
	mutated, identifying := ir.SplitPrimaryKey(q.Schema.PrimaryKey(), ir.FilterBindings(q.Schema, q.Bindings))
	when := conditionBindings(q.Schema, q.IfExists, q.When)

	var b strings.Builder
	b.WriteString("DELETE ")
	if q.Options.DeleteOnlyColumns && len(mutated) > 0 {
		b.WriteString(strings.Join(columnNames(mutated), ", "))
		b.WriteString(" ")
	}
	b.WriteString("FROM ")
	b.WriteString(tableRef(q.Keyspace, q.Table))
	b.WriteString(" WHERE ")
	b.WriteString(renderConditions(identifying))
	b.WriteString(renderIf(q.IfExists, when))

	slots := compileSlots(identifying, fromDocument)
	slots = append(slots, compileSlots(when, fromWhen)...)

	return &GeneratedStatement{
		Kind:       queryir.KindDelete,
		Query:      b.String(),
		Extractor:  newExtractor(slots),
		Idempotent: !q.IfExists && len(when) == 0,
	}
}
