package cql

import (
	"strings"

	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/queryir"
)

// BuildInsert renders an INSERT and compiles its extractor.
//
// A guarded insert (IF NOT EXISTS) is not idempotent: after a lost
// acknowledgment, a retry cannot tell its own earlier success from a
// genuine "already exists".
func BuildInsert(q *queryir.Insert) *GeneratedStatement {
	bindings := ir.FilterBindings(q.Schema, q.Bindings)

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(tableRef(q.Keyspace, q.Table))
	b.WriteString(" (")
	b.WriteString(strings.Join(columnNames(bindings), ", "))
	b.WriteString(") VALUES (")
	b.WriteString(placeholders(len(bindings)))
	b.WriteString(")")

	if q.IfNotExists {
		b.WriteString(" IF NOT EXISTS")
	}
	if q.Options.HasTTL() {
		b.WriteString(" USING TTL ?")
	}

	return &GeneratedStatement{
		Kind:       queryir.KindInsert,
		Query:      b.String(),
		Extractor:  compileInsertParams(bindings, q.Options.HasTTL()),
		Idempotent: Classify(q.Schema, nil, q.IfNotExists).Idempotent,
	}
}

// compileInsertParams: binding values in order, then the TTL.
func compileInsertParams(bindings []ir.PropertyBinding, ttl bool) Extractor {
	slots := make([]slot, 0, len(bindings)+1)
	for _, b := range bindings {
		// One placeholder per column, whatever the value kind.
		slots = append(slots, bindingSlot(b, nil, fromDocument))
	}
	if ttl {
		slots = append(slots, ttlSlot)
	}
	return newExtractor(slots)
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
