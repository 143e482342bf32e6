package cql

import (
	"strings"

	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/queryir"
)

// BuildUpdate renders an UPDATE and compiles its extractor.
//
// Bindings on primary key columns form the WHERE clause; the rest are SET.
// IF EXISTS and when conditions are mutually exclusive by contract; when
// both are given, IF EXISTS wins and the when parameters are not emitted.
// Idempotency follows the rendered condition: when bindings on columns the
// table lacks are dropped first.
func BuildUpdate(q *queryir.Update) *GeneratedStatement {
	mutated, identifying := ir.SplitPrimaryKey(q.Schema.PrimaryKey(), ir.FilterBindings(q.Schema, q.Bindings))
	when := conditionBindings(q.Schema, q.IfExists, q.When)

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(tableRef(q.Keyspace, q.Table))
	if q.Options.HasTTL() {
		b.WriteString(" USING TTL ?")
	}
	b.WriteString(" SET ")
	b.WriteString(renderAssignments(mutated))
	b.WriteString(" WHERE ")
	b.WriteString(renderConditions(identifying))
	b.WriteString(renderIf(q.IfExists, when))

	class := Classify(q.Schema, mutated, q.IfExists || len(when) > 0)

	return &GeneratedStatement{
		Kind:       queryir.KindUpdate,
		Query:      b.String(),
		Extractor:  compileUpdateParams(mutated, identifying, when, q.Options.HasTTL()),
		Idempotent: class.Idempotent,
		IsCounter:  class.IsCounter,
	}
}

// compileUpdateParams: TTL, SET values, key values, then when values.
// Assignments emit their raw operand.
func compileUpdateParams(mutated, identifying, when []ir.PropertyBinding, ttl bool) Extractor {
	var slots []slot
	if ttl {
		slots = append(slots, ttlSlot)
	}
	for _, b := range mutated {
		// SET renders one placeholder per column.
		slots = append(slots, bindingSlot(b, nil, fromDocument))
	}
	slots = append(slots, compileSlots(identifying, fromDocument)...)
	slots = append(slots, compileSlots(when, fromWhen)...)
	return newExtractor(slots)
}

// conditionBindings returns the when bindings that will render, filtered
// against the schema; none when IF EXISTS takes precedence.
func conditionBindings(schema *ir.TableSchema, ifExists bool, when []ir.PropertyBinding) []ir.PropertyBinding {
	if ifExists {
		return nil
	}
	return ir.FilterBindings(schema, when)
}
