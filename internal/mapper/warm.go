package mapper

import (
	"fmt"

	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/queryir"
)

// Warm compiles the canonical statements of the mapping without executing
// them.
func (m *Mapper) Warm() error {
	for _, stmt := range m.Canonical() {
		if _, err := m.statement(stmt); err != nil {
			return fmt.Errorf("warm %s: %w", stmt.Kind(), err)
		}
	}
	return nil
}

// Canonical returns the statement requests Warm compiles: find by primary
// key, insert of every property, update of every property by primary key
// and remove by primary key. Counter tables get no insert, and their
// counter columns are bound as increments.
func (m *Mapper) Canonical() []queryir.Statement {
	schema := m.mapping.Schema
	keys := schema.PrimaryKey()
	keyDoc := ir.Fields{}
	fullDoc := ir.Fields{}
	hasCounter := false

	for _, p := range m.mapping.Properties {
		if schema != nil && !schema.HasColumn(p.Column) {
			continue
		}
		if _, ok := keys[p.Column]; ok {
			keyDoc[p.Property] = nil
		}
		if col, _ := schema.Column(p.Column); col.Type == ir.TypeCounter {
			fullDoc[p.Property] = ir.Incr(nil)
			hasCounter = true
			continue
		}
		fullDoc[p.Property] = nil
	}

	find, _ := m.findStatement(keyDoc, FindOptions{AllowFiltering: true})
	update, _ := m.updateStatement(fullDoc, UpdateOptions{})
	remove, _ := m.removeStatement(keyDoc, RemoveOptions{})
	stmts := []queryir.Statement{find, update, remove}
	if !hasCounter {
		insert, _ := m.insertStatement(fullDoc, InsertOptions{})
		stmts = append(stmts, insert)
	}
	return stmts
}
