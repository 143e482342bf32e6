package cql

import "github.com/roach88/cqlmap/internal/ir"

// Classification is the retry-safety verdict for a statement shape.
type Classification struct {
	Idempotent bool
	IsCounter  bool
}

// Classify decides retry safety from the mutated bindings' column types and
// value kinds plus whether the write is conditional. It depends only on the
// schema and the shape, never on operand values, so the verdict holds for
// every call against a cached statement.
//
// Rules:
//   - a list column bound to an assignment (append/prepend) is not idempotent
//   - a counter column is not idempotent and marks the statement as counter
//   - a conditional write (IF NOT EXISTS, IF EXISTS, IF <when>) is never idempotent
func Classify(schema *ir.TableSchema, mutated []ir.PropertyBinding, conditional bool) Classification {
	c := Classification{Idempotent: true}

	for _, b := range mutated {
		col, _ := schema.Column(b.Column)
		switch col.Type {
		case ir.TypeCounter:
			c.Idempotent = false
			c.IsCounter = true
		case ir.TypeList:
			if _, ok := b.Value.(ir.Assignment); ok {
				c.Idempotent = false
			}
		}
	}

	if conditional {
		c.Idempotent = false
	}
	return c
}
