package cql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/testutil"
)

func TestClassify(t *testing.T) {
	users := testutil.UsersSchema()
	views := testutil.PageViewsSchema()

	tests := []struct {
		name        string
		schema      *ir.TableSchema
		mutated     []ir.PropertyBinding
		conditional bool
		want        Classification
	}{
		{
			name:   "no mutations",
			schema: users,
			want:   Classification{Idempotent: true},
		},
		{
			name:    "plain set",
			schema:  users,
			mutated: []ir.PropertyBinding{{Column: "name", Value: ir.Literal{V: "a"}}},
			want:    Classification{Idempotent: true},
		},
		{
			name:    "list overwrite",
			schema:  users,
			mutated: []ir.PropertyBinding{{Column: "tags", Value: ir.Literal{V: []string{"a"}}}},
			want:    Classification{Idempotent: true},
		},
		{
			name:    "list append",
			schema:  users,
			mutated: []ir.PropertyBinding{{Column: "tags", Value: ir.Append([]string{"a"})}},
			want:    Classification{Idempotent: false},
		},
		{
			name:    "list prepend",
			schema:  users,
			mutated: []ir.PropertyBinding{{Column: "tags", Value: ir.Prepend([]string{"a"})}},
			want:    Classification{Idempotent: false},
		},
		{
			name:    "numeric increment on non-counter column",
			schema:  users,
			mutated: []ir.PropertyBinding{{Column: "age", Value: ir.Incr(1)}},
			want:    Classification{Idempotent: true},
		},
		{
			name:    "counter",
			schema:  views,
			mutated: []ir.PropertyBinding{{Column: "views", Value: ir.Incr(1)}},
			want:    Classification{Idempotent: false, IsCounter: true},
		},
		{
			name:        "conditional",
			schema:      users,
			mutated:     []ir.PropertyBinding{{Column: "name", Value: ir.Literal{V: "a"}}},
			conditional: true,
			want:        Classification{Idempotent: false},
		},
		{
			name:    "unknown column",
			schema:  users,
			mutated: []ir.PropertyBinding{{Column: "missing", Value: ir.Incr(1)}},
			want:    Classification{Idempotent: true},
		},
		{
			name:    "nil schema",
			mutated: []ir.PropertyBinding{{Column: "views", Value: ir.Incr(1)}},
			want:    Classification{Idempotent: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.schema, tt.mutated, tt.conditional))
		})
	}
}
