package mapper

import (
	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/queryir"
)

// FindOptions configures a read.
type FindOptions struct {
	// Columns to select; empty selects all.
	Columns []string

	// OrderBy entries, rendered verbatim.
	OrderBy []queryir.Order

	// Limit caps the result size when non-nil.
	Limit *int

	// AllowFiltering is accepted for API symmetry; the directive is always
	// rendered.
	AllowFiltering bool
}

// InsertOptions configures an insert.
type InsertOptions struct {
	IfNotExists bool
	TTL         *int
}

// UpdateOptions configures an update.
//
// When maps property names to condition values (plain values or
// comparisons); conditions render in mapping declaration order.
type UpdateOptions struct {
	IfExists bool
	When     ir.Fields
	TTL      *int
}

// RemoveOptions configures a delete.
type RemoveOptions struct {
	IfExists bool
	When     ir.Fields

	// OnlyColumns deletes the bound non-key columns instead of the row.
	OnlyColumns bool
}

// Operation names accepted by Execute.
const (
	OpFind   = "find"
	OpInsert = "insert"
	OpUpdate = "update"
	OpRemove = "remove"
)

// Options is the union of all per-operation options, for callers that pick
// the operation at runtime. Fields that do not apply to the operation are
// ignored.
type Options struct {
	Columns        []string        `yaml:"columns,omitempty" json:"columns,omitempty"`
	OrderBy        []queryir.Order `yaml:"order_by,omitempty" json:"order_by,omitempty"`
	Limit          *int            `yaml:"limit,omitempty" json:"limit,omitempty"`
	AllowFiltering bool            `yaml:"allow_filtering,omitempty" json:"allow_filtering,omitempty"`
	IfNotExists    bool            `yaml:"if_not_exists,omitempty" json:"if_not_exists,omitempty"`
	IfExists       bool            `yaml:"if_exists,omitempty" json:"if_exists,omitempty"`
	TTL            *int            `yaml:"ttl,omitempty" json:"ttl,omitempty"`
	When           ir.Fields       `yaml:"when,omitempty" json:"when,omitempty"`
	OnlyColumns    bool            `yaml:"only_columns,omitempty" json:"only_columns,omitempty"`
}
