package mapper

import (
	"fmt"

	"github.com/roach88/cqlmap/internal/ir"
)

// Execute dispatches to Find, Insert, Update or Remove by operation name.
// "select" and "delete" are accepted as aliases.
func (m *Mapper) Execute(op string, doc ir.Document, opts Options) (*Executable, error) {
	switch op {
	case OpFind, "select":
		return m.Find(doc, FindOptions{
			Columns:        opts.Columns,
			OrderBy:        opts.OrderBy,
			Limit:          opts.Limit,
			AllowFiltering: opts.AllowFiltering,
		})
	case OpInsert:
		return m.Insert(doc, InsertOptions{IfNotExists: opts.IfNotExists, TTL: opts.TTL})
	case OpUpdate:
		return m.Update(doc, UpdateOptions{IfExists: opts.IfExists, When: opts.When, TTL: opts.TTL})
	case OpRemove, "delete":
		return m.Remove(doc, RemoveOptions{IfExists: opts.IfExists, When: opts.When, OnlyColumns: opts.OnlyColumns})
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}
