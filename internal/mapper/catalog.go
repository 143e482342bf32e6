package mapper

import "github.com/roach88/cqlmap/internal/store"

// Entries returns the cached statements as catalog entries, in Compiled
// order.
func (m *Mapper) Entries() []store.Entry {
	compiled := m.Compiled()
	entries := make([]store.Entry, len(compiled))
	for i, c := range compiled {
		entries[i] = store.Entry{
			ShapeID:    c.ShapeID,
			Model:      m.mapping.Name,
			Kind:       c.Kind,
			Keyspace:   m.mapping.Keyspace,
			Table:      m.mapping.Table,
			Query:      c.Query,
			Params:     c.Params,
			Idempotent: c.Idempotent,
			IsCounter:  c.IsCounter,
		}
	}
	return entries
}
