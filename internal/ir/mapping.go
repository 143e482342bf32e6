package ir

// PropertyMapping maps one model property to a column.
type PropertyMapping struct {
	Property string `json:"property"`
	Column   string `json:"column"`
	Convert  bool   `json:"convert,omitempty"`
}

// ModelMapping binds a document model to one table.
// Properties are kept in declaration order; that order drives the order of
// columns and parameters in every generated statement.
type ModelMapping struct {
	Name       string            `json:"name"`
	Keyspace   string            `json:"keyspace"`
	Table      string            `json:"table"`
	Schema     *TableSchema      `json:"schema"`
	Properties []PropertyMapping `json:"properties"`
}

// Bindings derives property bindings for the properties present in doc,
// in declaration order. Each binding's Value is the document value's kind
// (see AsValue).
func (m *ModelMapping) Bindings(doc Document) []PropertyBinding {
	var out []PropertyBinding
	for _, p := range m.Properties {
		v, ok := doc.Property(p.Property)
		if !ok {
			continue
		}
		out = append(out, PropertyBinding{
			Property:        p.Property,
			Column:          p.Column,
			Value:           AsValue(v),
			NeedsConversion: p.Convert,
		})
	}
	return out
}

// ColumnFor returns the column mapped to property.
func (m *ModelMapping) ColumnFor(property string) (string, bool) {
	for _, p := range m.Properties {
		if p.Property == property {
			return p.Column, true
		}
	}
	return "", false
}
