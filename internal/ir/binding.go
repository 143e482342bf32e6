package ir

// PropertyBinding ties a document property to a table column.
//
// Value is the shape sample: its kind (Literal, Scalar, Composite,
// Assignment) decides how the column renders. The document handed to the
// extractor later holds the same kind with the actual operands.
//
// Order within a []PropertyBinding is the positional contract between query
// text and extracted parameters.
type PropertyBinding struct {
	Property        string `json:"property"`
	Column          string `json:"column"`
	Value           Value  `json:"-"`
	NeedsConversion bool   `json:"needs_conversion,omitempty"`
}

// FilterBindings drops bindings whose column is absent from schema,
// preserving the relative order of the rest. A nil schema keeps everything.
func FilterBindings(schema *TableSchema, bindings []PropertyBinding) []PropertyBinding {
	if schema == nil {
		return bindings
	}
	out := make([]PropertyBinding, 0, len(bindings))
	for _, b := range bindings {
		if schema.HasColumn(b.Column) {
			out = append(out, b)
		}
	}
	return out
}

// SplitPrimaryKey partitions bindings into mutated (non primary key) and
// identifying (primary key) sets, keeping caller order within each.
func SplitPrimaryKey(primaryKey map[string]struct{}, bindings []PropertyBinding) (mutated, identifying []PropertyBinding) {
	for _, b := range bindings {
		if _, ok := primaryKey[b.Column]; ok {
			identifying = append(identifying, b)
		} else {
			mutated = append(mutated, b)
		}
	}
	return mutated, identifying
}
