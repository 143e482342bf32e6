package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/cqlmap/internal/ir"
)

// CompileModel parses a CUE model definition against already compiled
// tables. The referenced table must exist. A property without a column
// maps to the column of the same name.
func CompileModel(v cue.Value, tables map[string]*Table) (*ir.ModelMapping, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tableName, err := requiredString(v, "table")
	if err != nil {
		return nil, err
	}
	table, ok := tables[tableName]
	if !ok {
		return nil, &CompileError{
			Field:   "table",
			Message: fmt.Sprintf("unknown table %q", tableName),
			Pos:     v.LookupPath(cue.ParsePath("table")).Pos(),
		}
	}

	properties, err := parseProperties(v)
	if err != nil {
		return nil, err
	}

	return &ir.ModelMapping{
		Name:       lastLabel(v),
		Keyspace:   table.Keyspace,
		Table:      tableName,
		Schema:     table.Schema,
		Properties: properties,
	}, nil
}

func parseProperties(v cue.Value) ([]ir.PropertyMapping, error) {
	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if !propsVal.Exists() {
		return nil, &CompileError{
			Field:   "properties",
			Message: "properties are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := propsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var properties []ir.PropertyMapping
	for iter.Next() {
		pv := iter.Value()

		property, err := requiredString(pv, "property")
		if err != nil {
			return nil, err
		}
		column, err := optionalString(pv, "column")
		if err != nil {
			return nil, err
		}
		if column == "" {
			column = property
		}

		convert := false
		if cv := pv.LookupPath(cue.ParsePath("convert")); cv.Exists() {
			convert, err = cv.Bool()
			if err != nil {
				return nil, &CompileError{
					Field:   "properties.convert",
					Message: "convert must be a bool",
					Pos:     cv.Pos(),
				}
			}
		}

		properties = append(properties, ir.PropertyMapping{
			Property: property,
			Column:   column,
			Convert:  convert,
		})
	}
	return properties, nil
}
