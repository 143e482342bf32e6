package compiler

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/cqlmap/internal/ir"
)

// Table is a compiled table definition.
type Table struct {
	Keyspace string          `json:"keyspace"`
	Schema   *ir.TableSchema `json:"schema"`

	// Columns in declaration order.
	Columns []ir.ColumnDescriptor `json:"columns"`
}

// CompileTable parses a CUE value into a Table. The table name is the
// value's last path label:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`table: users: { ... }`)
//	table, err := CompileTable(v.LookupPath(cue.ParsePath("table.users")))
func CompileTable(v cue.Value) (*Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	name := lastLabel(v)

	keyspace, err := requiredString(v, "keyspace")
	if err != nil {
		return nil, err
	}

	columns, err := parseColumns(v)
	if err != nil {
		return nil, err
	}

	partitionKey, err := stringList(v, "partition_key")
	if err != nil {
		return nil, err
	}
	if len(partitionKey) == 0 {
		return nil, &CompileError{
			Field:   "partition_key",
			Message: "at least one partition key column is required",
			Pos:     v.Pos(),
		}
	}

	clusteringKey, err := stringList(v, "clustering_key")
	if err != nil {
		return nil, err
	}

	schema := ir.NewTableSchema(name, columns, partitionKey, clusteringKey)
	for _, key := range []struct {
		field   string
		columns []string
	}{
		{"partition_key", partitionKey},
		{"clustering_key", clusteringKey},
	} {
		if i := slices.IndexFunc(key.columns, func(k string) bool { return !schema.HasColumn(k) }); i >= 0 {
			return nil, &CompileError{
				Field:   key.field,
				Message: fmt.Sprintf("key column %q is not declared in columns", key.columns[i]),
				Pos:     v.LookupPath(cue.ParsePath(key.field)).Pos(),
			}
		}
	}

	return &Table{Keyspace: keyspace, Schema: schema, Columns: columns}, nil
}

func parseColumns(v cue.Value) ([]ir.ColumnDescriptor, error) {
	columnsVal := v.LookupPath(cue.ParsePath("columns"))
	if !columnsVal.Exists() {
		return nil, &CompileError{
			Field:   "columns",
			Message: "columns are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := columnsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var columns []ir.ColumnDescriptor
	for iter.Next() {
		name := iter.Label()
		declared, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "columns." + name,
				Message: "column type must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		if strings.TrimSpace(declared) == "" {
			return nil, &CompileError{
				Field:   "columns." + name,
				Message: "column type is required",
				Pos:     iter.Value().Pos(),
			}
		}
		columns = append(columns, ir.ColumnDescriptor{Name: name, Type: ir.ParseColumnType(declared)})
	}

	if len(columns) == 0 {
		return nil, &CompileError{
			Field:   "columns",
			Message: "at least one column is required",
			Pos:     columnsVal.Pos(),
		}
	}
	return columns, nil
}

// lastLabel returns the definition's own label. String labels that are not
// plain identifiers ("my-table") come back without their quotes.
func lastLabel(v cue.Value) string {
	labels := v.Path().Selectors()
	if len(labels) == 0 {
		return ""
	}
	sel := labels[len(labels)-1]
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// optionalString returns "" when field is absent.
func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// stringList reads an optional list of strings.
func stringList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: "entries must be strings",
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}
