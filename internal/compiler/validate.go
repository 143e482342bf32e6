package compiler

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/cqlmap/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Table errors (E101-E109)
	ErrKeyColumnCollection = "E101" // key column has a non-frozen collection type
	ErrCounterMixed        = "E102" // counter table with a regular column
	ErrNonNormalName       = "E103" // table or column name not in Unicode NFC

	// Model errors (E110-E119)
	ErrEmptyProperty        = "E110" // property name is empty
	ErrDuplicateProperty    = "E111" // property mapped twice
	ErrDuplicateColumn      = "E112" // column mapped by two properties
	ErrUnknownColumn        = "E113" // column not in table, dropped at build time
	ErrUnmappedPartitionKey = "E114" // partition key column not mapped
	ErrNonNormalProperty    = "E115" // property name not in Unicode NFC
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a schema validation finding.
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsWarning reports whether the finding does not block compilation.
func (e ValidationError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// Validate checks compiled tables and model mappings.
// Returns all findings (does not fail-fast).
func Validate(v any) []ValidationError {
	switch val := v.(type) {
	case *Table:
		return validateTable(val)
	case *ir.ModelMapping:
		return validateModel(val)
	default:
		return []ValidationError{{
			Field:    "type",
			Message:  fmt.Sprintf("unsupported IR type: %T", v),
			Code:     ErrUnsupportedIRType,
			Severity: SeverityError,
		}}
	}
}

func validateTable(t *Table) []ValidationError {
	var errs []ValidationError
	keys := t.Schema.PrimaryKey()

	// E101: collection key columns
	for _, col := range t.Columns {
		if _, ok := keys[col.Name]; !ok {
			continue
		}
		switch col.Type {
		case ir.TypeList, ir.TypeSet, ir.TypeMap, ir.TypeCounter:
			errs = append(errs, ValidationError{
				Field:    "columns." + col.Name,
				Message:  fmt.Sprintf("key column %q cannot have type %s", col.Name, col.Type),
				Code:     ErrKeyColumnCollection,
				Severity: SeverityError,
			})
		}
	}

	// E103: names render verbatim; a decomposed spelling is a different name
	if !norm.NFC.IsNormalString(t.Schema.Name) {
		errs = append(errs, nonNormal("name", ErrNonNormalName, "table", t.Schema.Name))
	}
	for _, col := range t.Columns {
		if !norm.NFC.IsNormalString(col.Name) {
			errs = append(errs, nonNormal("columns."+col.Name, ErrNonNormalName, "column", col.Name))
		}
	}

	// E102: counter tables hold only key and counter columns
	hasCounter := false
	var regular []string
	for _, col := range t.Columns {
		if _, ok := keys[col.Name]; ok {
			continue
		}
		if col.Type == ir.TypeCounter {
			hasCounter = true
		} else {
			regular = append(regular, col.Name)
		}
	}
	if hasCounter && len(regular) > 0 {
		errs = append(errs, ValidationError{
			Field:    "columns",
			Message:  fmt.Sprintf("counter table %q has regular columns: %s", t.Schema.Name, strings.Join(regular, ", ")),
			Code:     ErrCounterMixed,
			Severity: SeverityError,
		})
	}

	return errs
}

func validateModel(m *ir.ModelMapping) []ValidationError {
	var errs []ValidationError
	properties := make(map[string]bool)
	columns := make(map[string]string)

	for i, p := range m.Properties {
		field := fmt.Sprintf("properties[%d]", i)

		// E110: empty property name
		if strings.TrimSpace(p.Property) == "" {
			errs = append(errs, ValidationError{
				Field:    field + ".property",
				Message:  "property name is required",
				Code:     ErrEmptyProperty,
				Severity: SeverityError,
			})
			continue
		}

		// E111: duplicate property
		if properties[p.Property] {
			errs = append(errs, ValidationError{
				Field:    field + ".property",
				Message:  fmt.Sprintf("duplicate property: %q", p.Property),
				Code:     ErrDuplicateProperty,
				Severity: SeverityError,
			})
		}
		properties[p.Property] = true

		// E115: property names are matched byte for byte against documents
		if !norm.NFC.IsNormalString(p.Property) {
			errs = append(errs, nonNormal(field+".property", ErrNonNormalProperty, "property", p.Property))
		}

		// E112: column mapped twice
		if other, ok := columns[p.Column]; ok {
			errs = append(errs, ValidationError{
				Field:    field + ".column",
				Message:  fmt.Sprintf("column %q is already mapped by property %q", p.Column, other),
				Code:     ErrDuplicateColumn,
				Severity: SeverityError,
			})
		} else {
			columns[p.Column] = p.Property
		}

		// E113: column unknown to the table
		if m.Schema != nil && !m.Schema.HasColumn(p.Column) {
			errs = append(errs, ValidationError{
				Field:    field + ".column",
				Message:  fmt.Sprintf("column %q is not in table %q; property %q will be ignored", p.Column, m.Table, p.Property),
				Code:     ErrUnknownColumn,
				Severity: SeverityWarning,
			})
		}
	}

	// E114: every partition key column must be reachable
	if m.Schema != nil {
		for _, k := range m.Schema.PartitionKey {
			if _, ok := columns[k]; !ok {
				errs = append(errs, ValidationError{
					Field:    "properties",
					Message:  fmt.Sprintf("partition key column %q is not mapped by any property", k),
					Code:     ErrUnmappedPartitionKey,
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

func nonNormal(field, code, what, name string) ValidationError {
	return ValidationError{
		Field:    field,
		Message:  fmt.Sprintf("%s name %q is not NFC normalized; it will not match its composed spelling", what, name),
		Code:     code,
		Severity: SeverityWarning,
	}
}
