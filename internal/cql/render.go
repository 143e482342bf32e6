package cql

import (
	"fmt"
	"strings"

	"github.com/roach88/cqlmap/internal/ir"
)

// renderCondition renders a WHERE or IF condition on column.
//
//	Scalar:    "age > ?"
//	Composite: "age > ? AND age < ?" (children rendered recursively)
//	otherwise: "age = ?"
//
// Assignments never belong in a condition; they degrade to equality.
func renderCondition(column string, v ir.Value) string {
	switch val := v.(type) {
	case ir.Scalar:
		return column + " " + val.Op + " ?"
	case ir.Composite:
		return renderCondition(column, val.Left) + " " + val.Op + " " + renderCondition(column, val.Right)
	case ir.Literal, ir.Assignment, nil:
		return column + " = ?"
	default:
		panic(fmt.Sprintf("cql: unhandled value type %T", v))
	}
}

// renderConditions joins the conditions of bindings with AND.
func renderConditions(bindings []ir.PropertyBinding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = renderCondition(b.Column, b.Value)
	}
	return strings.Join(parts, " AND ")
}

// renderAssignment renders one SET entry on column.
//
//	Assignment{Sign: "+"}:                 "count = count + ?"
//	Assignment{Sign: "+", Inverted: true}: "items = ? + items"
//	otherwise:                             "name = ?"
func renderAssignment(column string, v ir.Value) string {
	a, ok := v.(ir.Assignment)
	if !ok {
		return column + " = ?"
	}
	if a.Inverted {
		return column + " = ? " + a.Sign + " " + column
	}
	return column + " = " + column + " " + a.Sign + " ?"
}

// renderAssignments joins the SET entries of bindings with commas.
func renderAssignments(bindings []ir.PropertyBinding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = renderAssignment(b.Column, b.Value)
	}
	return strings.Join(parts, ", ")
}

// renderIf renders the optional lightweight-transaction clause.
// IF EXISTS takes precedence over when conditions.
func renderIf(ifExists bool, when []ir.PropertyBinding) string {
	if ifExists {
		return " IF EXISTS"
	}
	if len(when) > 0 {
		return " IF " + renderConditions(when)
	}
	return ""
}

func tableRef(keyspace, table string) string {
	return keyspace + "." + table
}

func columnNames(bindings []ir.PropertyBinding) []string {
	names := make([]string, len(bindings))
	for i, b := range bindings {
		names[i] = b.Column
	}
	return names
}

// CountPlaceholders returns the number of "?" parameter markers in query.
// Generated text never contains quoted literals, so every "?" is a marker.
func CountPlaceholders(query string) int {
	return strings.Count(query, "?")
}
