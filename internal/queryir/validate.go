package queryir

import (
	"fmt"

	"github.com/roach88/cqlmap/internal/ir"
)

// LintResult lists caller-contract problems found in a statement request.
//
// Generators do not validate their input; a statement with warnings still
// renders, but the storage engine will likely reject it or the result may
// surprise the caller.
type LintResult struct {
	// Clean is true when Warnings is empty.
	Clean bool

	// Warnings are human-readable findings, in discovery order.
	Warnings []string
}

// Lint inspects a statement request. It is a pure function.
func Lint(stmt Statement) LintResult {
	l := &linter{warnings: []string{}}

	switch s := stmt.(type) {
	case *Select:
		l.lintSelect(s)
	case *Insert:
		l.lintInsert(s)
	case *Update:
		l.lintUpdate(s)
	case *Delete:
		l.lintDelete(s)
	case nil:
		l.addWarning("nil statement")
	default:
		l.addWarning("unknown statement type %T", stmt)
	}

	return LintResult{
		Clean:    len(l.warnings) == 0,
		Warnings: l.warnings,
	}
}

// linter accumulates warnings during inspection.
type linter struct {
	warnings []string
}

func (l *linter) addWarning(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *linter) lintSelect(s *Select) {
	l.checkDropped(s.Schema, s.Where)
	l.checkConditions("where", s.Where)
	if !s.AllowFiltering {
		l.addWarning("allow_filtering=false has no effect: ALLOW FILTERING is always rendered")
	}
}

func (l *linter) lintInsert(s *Insert) {
	l.checkDropped(s.Schema, s.Bindings)
	if s.Schema == nil {
		return
	}
	kept := ir.FilterBindings(s.Schema, s.Bindings)
	l.checkKeyCoverage(s.Schema, kept)
	for _, b := range kept {
		if col, _ := s.Schema.Column(b.Column); col.Type == ir.TypeCounter {
			l.addWarning("counter column %q cannot be inserted; use an update with an increment", b.Column)
		}
		if _, ok := b.Value.(ir.Assignment); ok {
			l.addWarning("property %q: assignment values are only meaningful in updates", b.Property)
		}
	}
}

func (l *linter) lintUpdate(s *Update) {
	l.checkDropped(s.Schema, s.Bindings)
	l.checkConditional(s.IfExists, s.When)
	l.checkConditions("when", s.When)
	l.checkDroppedConditions(s.Schema, s.When)
	if s.Schema == nil {
		return
	}
	mutated, identifying := ir.SplitPrimaryKey(s.Schema.PrimaryKey(), ir.FilterBindings(s.Schema, s.Bindings))
	if len(mutated) == 0 {
		l.addWarning("update of %s.%s sets no columns", s.Keyspace, s.Table)
	}
	l.checkKeyCoverage(s.Schema, identifying)
	l.checkConditions("where", identifying)
}

func (l *linter) lintDelete(s *Delete) {
	l.checkDropped(s.Schema, s.Bindings)
	l.checkConditional(s.IfExists, s.When)
	l.checkConditions("when", s.When)
	l.checkDroppedConditions(s.Schema, s.When)
	if s.Schema == nil {
		return
	}
	_, identifying := ir.SplitPrimaryKey(s.Schema.PrimaryKey(), ir.FilterBindings(s.Schema, s.Bindings))
	if len(identifying) == 0 {
		l.addWarning("delete from %s.%s has no primary key bindings", s.Keyspace, s.Table)
	}
	l.checkConditions("where", identifying)
}

// checkDropped reports bindings that the generators will silently omit.
func (l *linter) checkDropped(schema *ir.TableSchema, bindings []ir.PropertyBinding) {
	if schema == nil {
		return
	}
	for _, b := range bindings {
		if !schema.HasColumn(b.Column) {
			l.addWarning("property %q maps to column %q unknown to table %q and will be dropped",
				b.Property, b.Column, schema.Name)
		}
	}
}

// checkDroppedConditions reports when bindings that will not render. A
// fully dropped condition leaves an unconditional, idempotent statement.
func (l *linter) checkDroppedConditions(schema *ir.TableSchema, when []ir.PropertyBinding) {
	if schema == nil {
		return
	}
	for _, b := range when {
		if !schema.HasColumn(b.Column) {
			l.addWarning("when: property %q maps to column %q unknown to table %q and will be dropped",
				b.Property, b.Column, schema.Name)
		}
	}
}

// checkKeyCoverage reports partition key columns with no binding.
func (l *linter) checkKeyCoverage(schema *ir.TableSchema, bindings []ir.PropertyBinding) {
	bound := make(map[string]struct{}, len(bindings))
	for _, b := range bindings {
		bound[b.Column] = struct{}{}
	}
	for _, k := range schema.PartitionKey {
		if _, ok := bound[k]; !ok {
			l.addWarning("partition key column %q is not bound", k)
		}
	}
}

func (l *linter) checkConditional(ifExists bool, when []ir.PropertyBinding) {
	if ifExists && len(when) > 0 {
		l.addWarning("if_exists and when are mutually exclusive; IF EXISTS takes precedence")
	}
}

// checkConditions reports assignment values used where a condition is expected.
func (l *linter) checkConditions(clause string, bindings []ir.PropertyBinding) {
	for _, b := range bindings {
		if _, ok := b.Value.(ir.Assignment); ok {
			l.addWarning("%s: property %q is bound to an assignment, rendered as equality", clause, b.Property)
		}
	}
}
