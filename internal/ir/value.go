package ir

import "strings"

// Value is a sealed interface representing what a property is bound to.
// Only Literal, Scalar, Composite and Assignment implement it.
//
// Consumers dispatch with an exhaustive type switch:
//
//	switch v := value.(type) {
//	case Literal:
//	case Scalar:
//	case Composite:
//	case Assignment:
//	}
type Value interface {
	boundValue() // Sealed - only these types implement it
}

// Comparison is the subset of Value usable in WHERE and IF conditions.
// Only Scalar and Composite implement it.
type Comparison interface {
	Value
	comparison()
}

// Literal binds a property to a plain value compared or assigned with "=".
// V is an optional sample; extraction always reads the document.
type Literal struct {
	V any
}

func (Literal) boundValue() {}

// Scalar is a single-operand comparison, rendered as "<column> <op> ?".
// For the membership operator IN, Value is a sequence bound as one parameter.
type Scalar struct {
	Op    string
	Value any
}

func (Scalar) boundValue() {}
func (Scalar) comparison() {}

// IsMembership reports whether the comparison is an IN test.
func (s Scalar) IsMembership() bool {
	return strings.EqualFold(s.Op, OpIn)
}

// Composite joins two comparisons on the same column with a textual
// connector, e.g. "age > ? AND age < ?". Children may nest arbitrarily.
type Composite struct {
	Op    string
	Left  Comparison
	Right Comparison
}

func (Composite) boundValue() {}
func (Composite) comparison() {}

// Assignment is a mutating SET clause value.
//
//	Inverted=false: "<column> = <column> <sign> ?"  (counter increment, list append)
//	Inverted=true:  "<column> = ? <sign> <column>"  (list prepend)
//
// Raw is the operand emitted as the bound parameter.
type Assignment struct {
	Sign     string
	Inverted bool
	Raw      any
}

func (Assignment) boundValue() {}

// Operators understood by the helper constructors.
const (
	OpEq  = "="
	OpNe  = "!="
	OpGt  = ">"
	OpGte = ">="
	OpLt  = "<"
	OpLte = "<="
	OpIn  = "IN"
	OpAnd = "AND"
)

// Eq creates an equality comparison.
func Eq(v any) Scalar { return Scalar{Op: OpEq, Value: v} }

// Ne creates an inequality comparison.
func Ne(v any) Scalar { return Scalar{Op: OpNe, Value: v} }

// Gt creates a greater-than comparison.
func Gt(v any) Scalar { return Scalar{Op: OpGt, Value: v} }

// Gte creates a greater-or-equal comparison.
func Gte(v any) Scalar { return Scalar{Op: OpGte, Value: v} }

// Lt creates a less-than comparison.
func Lt(v any) Scalar { return Scalar{Op: OpLt, Value: v} }

// Lte creates a less-or-equal comparison.
func Lte(v any) Scalar { return Scalar{Op: OpLte, Value: v} }

// In creates a membership comparison. The values are bound as a single
// list parameter.
func In(values ...any) Scalar { return Scalar{Op: OpIn, Value: values} }

// And joins two comparisons with AND.
func And(left, right Comparison) Composite {
	return Composite{Op: OpAnd, Left: left, Right: right}
}

// Between is shorthand for And(Gte(lo), Lte(hi)).
func Between(lo, hi any) Composite {
	return And(Gte(lo), Lte(hi))
}

// Incr adds delta to a counter or numeric column.
func Incr(delta any) Assignment { return Assignment{Sign: "+", Raw: delta} }

// Decr subtracts delta from a counter or numeric column.
func Decr(delta any) Assignment { return Assignment{Sign: "-", Raw: delta} }

// Append appends items to a list column.
func Append(items any) Assignment { return Assignment{Sign: "+", Raw: items} }

// Prepend prepends items to a list column.
func Prepend(items any) Assignment { return Assignment{Sign: "+", Inverted: true, Raw: items} }

// Value kinds returned by KindOf.
const (
	KindLiteral    = "literal"
	KindScalar     = "scalar"
	KindComposite  = "composite"
	KindAssignment = "assignment"
)

// KindOf returns the stable kind name of a bound value.
// A nil Value is treated as a literal.
func KindOf(v Value) string {
	switch v.(type) {
	case Scalar:
		return KindScalar
	case Composite:
		return KindComposite
	case Assignment:
		return KindAssignment
	default:
		return KindLiteral
	}
}

// AsValue wraps arbitrary document data into a Value. Values that already
// implement Value are returned unchanged; anything else becomes a Literal.
func AsValue(v any) Value {
	if bv, ok := v.(Value); ok {
		return bv
	}
	return Literal{V: v}
}
