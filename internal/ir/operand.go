package ir

import (
	"fmt"
	"strings"
)

// DecodeOperand converts generically decoded data (YAML, JSON) into a
// document value. A map with a single "$"-prefixed key is an operator:
//
//	{$eq: v} {$ne: v} {$gt: v} {$gte: v} {$lt: v} {$lte: v}
//	{$in: [a, b]}                  In(a, b)
//	{$between: [lo, hi]}           Between(lo, hi)
//	{$and: [{$gt: 1}, {$lt: 9}]}   And(Gt(1), Lt(9))
//	{$incr: n} {$decr: n}          counter or numeric assignment
//	{$append: [x]} {$prepend: [x]} list assignment
//
// Anything else is returned unchanged.
func DecodeOperand(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return v, nil
	}
	var op string
	var arg any
	for k, a := range m {
		op, arg = k, a
	}
	if !strings.HasPrefix(op, "$") {
		return v, nil
	}

	switch op {
	case "$eq":
		return Eq(arg), nil
	case "$ne":
		return Ne(arg), nil
	case "$gt":
		return Gt(arg), nil
	case "$gte":
		return Gte(arg), nil
	case "$lt":
		return Lt(arg), nil
	case "$lte":
		return Lte(arg), nil
	case "$in":
		list, ok := arg.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: want a list, got %T", op, arg)
		}
		return In(list...), nil
	case "$between":
		list, ok := arg.([]any)
		if !ok || len(list) != 2 {
			return nil, fmt.Errorf("%s: want [low, high]", op)
		}
		return Between(list[0], list[1]), nil
	case "$and":
		list, ok := arg.([]any)
		if !ok || len(list) != 2 {
			return nil, fmt.Errorf("%s: want two comparisons", op)
		}
		left, err := decodeComparison(list[0])
		if err != nil {
			return nil, fmt.Errorf("%s[0]: %w", op, err)
		}
		right, err := decodeComparison(list[1])
		if err != nil {
			return nil, fmt.Errorf("%s[1]: %w", op, err)
		}
		return And(left, right), nil
	case "$incr":
		return Incr(arg), nil
	case "$decr":
		return Decr(arg), nil
	case "$append":
		return Append(arg), nil
	case "$prepend":
		return Prepend(arg), nil
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}
}

func decodeComparison(v any) (Comparison, error) {
	d, err := DecodeOperand(v)
	if err != nil {
		return nil, err
	}
	c, ok := d.(Comparison)
	if !ok {
		return nil, fmt.Errorf("want a comparison, got %T", d)
	}
	return c, nil
}

// DecodeFields applies DecodeOperand to every value of m.
func DecodeFields(m map[string]any) (Fields, error) {
	out := make(Fields, len(m))
	for k, v := range m {
		d, err := DecodeOperand(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = d
	}
	return out, nil
}
