package cql

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/roach88/cqlmap/internal/ir"
)

// Extractor reads the positional parameters of one statement shape.
//
// It is compiled once per shape into a fixed, ordered list of slots; each
// slot captures its property name, where to read it from, how to unwrap the
// bound value and whether to convert it. Extract only replays that list, so
// its cost is linear in the parameter count. An Extractor never mutates its
// inputs and is safe for concurrent use.
type Extractor struct {
	slots []slot
}

// Extract returns one value per placeholder, in placeholder order.
//
// Properties missing from the document extract as nil. A nil conv is
// allowed when no binding needs conversion.
func (e Extractor) Extract(doc ir.Document, opts ir.CallOptions, conv ir.ConversionLookup) ([]any, error) {
	params := make([]any, len(e.slots))
	for i, s := range e.slots {
		v, err := s.read(doc, opts, conv)
		if err != nil {
			return nil, &ExtractError{Index: i, Property: s.name, Err: err}
		}
		params[i] = v
	}
	return params, nil
}

// Len returns the number of parameters Extract produces.
func (e Extractor) Len() int {
	return len(e.slots)
}

// ExtractError reports which parameter could not be produced.
type ExtractError struct {
	Index    int
	Property string
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract param %d (%s): %v", e.Index, e.Property, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// ErrShapeMismatch is returned when a document value's kind differs from
// the kind the statement shape was compiled for.
var ErrShapeMismatch = errors.New("document value does not match statement shape")

type readFunc func(doc ir.Document, opts ir.CallOptions, conv ir.ConversionLookup) (any, error)

type slot struct {
	name string
	read readFunc
}

// source selects where a binding slot reads its property.
type source int

const (
	fromDocument source = iota // the call's document
	fromWhen                   // the call's CallOptions.When bindings
)

// branch selects a child of a composite comparison.
type branch int

const (
	left branch = iota
	right
)

var (
	ttlSlot = slot{name: "ttl", read: func(_ ir.Document, opts ir.CallOptions, _ ir.ConversionLookup) (any, error) {
		if opts.TTL == nil {
			return nil, nil
		}
		return *opts.TTL, nil
	}}

	limitSlot = slot{name: "limit", read: func(_ ir.Document, opts ir.CallOptions, _ ir.ConversionLookup) (any, error) {
		if opts.Limit == nil {
			return nil, nil
		}
		return *opts.Limit, nil
	}}
)

func newExtractor(slots []slot) Extractor {
	return Extractor{slots: slots}
}

// compileSlots emits one slot per placeholder the bindings render: one per
// binding, or one per leaf for composite comparisons.
func compileSlots(bindings []ir.PropertyBinding, src source) []slot {
	var slots []slot
	for _, b := range bindings {
		for _, path := range leafPaths(b.Value) {
			slots = append(slots, bindingSlot(b, path, src))
		}
	}
	return slots
}

// leafPaths lists the branch paths to every leaf of a composite, left to
// right. Non-composite values have a single empty path.
func leafPaths(v ir.Value) [][]branch {
	c, ok := v.(ir.Composite)
	if !ok {
		return [][]branch{nil}
	}
	var paths [][]branch
	for _, p := range leafPaths(c.Left) {
		paths = append(paths, append([]branch{left}, p...))
	}
	for _, p := range leafPaths(c.Right) {
		paths = append(paths, append([]branch{right}, p...))
	}
	return paths
}

// leafAt follows path through composites in v.
func leafAt(v ir.Value, path []branch) (ir.Value, bool) {
	for _, br := range path {
		c, ok := v.(ir.Composite)
		if !ok {
			return nil, false
		}
		if br == left {
			v = c.Left
		} else {
			v = c.Right
		}
	}
	return v, true
}

func bindingSlot(b ir.PropertyBinding, path []branch, src source) slot {
	property := b.Property
	unwrap := compileUnwrap(b.Value, path)
	convert := compileConvert(b, path)

	return slot{name: property, read: func(doc ir.Document, opts ir.CallOptions, conv ir.ConversionLookup) (any, error) {
		if src == fromWhen {
			doc = ir.WhenDocument(opts.When)
		}
		if doc == nil {
			return nil, nil
		}
		raw, ok := doc.Property(property)
		if !ok {
			return nil, nil
		}
		v, err := unwrap(raw)
		if err != nil {
			return nil, err
		}
		return convert(v, conv)
	}}
}

// compileUnwrap picks, once per slot, how the document value is unwrapped
// to the bound operand.
func compileUnwrap(shape ir.Value, path []branch) func(any) (any, error) {
	switch shape.(type) {
	case ir.Scalar:
		return unwrapScalar
	case ir.Composite:
		return func(raw any) (any, error) {
			v, ok := raw.(ir.Value)
			if !ok {
				return nil, fmt.Errorf("%w: got %T, want composite", ErrShapeMismatch, raw)
			}
			leaf, ok := leafAt(v, path)
			if !ok {
				return nil, fmt.Errorf("%w: composite nesting differs", ErrShapeMismatch)
			}
			return unwrapScalar(leaf)
		}
	case ir.Assignment:
		return func(raw any) (any, error) {
			a, ok := raw.(ir.Assignment)
			if !ok {
				return nil, fmt.Errorf("%w: got %T, want assignment", ErrShapeMismatch, raw)
			}
			return a.Raw, nil
		}
	default:
		return func(raw any) (any, error) {
			switch v := raw.(type) {
			case ir.Literal:
				return v.V, nil
			case ir.Value:
				return nil, fmt.Errorf("%w: got %T, want plain value", ErrShapeMismatch, raw)
			default:
				return raw, nil
			}
		}
	}
}

func unwrapScalar(raw any) (any, error) {
	s, ok := raw.(ir.Scalar)
	if !ok {
		return nil, fmt.Errorf("%w: got %T, want comparison", ErrShapeMismatch, raw)
	}
	return s.Value, nil
}

type convertFunc func(v any, conv ir.ConversionLookup) (any, error)

func passThrough(v any, _ ir.ConversionLookup) (any, error) {
	return v, nil
}

// compileConvert picks the conversion step for a slot. Membership leaves
// convert element-wise and still yield a single list parameter.
func compileConvert(b ir.PropertyBinding, path []branch) convertFunc {
	if !b.NeedsConversion {
		return passThrough
	}
	property := b.Property
	membership := false
	if leaf, ok := leafAt(b.Value, path); ok {
		if s, ok := leaf.(ir.Scalar); ok {
			membership = s.IsMembership()
		}
	}

	return func(v any, conv ir.ConversionLookup) (any, error) {
		if conv == nil {
			return nil, fmt.Errorf("%w for property %q", ir.ErrNoConverter, property)
		}
		fn, ok := conv.Converter(property)
		if !ok {
			return nil, fmt.Errorf("%w for property %q", ir.ErrNoConverter, property)
		}
		if membership {
			return convertEach(v, fn)
		}
		return fn(v)
	}
}

// convertEach applies fn to every element of a slice or array value.
// Non-sequence values are converted as a whole.
func convertEach(v any, fn ir.ConvertFunc) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fn(v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		c, err := fn(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}
