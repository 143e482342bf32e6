package ir

import (
	"fmt"
	"reflect"

	"github.com/mitranim/refut"
)

// Document is a mapped object instance read by property name.
type Document interface {
	Property(name string) (any, bool)
}

// Fields is a map-backed Document.
type Fields map[string]any

// Property implements Document.
func (f Fields) Property(name string) (any, bool) {
	v, ok := f[name]
	return v, ok
}

// StructDocument reads the exported fields of a struct (or struct pointer)
// into a Document. Properties are named by the `cql` tag, falling back to
// the Go field name; `cql:"-"` skips a field. Embedded structs are treated
// as part of the enclosing struct. A nil pointer yields an empty document.
func StructDocument(input any) (Fields, error) {
	rval := reflect.ValueOf(input)
	if !rval.IsValid() {
		return Fields{}, nil
	}
	rtype := refut.RtypeDeref(rval.Type())
	if rtype.Kind() != reflect.Struct {
		return nil, fmt.Errorf("struct document: expected struct, got %q", rtype)
	}
	if refut.IsRvalNil(rval) {
		return Fields{}, nil
	}

	doc := Fields{}
	err := refut.TraverseStructRval(rval, func(field reflect.Value, sfield reflect.StructField, _ []int) error {
		name := propertyName(sfield)
		if name == "" {
			return nil
		}
		doc[name] = field.Interface()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("struct document: %w", err)
	}
	return doc, nil
}

func propertyName(sfield reflect.StructField) string {
	tag, ok := sfield.Tag.Lookup("cql")
	if !ok || tag == "" {
		return sfield.Name
	}
	if tag == "-" {
		return ""
	}
	return refut.TagIdent(tag)
}

// WhenDocument exposes the values of conditional bindings (CallOptions.When)
// by property name. The binding's Value is returned as-is, so comparison
// wrappers reach the extractor intact.
type WhenDocument []PropertyBinding

// Property implements Document.
func (w WhenDocument) Property(name string) (any, bool) {
	for _, b := range w {
		if b.Property == name {
			if lit, ok := b.Value.(Literal); ok {
				return lit.V, true
			}
			return b.Value, true
		}
	}
	return nil, false
}
