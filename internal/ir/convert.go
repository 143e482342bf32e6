package ir

import "errors"

// ConvertFunc converts a model value into its storage representation.
type ConvertFunc func(any) (any, error)

// ConversionLookup resolves a model-to-storage conversion by property name.
type ConversionLookup interface {
	Converter(property string) (ConvertFunc, bool)
}

// Converters is a map-backed ConversionLookup.
type Converters map[string]ConvertFunc

// Converter implements ConversionLookup. A nil map finds nothing.
func (c Converters) Converter(property string) (ConvertFunc, bool) {
	fn, ok := c[property]
	return fn, ok && fn != nil
}

// ErrNoConverter is returned when a binding needs conversion but the
// lookup has no routine for its property.
var ErrNoConverter = errors.New("no converter registered")
