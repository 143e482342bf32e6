package cql

import (
	"fmt"

	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/queryir"
)

// GeneratedStatement is the compiled form of one statement shape. It is
// immutable once produced and safe to share between goroutines.
type GeneratedStatement struct {
	// Kind is the queryir statement kind.
	Kind string

	// Query is the parameterized text.
	Query string

	// Extractor produces the positional parameters for Query.
	Extractor Extractor

	// Idempotent reports whether the statement is safe to retry after an
	// ambiguous failure.
	Idempotent bool

	// IsCounter reports an update touching a counter column.
	IsCounter bool
}

// Extract returns the positional parameters for one call.
func (g *GeneratedStatement) Extract(doc ir.Document, opts ir.CallOptions, conv ir.ConversionLookup) ([]any, error) {
	return g.Extractor.Extract(doc, opts, conv)
}

// Generate builds the statement for any request kind.
// Reads (selects) are always idempotent.
func Generate(stmt queryir.Statement) (*GeneratedStatement, error) {
	switch s := stmt.(type) {
	case *queryir.Select:
		return GenerateSelect(s), nil
	case *queryir.Insert:
		return BuildInsert(s), nil
	case *queryir.Update:
		return BuildUpdate(s), nil
	case *queryir.Delete:
		return BuildDelete(s), nil
	case nil:
		return nil, fmt.Errorf("cannot generate nil statement")
	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}
