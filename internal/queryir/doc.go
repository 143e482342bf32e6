// Package queryir describes the statements cqlmap can generate.
//
// A Statement is a request: which table, which property bindings, which
// optional clauses. It carries no operand values; those are read from the
// document at extraction time. Two requests with equal Shape() descriptions
// always render the same query text, so the description keys statement
// caches.
//
// SEALED INTERFACE:
//
// Statement is sealed with an unexported marker method. Only Select,
// Insert, Update and Delete implement it, so generators can switch
// exhaustively:
//
//	switch s := stmt.(type) {
//	case *queryir.Select:
//	case *queryir.Insert:
//	case *queryir.Update:
//	case *queryir.Delete:
//	}
//
// Lint reports caller-contract problems (IF EXISTS combined with a when
// clause, missing key columns, bindings that will be dropped). Generators
// never call it; it exists for tooling.
package queryir
