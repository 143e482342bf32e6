// Package cql renders parameterized statements for a wide-row storage
// engine from queryir requests, and compiles the matching parameter
// extractors.
//
// Every generator is a pure function of its request. A GeneratedStatement
// pairs the query text with an Extractor whose output lines up with the
// text's "?" placeholders one-for-one, plus retry-safety flags computed once
// per shape:
//
//	gen, err := cql.Generate(&queryir.Insert{
//		Keyspace: "ks",
//		Table:    "t",
//		Schema:   schema,
//		Bindings: []ir.PropertyBinding{{Property: "id", Column: "id"}},
//	})
//	// gen.Query == "INSERT INTO ks.t (id) VALUES (?)"
//	params, err := gen.Extract(ir.Fields{"id": 5}, ir.CallOptions{}, nil)
//	// params == []any{5}
//
// Bindings whose column is not in the schema are dropped from both the text
// and the extractor. Surviving bindings keep caller order.
//
// Identifiers are rendered unescaped; callers supply valid names.
package cql
