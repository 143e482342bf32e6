// Package harness runs mapping scenarios against compiled definitions.
//
// A scenario names CUE definition files, a set of converters, and a list
// of steps. Each step runs one mapper operation on a document and may
// check the generated query, parameters and flags. Assertions then check
// properties of the whole run: how many statement shapes were compiled,
// which steps shared a shape, and what ended up in the statement catalog.
//
// # Scenario Format
//
//	name: users_lifecycle
//	description: "Insert, read and remove a user"
//	specs:
//	  - ../specs/app.cue
//	converters:
//	  displayName: upper
//	steps:
//	  - model: User
//	    op: insert
//	    doc: { id: u1, displayName: ada }
//	    options: { if_not_exists: true }
//	    expect:
//	      query: "INSERT INTO app.users (id, name) VALUES (?, ?) IF NOT EXISTS"
//	      params: [u1, ADA]
//	      idempotent: false
//	assertions:
//	  - type: shape_count
//	    model: User
//	    count: 1
//
// Spec paths are relative to the scenario file. Document and condition
// values use the operand syntax of ir.DecodeOperand ({$gt: 3},
// {$in: [a, b]}, {$incr: 1}).
//
// # Assertion Types
//
//   - shape_count: the model compiled exactly count statement shapes
//   - same_shape: the listed steps used one statement shape
//   - distinct_shape: the listed steps used pairwise different shapes
//   - catalog_size: the statement catalog holds exactly count entries
//   - placeholders_match: every query has one placeholder per parameter
//
// # Golden Files
//
// RunWithGolden snapshots the generated statements of a run under
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
