// Package compiler turns CUE mapping definitions into table schemas and
// model mappings.
//
// A definition file declares tables and the models mapped onto them:
//
//	table: users: {
//		keyspace: "app"
//		columns: { id: "uuid", name: "text", tags: "list<text>" }
//		partition_key: ["id"]
//		clustering_key: []
//	}
//
//	model: User: {
//		table: "users"
//		properties: [
//			{ property: "id" },
//			{ property: "displayName", column: "name", convert: true },
//		]
//	}
//
// Compilation uses the CUE Go API directly. Structural problems are
// reported as *CompileError with the CUE source position; semantic checks
// on the compiled result live in Validate.
package compiler
