// Package mapper turns documents into executable statements for one mapped
// model.
//
// A Mapper derives property bindings from a document in the mapping's
// declaration order, computes the statement shape, and reuses a cached
// cql.GeneratedStatement for every later call with the same shape. Only
// operand values vary between calls of one shape, so query text, retry
// flags and the parameter extractor are built once.
//
// Cache behavior:
//   - Lookups take a read lock; a miss is collapsed per shape so that
//     concurrent first calls compile the statement exactly once.
//   - Entries are never evicted. The number of shapes is bounded by the
//     mapping's properties and the option presence flags.
//
// A Mapper is safe for concurrent use.
package mapper
