// Package store provides a SQLite-backed catalog of compiled statements.
//
// The catalog records one row per statement shape: the query text, its
// parameter count and its retry-safety flags. Tools read it to review the
// statements a mapping set will issue, or to prepare them ahead of time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Listing is ordered deterministically by keyspace, table, kind and query
// with BINARY collation.
package store
