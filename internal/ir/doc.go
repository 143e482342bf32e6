// Package ir provides the descriptor types shared by every cqlmap package.
//
// This package contains type definitions and small pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// descriptor model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Bound values are a sealed sum type (Value); consumers switch exhaustively
//   - Binding order is positional contract: helpers filter, never resort
//   - Descriptors are read-only once handed to a builder
//   - Documents are read by property name, never by column name
package ir
