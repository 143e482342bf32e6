// Package testutil provides shared fixtures for cqlmap tests: table
// schemas, model mappings and conversion registries with predictable
// behavior.
package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/cqlmap/internal/ir"
)

// Keyspace used by every fixture.
const Keyspace = "ks"

// UsersSchema is a regular table with a composite primary key.
//
//	users(id uuid, bucket int, name text, email text, age int, tags list<text>,
//	      PRIMARY KEY ((id), bucket))
func UsersSchema() *ir.TableSchema {
	return ir.NewTableSchema("users",
		[]ir.ColumnDescriptor{
			{Name: "id", Type: "uuid"},
			{Name: "bucket", Type: "int"},
			{Name: "name", Type: "text"},
			{Name: "email", Type: "text"},
			{Name: "age", Type: "int"},
			{Name: "tags", Type: ir.TypeList},
		},
		[]string{"id"},
		[]string{"bucket"},
	)
}

// PageViewsSchema is a counter table.
//
//	page_views(page text, day text, views counter, PRIMARY KEY ((page), day))
func PageViewsSchema() *ir.TableSchema {
	return ir.NewTableSchema("page_views",
		[]ir.ColumnDescriptor{
			{Name: "page", Type: "text"},
			{Name: "day", Type: "text"},
			{Name: "views", Type: ir.TypeCounter},
		},
		[]string{"page"},
		[]string{"day"},
	)
}

// UserMapping maps the User model onto UsersSchema. The "displayName"
// property maps to column "name" and needs conversion; "nickname" maps to
// a column the table does not have.
func UserMapping() *ir.ModelMapping {
	return &ir.ModelMapping{
		Name:     "User",
		Keyspace: Keyspace,
		Table:    "users",
		Schema:   UsersSchema(),
		Properties: []ir.PropertyMapping{
			{Property: "id", Column: "id"},
			{Property: "bucket", Column: "bucket"},
			{Property: "displayName", Column: "name", Convert: true},
			{Property: "email", Column: "email"},
			{Property: "age", Column: "age"},
			{Property: "tags", Column: "tags"},
			{Property: "nickname", Column: "nickname"},
		},
	}
}

// PageViewMapping maps the PageView model onto PageViewsSchema.
func PageViewMapping() *ir.ModelMapping {
	return &ir.ModelMapping{
		Name:     "PageView",
		Keyspace: Keyspace,
		Table:    "page_views",
		Schema:   PageViewsSchema(),
		Properties: []ir.PropertyMapping{
			{Property: "page", Column: "page"},
			{Property: "day", Column: "day"},
			{Property: "views", Column: "views"},
		},
	}
}

// Upper converts strings to upper case; other values are rejected.
func Upper(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("upper: want string, got %T", v)
	}
	return strings.ToUpper(s), nil
}

// Converters returns a registry converting "displayName" with Upper.
func Converters() ir.Converters {
	return ir.Converters{"displayName": Upper}
}
