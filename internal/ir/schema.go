package ir

import "strings"

// ColumnType is the storage type tag of a column. Collection and frozen
// types are reduced to their base tag ("list<text>" is TypeList).
type ColumnType string

// Storage type tags with dedicated builder semantics. Any other tag is
// carried verbatim.
const (
	TypeList    ColumnType = "list"
	TypeSet     ColumnType = "set"
	TypeMap     ColumnType = "map"
	TypeCounter ColumnType = "counter"
)

// ParseColumnType reduces a declared storage type such as "list<text>" or
// "frozen<map<text, int>>" to its base tag.
func ParseColumnType(declared string) ColumnType {
	t := strings.ToLower(strings.TrimSpace(declared))
	if inner, ok := strings.CutPrefix(t, "frozen<"); ok {
		t = strings.TrimSuffix(inner, ">")
	}
	if i := strings.IndexByte(t, '<'); i >= 0 {
		t = t[:i]
	}
	return ColumnType(strings.TrimSpace(t))
}

// ColumnDescriptor describes one table column.
type ColumnDescriptor struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// TableSchema is a read-only snapshot of a table definition.
type TableSchema struct {
	Name          string                      `json:"name"`
	Columns       map[string]ColumnDescriptor `json:"columns"`
	PartitionKey  []string                    `json:"partition_key"`
	ClusteringKey []string                    `json:"clustering_key,omitempty"`
}

// NewTableSchema builds a schema from ordered columns.
func NewTableSchema(name string, columns []ColumnDescriptor, partitionKey, clusteringKey []string) *TableSchema {
	cols := make(map[string]ColumnDescriptor, len(columns))
	for _, c := range columns {
		cols[c.Name] = c
	}
	return &TableSchema{
		Name:          name,
		Columns:       cols,
		PartitionKey:  partitionKey,
		ClusteringKey: clusteringKey,
	}
}

// Column returns the descriptor for name.
func (s *TableSchema) Column(name string) (ColumnDescriptor, bool) {
	if s == nil {
		return ColumnDescriptor{}, false
	}
	c, ok := s.Columns[name]
	return c, ok
}

// HasColumn reports whether name is a column of the table.
func (s *TableSchema) HasColumn(name string) bool {
	_, ok := s.Column(name)
	return ok
}

// PrimaryKey returns the union of partition and clustering key columns as a set.
// Build it once per statement shape. A nil schema has no key columns.
func (s *TableSchema) PrimaryKey() map[string]struct{} {
	if s == nil {
		return map[string]struct{}{}
	}
	keys := make(map[string]struct{}, len(s.PartitionKey)+len(s.ClusteringKey))
	for _, k := range s.PartitionKey {
		keys[k] = struct{}{}
	}
	for _, k := range s.ClusteringKey {
		keys[k] = struct{}{}
	}
	return keys
}
