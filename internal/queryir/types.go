package queryir

import "github.com/roach88/cqlmap/internal/ir"

// Statement kinds.
const (
	KindSelect = "select"
	KindInsert = "insert"
	KindUpdate = "update"
	KindDelete = "delete"
)

// Statement is a sealed interface over the four statement requests.
type Statement interface {
	statementNode() // Marker method - seals interface to this package

	// Kind returns one of the Kind* constants.
	Kind() string

	// Shape describes everything that influences query text and parameter
	// order, excluding operand values. Feed it to ir.ShapeKey.
	Shape() map[string]any
}

// Order is one ORDER BY entry. Direction is rendered verbatim (ASC, DESC).
type Order struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// Select reads rows.
//
//	SELECT <columns|*> FROM <ks>.<table> [WHERE ...] [ORDER BY ...] [LIMIT ?] ALLOW FILTERING
//
// Schema is optional; when set, Where bindings on unknown columns are dropped.
// AllowFiltering is accepted but currently inert: the directive is always
// rendered.
type Select struct {
	Keyspace       string
	Table          string
	Schema         *ir.TableSchema
	Where          []ir.PropertyBinding
	Columns        []string
	OrderBy        []Order
	Options        ir.CallOptions
	AllowFiltering bool
}

func (*Select) statementNode() {}

// Kind implements Statement.
func (*Select) Kind() string { return KindSelect }

// Shape implements Statement.
func (s *Select) Shape() map[string]any {
	orderBy := make([]any, len(s.OrderBy))
	for i, o := range s.OrderBy {
		orderBy[i] = o.Column + " " + o.Direction
	}
	columns := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		columns[i] = c
	}
	return map[string]any{
		"kind":     KindSelect,
		"keyspace": s.Keyspace,
		"table":    s.Table,
		"where":    ir.DescribeBindings(ir.FilterBindings(s.Schema, s.Where)),
		"columns":  columns,
		"order_by": orderBy,
		"limit":    s.Options.HasLimit(),
	}
}

// Insert writes a row.
//
//	INSERT INTO <ks>.<table> (<cols>) VALUES (<?...>) [IF NOT EXISTS] [USING TTL ?]
type Insert struct {
	Keyspace    string
	Table       string
	Schema      *ir.TableSchema
	Bindings    []ir.PropertyBinding
	Options     ir.CallOptions
	IfNotExists bool
}

func (*Insert) statementNode() {}

// Kind implements Statement.
func (*Insert) Kind() string { return KindInsert }

// Shape implements Statement.
func (s *Insert) Shape() map[string]any {
	return map[string]any{
		"kind":          KindInsert,
		"keyspace":      s.Keyspace,
		"table":         s.Table,
		"bindings":      ir.DescribeBindings(ir.FilterBindings(s.Schema, s.Bindings)),
		"ttl":           s.Options.HasTTL(),
		"if_not_exists": s.IfNotExists,
	}
}

// Update mutates columns of an identified row.
//
//	UPDATE <ks>.<table> [USING TTL ?] SET <assignments> WHERE <key equalities> [IF EXISTS | IF <when>]
//
// Bindings on primary key columns identify the row; all others are mutated.
// When lists the condition bindings; their values are read from
// CallOptions.When at extraction time.
type Update struct {
	Keyspace string
	Table    string
	Schema   *ir.TableSchema
	Bindings []ir.PropertyBinding
	Options  ir.CallOptions
	When     []ir.PropertyBinding
	IfExists bool
}

func (*Update) statementNode() {}

// Kind implements Statement.
func (*Update) Kind() string { return KindUpdate }

// Shape implements Statement.
func (s *Update) Shape() map[string]any {
	return map[string]any{
		"kind":      KindUpdate,
		"keyspace":  s.Keyspace,
		"table":     s.Table,
		"bindings":  ir.DescribeBindings(ir.FilterBindings(s.Schema, s.Bindings)),
		"when":      ir.DescribeBindings(ir.FilterBindings(s.Schema, s.When)),
		"ttl":       s.Options.HasTTL(),
		"if_exists": s.IfExists,
	}
}

// Delete removes a row, or only some of its columns when
// Options.DeleteOnlyColumns is set.
//
//	DELETE [<cols>] FROM <ks>.<table> WHERE <key equalities> [IF EXISTS | IF <when>]
type Delete struct {
	Keyspace string
	Table    string
	Schema   *ir.TableSchema
	Bindings []ir.PropertyBinding
	Options  ir.CallOptions
	When     []ir.PropertyBinding
	IfExists bool
}

func (*Delete) statementNode() {}

// Kind implements Statement.
func (*Delete) Kind() string { return KindDelete }

// Shape implements Statement.
func (s *Delete) Shape() map[string]any {
	return map[string]any{
		"kind":         KindDelete,
		"keyspace":     s.Keyspace,
		"table":        s.Table,
		"bindings":     ir.DescribeBindings(ir.FilterBindings(s.Schema, s.Bindings)),
		"when":         ir.DescribeBindings(ir.FilterBindings(s.Schema, s.When)),
		"only_columns": s.Options.DeleteOnlyColumns,
		"if_exists":    s.IfExists,
	}
}
