package mapper

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/cqlmap/internal/cql"
	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/queryir"
)

// Executable is one ready-to-run statement.
type Executable struct {
	Kind       string
	Query      string
	Params     []any
	Idempotent bool
	IsCounter  bool
	ShapeID    uuid.UUID
}

// Compiled describes one cached statement shape.
type Compiled struct {
	ShapeID    uuid.UUID
	Kind       string
	Query      string
	Params     int
	Idempotent bool
	IsCounter  bool
}

// Stats reports cache activity.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger used for cache diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		m.logger = logger
	}
}

type entry struct {
	id  uuid.UUID
	gen *cql.GeneratedStatement
}

// Mapper builds statements for one model mapping.
type Mapper struct {
	mapping *ir.ModelMapping
	conv    ir.ConversionLookup
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]entry
	group singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a Mapper. conv may be nil when no property needs conversion.
func New(mapping *ir.ModelMapping, conv ir.ConversionLookup, opts ...Option) *Mapper {
	m := &Mapper{
		mapping: mapping,
		conv:    conv,
		logger:  slog.Default(),
		cache:   make(map[string]entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mapping returns the model mapping the Mapper was built for.
func (m *Mapper) Mapping() *ir.ModelMapping {
	return m.mapping
}

// Find builds a SELECT filtered by the properties present in where.
func (m *Mapper) Find(where ir.Document, opts FindOptions) (*Executable, error) {
	stmt, callOpts := m.findStatement(where, opts)
	return m.execute(stmt, where, callOpts)
}

// Insert builds an INSERT of the properties present in doc.
func (m *Mapper) Insert(doc ir.Document, opts InsertOptions) (*Executable, error) {
	stmt, callOpts := m.insertStatement(doc, opts)
	return m.execute(stmt, doc, callOpts)
}

// Update builds an UPDATE. Primary key properties in doc identify the row;
// the others are set.
func (m *Mapper) Update(doc ir.Document, opts UpdateOptions) (*Executable, error) {
	stmt, callOpts := m.updateStatement(doc, opts)
	return m.execute(stmt, doc, callOpts)
}

// Remove builds a DELETE of the row identified by doc's primary key
// properties.
func (m *Mapper) Remove(doc ir.Document, opts RemoveOptions) (*Executable, error) {
	stmt, callOpts := m.removeStatement(doc, opts)
	return m.execute(stmt, doc, callOpts)
}

func (m *Mapper) findStatement(where ir.Document, opts FindOptions) (*queryir.Select, ir.CallOptions) {
	callOpts := ir.CallOptions{Limit: opts.Limit}
	return &queryir.Select{
		Keyspace:       m.mapping.Keyspace,
		Table:          m.mapping.Table,
		Schema:         m.mapping.Schema,
		Where:          m.mapping.Bindings(where),
		Columns:        opts.Columns,
		OrderBy:        opts.OrderBy,
		Options:        callOpts,
		AllowFiltering: opts.AllowFiltering,
	}, callOpts
}

func (m *Mapper) insertStatement(doc ir.Document, opts InsertOptions) (*queryir.Insert, ir.CallOptions) {
	callOpts := ir.CallOptions{TTL: opts.TTL}
	return &queryir.Insert{
		Keyspace:    m.mapping.Keyspace,
		Table:       m.mapping.Table,
		Schema:      m.mapping.Schema,
		Bindings:    m.mapping.Bindings(doc),
		Options:     callOpts,
		IfNotExists: opts.IfNotExists,
	}, callOpts
}

func (m *Mapper) updateStatement(doc ir.Document, opts UpdateOptions) (*queryir.Update, ir.CallOptions) {
	when := m.whenBindings(opts.When)
	callOpts := ir.CallOptions{TTL: opts.TTL, When: when}
	return &queryir.Update{
		Keyspace: m.mapping.Keyspace,
		Table:    m.mapping.Table,
		Schema:   m.mapping.Schema,
		Bindings: m.mapping.Bindings(doc),
		Options:  callOpts,
		When:     when,
		IfExists: opts.IfExists,
	}, callOpts
}

func (m *Mapper) removeStatement(doc ir.Document, opts RemoveOptions) (*queryir.Delete, ir.CallOptions) {
	when := m.whenBindings(opts.When)
	callOpts := ir.CallOptions{When: when, DeleteOnlyColumns: opts.OnlyColumns}
	return &queryir.Delete{
		Keyspace: m.mapping.Keyspace,
		Table:    m.mapping.Table,
		Schema:   m.mapping.Schema,
		Bindings: m.mapping.Bindings(doc),
		Options:  callOpts,
		When:     when,
		IfExists: opts.IfExists,
	}, callOpts
}

func (m *Mapper) whenBindings(when ir.Fields) []ir.PropertyBinding {
	if len(when) == 0 {
		return nil
	}
	return m.mapping.Bindings(when)
}

func (m *Mapper) execute(stmt queryir.Statement, doc ir.Document, opts ir.CallOptions) (*Executable, error) {
	e, err := m.statement(stmt)
	if err != nil {
		return nil, err
	}

	params, err := e.gen.Extract(doc, opts, m.conv)
	if err != nil {
		return nil, &Error{Code: ErrCodeExtract, Model: m.mapping.Name, Kind: stmt.Kind(), Err: err}
	}

	return &Executable{
		Kind:       e.gen.Kind,
		Query:      e.gen.Query,
		Params:     params,
		Idempotent: e.gen.Idempotent,
		IsCounter:  e.gen.IsCounter,
		ShapeID:    e.id,
	}, nil
}

// statement returns the cached statement for stmt's shape, compiling it on
// first use.
func (m *Mapper) statement(stmt queryir.Statement) (entry, error) {
	key, err := ir.ShapeKey(stmt.Shape())
	if err != nil {
		return entry{}, &Error{Code: ErrCodeShape, Model: m.mapping.Name, Kind: stmt.Kind(), Err: err}
	}

	m.mu.RLock()
	e, ok := m.cache[key]
	m.mu.RUnlock()
	if ok {
		m.hits.Add(1)
		return e, nil
	}

	compiled := false
	v, err, _ := m.group.Do(key, func() (any, error) {
		m.mu.RLock()
		e, ok := m.cache[key]
		m.mu.RUnlock()
		if ok {
			return e, nil
		}

		gen, err := cql.Generate(stmt)
		if err != nil {
			return nil, err
		}
		compiled = true
		e = entry{id: ir.ShapeID(key), gen: gen}

		m.mu.Lock()
		m.cache[key] = e
		m.mu.Unlock()

		m.logger.Debug("statement compiled",
			"model", m.mapping.Name,
			"kind", gen.Kind,
			"shape", e.id,
			"query", gen.Query,
			"idempotent", gen.Idempotent,
		)
		return e, nil
	})
	if err != nil {
		return entry{}, &Error{Code: ErrCodeGenerate, Model: m.mapping.Name, Kind: stmt.Kind(), Err: err}
	}

	if compiled {
		m.misses.Add(1)
	} else {
		m.hits.Add(1)
	}
	return v.(entry), nil
}

// Stats returns a snapshot of cache counters.
func (m *Mapper) Stats() Stats {
	m.mu.RLock()
	size := len(m.cache)
	m.mu.RUnlock()
	return Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Size:   size,
	}
}

// Compiled lists the cached statement shapes ordered by kind, then query.
func (m *Mapper) Compiled() []Compiled {
	m.mu.RLock()
	out := make([]Compiled, 0, len(m.cache))
	for _, e := range m.cache {
		out = append(out, Compiled{
			ShapeID:    e.id,
			Kind:       e.gen.Kind,
			Query:      e.gen.Query,
			Params:     e.gen.Extractor.Len(),
			Idempotent: e.gen.Idempotent,
			IsCounter:  e.gen.IsCounter,
		})
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Compiled) int {
		if c := strings.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return strings.Compare(a.Query, b.Query)
	})
	return out
}
