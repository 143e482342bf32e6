package cql

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/queryir"
	"github.com/roach88/cqlmap/internal/testutil"
)

func selectOn(where ...ir.PropertyBinding) *GeneratedStatement {
	return GenerateSelect(&queryir.Select{
		Keyspace: "ks",
		Table:    "users",
		Schema:   testutil.UsersSchema(),
		Where:    where,
	})
}

func TestExtract_MissingPropertyIsNil(t *testing.T) {
	gen := selectOn(
		ir.PropertyBinding{Property: "id", Column: "id"},
		ir.PropertyBinding{Property: "age", Column: "age", Value: ir.Gt(1)},
	)

	params, err := gen.Extract(ir.Fields{}, ir.CallOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil}, params)

	params, err = gen.Extract(nil, ir.CallOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil}, params)
}

func TestExtract_AbsentLimitAndTTLAreNil(t *testing.T) {
	gen := GenerateSelect(&queryir.Select{
		Keyspace: "ks",
		Table:    "users",
		Options:  ir.CallOptions{Limit: ir.Int(5)},
	})

	params, err := gen.Extract(ir.Fields{}, ir.CallOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, params)
}

func TestExtract_ReadsByPropertyNotColumn(t *testing.T) {
	gen := selectOn(ir.PropertyBinding{Property: "displayName", Column: "name"})

	params, err := gen.Extract(ir.Fields{"name": "wrong", "displayName": "right"}, ir.CallOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"right"}, params)
}

func TestExtract_LiteralWrapperUnwrapped(t *testing.T) {
	gen := selectOn(ir.PropertyBinding{Property: "id", Column: "id"})

	params, err := gen.Extract(ir.Fields{"id": ir.Literal{V: "u1"}}, ir.CallOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"u1"}, params)
}

func TestExtract_NoConverter(t *testing.T) {
	gen := selectOn(
		ir.PropertyBinding{Property: "id", Column: "id"},
		ir.PropertyBinding{Property: "displayName", Column: "name", NeedsConversion: true},
	)
	doc := ir.Fields{"id": "u1", "displayName": "ada"}

	for name, conv := range map[string]ir.ConversionLookup{
		"nil lookup":   nil,
		"empty lookup": ir.Converters{},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := gen.Extract(doc, ir.CallOptions{}, conv)
			require.Error(t, err)
			assert.ErrorIs(t, err, ir.ErrNoConverter)

			var extractErr *ExtractError
			require.ErrorAs(t, err, &extractErr)
			assert.Equal(t, 1, extractErr.Index)
			assert.Equal(t, "displayName", extractErr.Property)
		})
	}
}

func TestExtract_ConverterErrorPropagates(t *testing.T) {
	gen := selectOn(ir.PropertyBinding{Property: "displayName", Column: "name", NeedsConversion: true})

	_, err := gen.Extract(ir.Fields{"displayName": 42}, ir.CallOptions{}, testutil.Converters())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want string")
}

func TestExtract_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		shape ir.Value
		value any
	}{
		{"scalar shape, plain value", ir.Gt(1), 5},
		{"composite shape, scalar value", ir.Between(1, 2), ir.Gt(1)},
		{"composite nesting differs", ir.And(ir.Gt(1), ir.Between(1, 2)), ir.Between(1, 2)},
		{"literal shape, scalar value", ir.Literal{}, ir.Gt(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := selectOn(ir.PropertyBinding{Property: "age", Column: "age", Value: tt.shape})
			_, err := gen.Extract(ir.Fields{"age": tt.value}, ir.CallOptions{}, nil)
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

func TestExtract_CompositeConvertsEachChild(t *testing.T) {
	gen := selectOn(ir.PropertyBinding{
		Property:        "displayName",
		Column:          "name",
		Value:           ir.Between("a", "b"),
		NeedsConversion: true,
	})

	params, err := gen.Extract(ir.Fields{"displayName": ir.Between("a", "m")}, ir.CallOptions{}, testutil.Converters())
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "M"}, params)
}

func TestExtract_MembershipInsideComposite(t *testing.T) {
	shape := ir.And(ir.In("x"), ir.Ne("x"))
	gen := selectOn(ir.PropertyBinding{Property: "displayName", Column: "name", Value: shape, NeedsConversion: true})

	assert.Equal(t, "SELECT * FROM ks.users WHERE name IN ? AND name != ? ALLOW FILTERING", gen.Query)

	doc := ir.Fields{"displayName": ir.And(ir.In("a", "b"), ir.Ne("c"))}
	params, err := gen.Extract(doc, ir.CallOptions{}, testutil.Converters())
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"A", "B"}, "C"}, params)
}

func TestExtract_DoesNotMutateDocument(t *testing.T) {
	gen := selectOn(ir.PropertyBinding{Property: "displayName", Column: "name", Value: ir.In(), NeedsConversion: true})

	values := []any{"a", "b"}
	doc := ir.Fields{"displayName": ir.In(values...)}
	_, err := gen.Extract(doc, ir.CallOptions{}, testutil.Converters())
	require.NoError(t, err)
	assert.Equal(t, ir.Fields{"displayName": ir.In("a", "b")}, doc)
}

// Every generated query has exactly as many placeholders as its extractor
// produces parameters.
func TestPlaceholderCountMatchesExtractor(t *testing.T) {
	users := testutil.UsersSchema()
	key := []ir.PropertyBinding{
		{Property: "id", Column: "id"},
		{Property: "bucket", Column: "bucket"},
	}
	values := []ir.Value{nil, ir.Literal{V: 1}, ir.Gt(1), ir.In(1, 2), ir.Between(1, 2), ir.And(ir.Gt(1), ir.Between(1, 2))}
	whens := [][]ir.PropertyBinding{
		nil,
		{{Property: "email", Column: "email"}},
		{{Property: "age", Column: "age", Value: ir.Between(1, 2)}, {Property: "nickname", Column: "nickname"}},
	}

	var stmts []queryir.Statement
	for _, v := range values {
		where := append([]ir.PropertyBinding{{Property: "age", Column: "age", Value: v}}, key...)
		for _, limit := range []*int{nil, ir.Int(1)} {
			stmts = append(stmts, &queryir.Select{Keyspace: "ks", Table: "users", Schema: users, Where: where, Options: ir.CallOptions{Limit: limit}})
		}
	}
	for _, when := range whens {
		for _, ttl := range []*int{nil, ir.Int(1)} {
			for _, ifExists := range []bool{false, true} {
				opts := ir.CallOptions{TTL: ttl, When: when}
				mutated := []ir.PropertyBinding{
					{Property: "name", Column: "name"},
					{Property: "tags", Column: "tags", Value: ir.Append([]string{"x"})},
					{Property: "nickname", Column: "nickname"},
				}
				stmts = append(stmts,
					&queryir.Insert{Keyspace: "ks", Table: "users", Schema: users, Bindings: append(mutated[:1:1], key...), Options: opts, IfNotExists: ifExists},
					&queryir.Update{Keyspace: "ks", Table: "users", Schema: users, Bindings: append(mutated, key...), Options: opts, When: when, IfExists: ifExists},
					&queryir.Delete{Keyspace: "ks", Table: "users", Schema: users, Bindings: append(mutated, key...), Options: ir.CallOptions{When: when, DeleteOnlyColumns: true}, When: when, IfExists: ifExists},
				)
			}
		}
	}

	for i, stmt := range stmts {
		t.Run(fmt.Sprintf("%d_%s", i, stmt.Kind()), func(t *testing.T) {
			gen, err := Generate(stmt)
			require.NoError(t, err)
			assert.Equal(t, CountPlaceholders(gen.Query), gen.Extractor.Len(), gen.Query)

			params, err := gen.Extract(ir.Fields{}, ir.CallOptions{}, nil)
			require.NoError(t, err)
			assert.Len(t, params, gen.Extractor.Len())
		})
	}
}

func TestExtract_ConcurrentUse(t *testing.T) {
	gen := selectOn(
		ir.PropertyBinding{Property: "id", Column: "id"},
		ir.PropertyBinding{Property: "displayName", Column: "name", Value: ir.In(), NeedsConversion: true},
	)
	conv := testutil.Converters()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("u%d", i)
			params, err := gen.Extract(ir.Fields{"id": id, "displayName": ir.In("a")}, ir.CallOptions{}, conv)
			if err != nil {
				errs <- err
				return
			}
			if params[0] != id {
				errs <- errors.New("parameter crossed goroutines")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
