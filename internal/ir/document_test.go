package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Audit struct {
	CreatedBy string `cql:"created_by"`
}

type user struct {
	Audit
	ID     int    `cql:"id"`
	Name   string `cql:"name,omitempty"`
	Email  string
	Secret string `cql:"-"`
}

func TestStructDocument(t *testing.T) {
	doc, err := StructDocument(&user{
		Audit:  Audit{CreatedBy: "root"},
		ID:     5,
		Name:   "ada",
		Email:  "ada@example.com",
		Secret: "hunter2",
	})
	require.NoError(t, err)

	v, ok := doc.Property("id")
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	v, _ = doc.Property("name")
	assert.Equal(t, "ada", v)

	v, _ = doc.Property("Email")
	assert.Equal(t, "ada@example.com", v, "untagged fields use the Go name")

	v, _ = doc.Property("created_by")
	assert.Equal(t, "root", v, "embedded struct fields are flattened")

	_, ok = doc.Property("Secret")
	assert.False(t, ok)
}

func TestStructDocumentNilAndInvalid(t *testing.T) {
	doc, err := StructDocument((*user)(nil))
	require.NoError(t, err)
	assert.Empty(t, doc)

	_, err = StructDocument(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected struct")
}

func TestWhenDocument(t *testing.T) {
	when := WhenDocument{
		{Property: "version", Column: "version", Value: Literal{V: 3}},
		{Property: "score", Column: "score", Value: Gt(10)},
	}

	v, ok := when.Property("version")
	assert.True(t, ok)
	assert.Equal(t, 3, v, "literal wrapper is unwrapped")

	v, ok = when.Property("score")
	assert.True(t, ok)
	assert.Equal(t, Gt(10), v, "comparison wrapper reaches the extractor")

	_, ok = when.Property("nope")
	assert.False(t, ok)
}

func TestConverters(t *testing.T) {
	upper := func(v any) (any, error) { return v, nil }
	conv := Converters{"name": upper, "broken": nil}

	_, ok := conv.Converter("name")
	assert.True(t, ok)
	_, ok = conv.Converter("broken")
	assert.False(t, ok, "nil routines count as missing")
	_, ok = Converters(nil).Converter("name")
	assert.False(t, ok)
	assert.True(t, errors.Is(ErrNoConverter, ErrNoConverter))
}

func TestModelMappingBindings(t *testing.T) {
	m := &ModelMapping{
		Name:  "User",
		Table: "users",
		Properties: []PropertyMapping{
			{Property: "id", Column: "id"},
			{Property: "name", Column: "name", Convert: true},
			{Property: "tags", Column: "tags"},
		},
	}

	got := m.Bindings(Fields{"tags": Append([]any{"x"}), "id": 7})

	require.Len(t, got, 2)
	assert.Equal(t, PropertyBinding{Property: "id", Column: "id", Value: Literal{V: 7}}, got[0])
	assert.Equal(t, "tags", got[1].Property)
	assert.Equal(t, KindAssignment, KindOf(got[1].Value))

	col, ok := m.ColumnFor("name")
	assert.True(t, ok)
	assert.Equal(t, "name", col)
}
