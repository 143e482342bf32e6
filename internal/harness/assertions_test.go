package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/mapper"
	"github.com/roach88/cqlmap/internal/store"
	"github.com/roach88/cqlmap/internal/testutil"
)

var (
	shapeA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	shapeB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

func testResult() *Result {
	r := NewResult()
	r.addStep(StepResult{Model: "User", Op: "find", Query: "SELECT * FROM ks.users WHERE id = ? ALLOW FILTERING", Params: []any{1}, ShapeID: shapeA})
	r.addStep(StepResult{Model: "User", Op: "find", Query: "SELECT * FROM ks.users WHERE id = ? ALLOW FILTERING", Params: []any{2}, ShapeID: shapeA})
	r.addStep(StepResult{Model: "User", Op: "remove", Query: "DELETE FROM ks.users WHERE id = ? AND bucket = ?", Params: []any{1, 0}, ShapeID: shapeB})
	r.addStep(StepResult{Model: "User", Op: "insert", Err: errors.New("boom")})
	return r
}

func testAssertionContext(t *testing.T, entries int) *AssertionContext {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	for i := 0; i < entries; i++ {
		id := uuid.New()
		require.NoError(t, st.Put(ctx, store.Entry{
			ShapeID: id, Model: "User", Kind: "select", Keyspace: "ks", Table: "users",
			Query: "SELECT * FROM ks.users " + id.String(),
		}))
	}

	m := mapper.New(testutil.UserMapping(), testutil.Converters())
	_, err = m.Find(ir.Fields{}, mapper.FindOptions{})
	require.NoError(t, err)

	return &AssertionContext{
		Store:   st,
		Ctx:     ctx,
		Mappers: map[string]*mapper.Mapper{"User": m},
	}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	actx := testAssertionContext(t, 2)
	errs := EvaluateAssertions(testResult(), []Assertion{
		{Type: AssertSameShape, Steps: []int{0, 1}},
		{Type: AssertDistinctShape, Steps: []int{0, 2}},
		{Type: AssertShapeCount, Model: "User", Count: 1},
		{Type: AssertShapeCount, Model: "Order", Count: 0},
		{Type: AssertCatalogSize, Count: 2},
		{Type: AssertPlaceholdersMatch},
	}, actx)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Fail(t *testing.T) {
	actx := testAssertionContext(t, 1)

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"same_shape", Assertion{Type: AssertSameShape, Steps: []int{0, 2}}, "step 2 to share the shape of step 0"},
		{"distinct_shape", Assertion{Type: AssertDistinctShape, Steps: []int{0, 1}}, "steps 0 and 1 to differ in shape"},
		{"shape_count", Assertion{Type: AssertShapeCount, Model: "User", Count: 4}, "4 shapes for User"},
		{"catalog_size", Assertion{Type: AssertCatalogSize, Count: 3}, "3 catalog entries"},
		{"failed step", Assertion{Type: AssertSameShape, Steps: []int{0, 3}}, "step 3 failed: boom"},
		{"out of range", Assertion{Type: AssertDistinctShape, Steps: []int{0, 9}}, "step 9 out of range"},
		{"unknown", Assertion{Type: "final_state"}, `unknown assertion type "final_state"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(testResult(), []Assertion{tt.assertion}, actx)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "assertions[0]: ")
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertPlaceholdersMatch_Mismatch(t *testing.T) {
	r := NewResult()
	r.addStep(StepResult{Model: "User", Op: "find", Query: "SELECT * FROM ks.users WHERE id = ? LIMIT ? ALLOW FILTERING", Params: []any{1}})

	err := assertPlaceholdersMatch(r)
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertPlaceholdersMatch, ae.Type)
	assert.Equal(t, "step 0 to bind 2 parameters", ae.Expected)
	assert.Equal(t, "1 parameters", ae.Actual)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertShapeCount,
		Expected: "2 shapes for User",
		Actual:   "1 shapes",
		Steps: []StepResult{
			{Model: "User", Op: "find", Query: "SELECT * FROM ks.users ALLOW FILTERING"},
			{Model: "User", Op: "insert", Err: errors.New("boom")},
		},
	}

	want := "Assertion failed: shape_count\n" +
		"  Expected: 2 shapes for User\n" +
		"  Actual: 1 shapes\n" +
		"\nSteps:\n" +
		"  [0] User find: SELECT * FROM ks.users ALLOW FILTERING\n" +
		"  [1] User insert: error: boom\n"
	assert.Equal(t, want, err.Error())
}
