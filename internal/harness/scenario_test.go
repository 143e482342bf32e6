package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a spec placeholder and a scenario into dir and
// returns the scenario path.
func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.cue"), []byte("// placeholder"), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, `
name: test_scenario
description: "Test scenario for validation"
specs:
  - app.cue
converters:
  displayName: upper
steps:
  - model: User
    op: insert
    doc: {id: u1, age: {$gt: 3}}
    options: {ttl: 60, if_not_exists: true}
    expect:
      idempotent: false
assertions:
  - type: shape_count
    model: User
    count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, []string{filepath.Join(dir, "app.cue")}, scenario.Specs)
	assert.Equal(t, map[string]string{"displayName": "upper"}, scenario.Converters)
	require.Len(t, scenario.Steps, 1)

	step := scenario.Steps[0]
	assert.Equal(t, "User", step.Model)
	assert.Equal(t, "u1", step.Doc["id"])
	assert.Equal(t, map[string]any{"$gt": 3}, step.Doc["age"])
	require.NotNil(t, step.Options.TTL)
	assert.Equal(t, 60, *step.Options.TTL)
	assert.True(t, step.Options.IfNotExists)
	require.NotNil(t, step.Expect)
	require.NotNil(t, step.Expect.Idempotent)
	assert.False(t, *step.Expect.Idempotent)
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, `
name: typo
description: "Unknown field"
specs: [app.cue]
steps:
  - model: User
    op: find
    doc: {}
assertion:
  - type: placeholders_match
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: "d"
specs: [app.cue]
steps: [{model: User, op: find}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: n
specs: [app.cue]
steps: [{model: User, op: find}]
`,
			wantErr: "description is required",
		},
		{
			name: "no specs",
			content: `
name: n
description: "d"
steps: [{model: User, op: find}]
`,
			wantErr: "specs list is required",
		},
		{
			name: "missing spec file",
			content: `
name: n
description: "d"
specs: [missing.cue]
steps: [{model: User, op: find}]
`,
			wantErr: "spec file not found",
		},
		{
			name: "no steps",
			content: `
name: n
description: "d"
specs: [app.cue]
`,
			wantErr: "steps list is required",
		},
		{
			name: "unknown converter",
			content: `
name: n
description: "d"
specs: [app.cue]
converters: {displayName: reverse}
steps: [{model: User, op: find}]
`,
			wantErr: `unknown converter "reverse"`,
		},
		{
			name: "missing model",
			content: `
name: n
description: "d"
specs: [app.cue]
steps: [{op: find}]
`,
			wantErr: "steps[0]: model is required",
		},
		{
			name: "unknown op",
			content: `
name: n
description: "d"
specs: [app.cue]
steps: [{model: User, op: upsert}]
`,
			wantErr: `steps[0]: unknown op "upsert"`,
		},
		{
			name: "unknown assertion",
			content: `
name: n
description: "d"
specs: [app.cue]
steps: [{model: User, op: find}]
assertions: [{type: trace_order}]
`,
			wantErr: `unknown assertion type "trace_order"`,
		},
		{
			name: "shape_count without model",
			content: `
name: n
description: "d"
specs: [app.cue]
steps: [{model: User, op: find}]
assertions: [{type: shape_count, count: 1}]
`,
			wantErr: "model is required for shape_count",
		},
		{
			name: "same_shape with one step",
			content: `
name: n
description: "d"
specs: [app.cue]
steps: [{model: User, op: find}]
assertions: [{type: same_shape, steps: [0]}]
`,
			wantErr: "at least two steps are required for same_shape",
		},
		{
			name: "distinct_shape out of range",
			content: `
name: n
description: "d"
specs: [app.cue]
steps: [{model: User, op: find}]
assertions: [{type: distinct_shape, steps: [0, 4]}]
`,
			wantErr: "step 4 out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
