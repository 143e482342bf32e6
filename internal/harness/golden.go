package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the statements generated by a scenario run.
type Snapshot struct {
	Scenario string         `json:"scenario"`
	Steps    []SnapshotStep `json:"steps"`
}

// SnapshotStep is the golden form of a StepResult. Shape ids are
// represented by the index of the first step with the same shape, so
// snapshots do not change when the shape hash algorithm does.
type SnapshotStep struct {
	Model      string `json:"model"`
	Op         string `json:"op"`
	Query      string `json:"query,omitempty"`
	Params     []any  `json:"params,omitempty"`
	Idempotent bool   `json:"idempotent"`
	IsCounter  bool   `json:"is_counter"`
	Shape      *int   `json:"shape,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(name string, result *Result) Snapshot {
	snap := Snapshot{Scenario: name, Steps: make([]SnapshotStep, len(result.Steps))}
	for i, s := range result.Steps {
		step := SnapshotStep{
			Model:      s.Model,
			Op:         s.Op,
			Query:      s.Query,
			Params:     s.Params,
			Idempotent: s.Idempotent,
			IsCounter:  s.IsCounter,
		}
		if s.Err != nil {
			step.Error = s.Err.Error()
		} else {
			shape := s.Shape
			step.Shape = &shape
		}
		snap.Steps[i] = step
	}
	return snap
}

// Marshal renders the snapshot as indented JSON without HTML escaping,
// so comparison operators stay readable.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(name, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
