package harness

import "github.com/google/uuid"

// StepResult records what one step produced.
type StepResult struct {
	Model      string
	Op         string
	Kind       string
	Query      string
	Params     []any
	Idempotent bool
	IsCounter  bool
	ShapeID    uuid.UUID

	// Shape is the index of the first step that produced the same
	// statement shape, or -1 when the step failed.
	Shape int

	Err error
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool

	Steps []StepResult

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addStep appends a step result and resolves its shape index.
func (r *Result) addStep(s StepResult) {
	s.Shape = -1
	if s.Err == nil {
		s.Shape = len(r.Steps)
		for i, prev := range r.Steps {
			if prev.Err == nil && prev.ShapeID == s.ShapeID {
				s.Shape = i
				break
			}
		}
	}
	r.Steps = append(r.Steps, s)
}
