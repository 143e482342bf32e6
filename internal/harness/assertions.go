package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/cqlmap/internal/cql"
	"github.com/roach88/cqlmap/internal/mapper"
	"github.com/roach88/cqlmap/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Steps    []StepResult
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Steps) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for i, s := range e.Steps {
			if s.Err != nil {
				fmt.Fprintf(&buf, "  [%d] %s %s: error: %v\n", i, s.Model, s.Op, s.Err)
				continue
			}
			fmt.Fprintf(&buf, "  [%d] %s %s: %s\n", i, s.Model, s.Op, s.Query)
		}
	}

	return buf.String()
}

// AssertionContext provides what assertions inspect besides step results.
type AssertionContext struct {
	Store   *store.Store
	Ctx     context.Context
	Mappers map[string]*mapper.Mapper
}

// EvaluateAssertions runs all assertions and returns their failure
// messages. An empty slice means every assertion held.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertShapeCount:
		return assertShapeCount(result, a, actx)
	case AssertSameShape:
		return assertSameShape(result, a)
	case AssertDistinctShape:
		return assertDistinctShape(result, a)
	case AssertCatalogSize:
		return assertCatalogSize(result, a, actx)
	case AssertPlaceholdersMatch:
		return assertPlaceholdersMatch(result)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertShapeCount checks how many statement shapes a model compiled.
func assertShapeCount(result *Result, a Assertion, actx *AssertionContext) error {
	count := 0
	if m, ok := actx.Mappers[a.Model]; ok {
		count = m.Stats().Size
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertShapeCount,
			Expected: fmt.Sprintf("%d shapes for %s", a.Count, a.Model),
			Actual:   fmt.Sprintf("%d shapes", count),
			Steps:    result.Steps,
		}
	}
	return nil
}

// assertSameShape checks that the listed steps share one statement shape.
func assertSameShape(result *Result, a Assertion) error {
	first, err := stepAt(result, a.Steps[0])
	if err != nil {
		return err
	}
	for _, idx := range a.Steps[1:] {
		s, err := stepAt(result, idx)
		if err != nil {
			return err
		}
		if s.ShapeID != first.ShapeID {
			return &AssertionError{
				Type:     AssertSameShape,
				Expected: fmt.Sprintf("step %d to share the shape of step %d", idx, a.Steps[0]),
				Actual:   fmt.Sprintf("%q vs %q", s.Query, first.Query),
				Steps:    result.Steps,
			}
		}
	}
	return nil
}

// assertDistinctShape checks that the listed steps use pairwise different
// statement shapes.
func assertDistinctShape(result *Result, a Assertion) error {
	seen := make(map[string]int, len(a.Steps))
	for _, idx := range a.Steps {
		s, err := stepAt(result, idx)
		if err != nil {
			return err
		}
		key := s.ShapeID.String()
		if prev, ok := seen[key]; ok {
			return &AssertionError{
				Type:     AssertDistinctShape,
				Expected: fmt.Sprintf("steps %d and %d to differ in shape", prev, idx),
				Actual:   fmt.Sprintf("both compiled %q", s.Query),
				Steps:    result.Steps,
			}
		}
		seen[key] = idx
	}
	return nil
}

// assertCatalogSize checks the number of catalogued statements.
func assertCatalogSize(result *Result, a Assertion, actx *AssertionContext) error {
	entries, err := actx.Store.List(actx.Ctx)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	if len(entries) != a.Count {
		return &AssertionError{
			Type:     AssertCatalogSize,
			Expected: fmt.Sprintf("%d catalog entries", a.Count),
			Actual:   fmt.Sprintf("%d entries", len(entries)),
			Steps:    result.Steps,
		}
	}
	return nil
}

// assertPlaceholdersMatch checks that every successful step produced one
// parameter per placeholder.
func assertPlaceholdersMatch(result *Result) error {
	for i, s := range result.Steps {
		if s.Err != nil {
			continue
		}
		if n := cql.CountPlaceholders(s.Query); n != len(s.Params) {
			return &AssertionError{
				Type:     AssertPlaceholdersMatch,
				Expected: fmt.Sprintf("step %d to bind %d parameters", i, n),
				Actual:   fmt.Sprintf("%d parameters", len(s.Params)),
				Steps:    result.Steps,
			}
		}
	}
	return nil
}

func stepAt(result *Result, idx int) (StepResult, error) {
	if idx < 0 || idx >= len(result.Steps) {
		return StepResult{}, fmt.Errorf("step %d out of range", idx)
	}
	s := result.Steps[idx]
	if s.Err != nil {
		return StepResult{}, fmt.Errorf("step %d failed: %v", idx, s.Err)
	}
	return s, nil
}
