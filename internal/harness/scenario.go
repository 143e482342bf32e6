package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cqlmap/internal/mapper"
)

// Scenario defines a mapping scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE definition files. LoadScenario resolves relative
	// paths against the scenario file's directory.
	Specs []string `yaml:"specs"`

	// Converters maps property names to builtin converter names
	// (see BuiltinConverters).
	Converters map[string]string `yaml:"converters,omitempty"`

	// Steps run in order against one mapper per model.
	Steps []Step `yaml:"steps"`

	// Assertions run after all steps.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step runs one mapper operation.
type Step struct {
	// Model is the model mapping name.
	Model string `yaml:"model"`

	// Op is find, insert, update or remove.
	Op string `yaml:"op"`

	// Doc is the document; values may use operand syntax.
	Doc map[string]any `yaml:"doc"`

	// Options are passed to mapper.Execute. Options.When values may use
	// operand syntax.
	Options mapper.Options `yaml:"options,omitempty"`

	// Expect is checked against the generated statement when present.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a step. Empty fields are not
// checked.
type Expect struct {
	Query      string `yaml:"query,omitempty"`
	Params     []any  `yaml:"params,omitempty"`
	Idempotent *bool  `yaml:"idempotent,omitempty"`
	IsCounter  *bool  `yaml:"is_counter,omitempty"`

	// Error is a substring of the expected error. A step with Error set
	// must fail.
	Error string `yaml:"error,omitempty"`
}

// Assertion checks a property of the whole run.
type Assertion struct {
	Type string `yaml:"type"`

	// Model is used by shape_count.
	Model string `yaml:"model,omitempty"`

	// Count is used by shape_count and catalog_size.
	Count int `yaml:"count,omitempty"`

	// Steps are step indexes, used by same_shape and distinct_shape.
	Steps []int `yaml:"steps,omitempty"`
}

// Assertion type constants.
const (
	AssertShapeCount        = "shape_count"
	AssertSameShape         = "same_shape"
	AssertDistinctShape     = "distinct_shape"
	AssertCatalogSize       = "catalog_size"
	AssertPlaceholdersMatch = "placeholders_match"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) {
			scenario.Specs[i] = filepath.Join(base, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for property, name := range s.Converters {
		if _, ok := BuiltinConverters[name]; !ok {
			return fmt.Errorf("converters[%s]: unknown converter %q", property, name)
		}
	}

	for i, step := range s.Steps {
		if step.Model == "" {
			return fmt.Errorf("steps[%d]: model is required", i)
		}
		switch step.Op {
		case mapper.OpFind, mapper.OpInsert, mapper.OpUpdate, mapper.OpRemove:
		case "":
			return fmt.Errorf("steps[%d]: op is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, len(s.Steps)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertShapeCount:
		if a.Model == "" {
			return fmt.Errorf("assertions[%d]: model is required for shape_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for shape_count", index)
		}
	case AssertCatalogSize:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for catalog_size", index)
		}
	case AssertSameShape, AssertDistinctShape:
		if len(a.Steps) < 2 {
			return fmt.Errorf("assertions[%d]: at least two steps are required for %s", index, a.Type)
		}
		for _, s := range a.Steps {
			if s < 0 || s >= steps {
				return fmt.Errorf("assertions[%d]: step %d out of range", index, s)
			}
		}
	case AssertPlaceholdersMatch:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
