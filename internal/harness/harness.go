package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/cqlmap/internal/compiler"
	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/mapper"
	"github.com/roach88/cqlmap/internal/store"
)

// BuiltinConverters are the converters a scenario can name.
var BuiltinConverters = map[string]ir.ConvertFunc{
	"upper":  stringConverter("upper", strings.ToUpper),
	"lower":  stringConverter("lower", strings.ToLower),
	"string": func(v any) (any, error) { return fmt.Sprint(v), nil },
}

func stringConverter(name string, fn func(string) string) ir.ConvertFunc {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: want string, got %T", name, v)
		}
		return fn(s), nil
	}
}

// Harness holds the state of one scenario run.
type Harness struct {
	specs   *compiler.Specs
	conv    ir.Converters
	mappers map[string]*mapper.Mapper
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile the CUE definitions named by the scenario
//  2. Run every step through a per-model mapper
//  3. Record the compiled statements in a fresh in-memory catalog
//  4. Evaluate assertions
//
// Step failures that the scenario does not expect are reported in
// Result.Errors; the returned error is reserved for scenarios that cannot
// run at all.
func Run(scenario *Scenario) (*Result, error) {
	specs, err := loadSpecs(scenario.Specs)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		specs:   specs,
		conv:    make(ir.Converters, len(scenario.Converters)),
		mappers: make(map[string]*mapper.Mapper),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for property, name := range scenario.Converters {
		fn, ok := BuiltinConverters[name]
		if !ok {
			return nil, fmt.Errorf("converters[%s]: unknown converter %q", property, name)
		}
		h.conv[property] = fn
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, err
		}
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.PutAll(ctx, h.catalogEntries()); err != nil {
		return nil, fmt.Errorf("failed to record catalog: %w", err)
	}

	actx := &AssertionContext{
		Store:   st,
		Ctx:     ctx,
		Mappers: h.mappers,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// loadSpecs compiles and unifies the given CUE files.
func loadSpecs(paths []string) (*compiler.Specs, error) {
	ctx := cuecontext.New()
	var value cue.Value
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec file: %w", err)
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("failed to compile %s: %w", path, err)
		}
		if i == 0 {
			value = v
		} else {
			value = value.Unify(v)
		}
	}
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to unify specs: %w", err)
	}

	specs, errs := compiler.CompileSpecs(value)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to compile specs: %w", errors.Join(errs...))
	}
	return specs, nil
}

func (h *Harness) mapperFor(model string) (*mapper.Mapper, error) {
	if m, ok := h.mappers[model]; ok {
		return m, nil
	}
	mapping, ok := h.specs.Model(model)
	if !ok {
		return nil, fmt.Errorf("unknown model %q", model)
	}
	m := mapper.New(mapping, h.conv, mapper.WithLogger(h.logger))
	h.mappers[model] = m
	return m, nil
}

// executeStep runs one step and checks its expect clause.
func (h *Harness) executeStep(i int, step Step, result *Result) error {
	m, err := h.mapperFor(step.Model)
	if err != nil {
		return fmt.Errorf("steps[%d]: %w", i, err)
	}

	doc, err := ir.DecodeFields(step.Doc)
	if err != nil {
		return fmt.Errorf("steps[%d]: doc: %w", i, err)
	}
	opts := step.Options
	if opts.When != nil {
		if opts.When, err = ir.DecodeFields(opts.When); err != nil {
			return fmt.Errorf("steps[%d]: options.when: %w", i, err)
		}
	}

	sr := StepResult{Model: step.Model, Op: step.Op}
	exec, err := m.Execute(step.Op, doc, opts)
	if err != nil {
		sr.Err = err
	} else {
		sr.Kind = exec.Kind
		sr.Query = exec.Query
		sr.Params = exec.Params
		sr.Idempotent = exec.Idempotent
		sr.IsCounter = exec.IsCounter
		sr.ShapeID = exec.ShapeID
	}
	result.addStep(sr)

	h.logger.Info("step executed",
		"step", i,
		"model", step.Model,
		"op", step.Op,
		"query", sr.Query,
		"error", sr.Err,
	)

	for _, msg := range checkExpect(sr, step.Expect) {
		result.AddError(fmt.Sprintf("steps[%d]: %s", i, msg))
	}
	return nil
}

// checkExpect compares a step result with its expect clause.
func checkExpect(sr StepResult, expect *Expect) []string {
	if expect != nil && expect.Error != "" {
		if sr.Err == nil {
			return []string{fmt.Sprintf("expected error containing %q, got success", expect.Error)}
		}
		if !strings.Contains(sr.Err.Error(), expect.Error) {
			return []string{fmt.Sprintf("expected error containing %q, got %q", expect.Error, sr.Err.Error())}
		}
		return nil
	}
	if sr.Err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", sr.Err)}
	}
	if expect == nil {
		return nil
	}

	var errs []string
	if expect.Query != "" && expect.Query != sr.Query {
		errs = append(errs, fmt.Sprintf("query: expected %q, got %q", expect.Query, sr.Query))
	}
	if expect.Params != nil && !sameJSON(expect.Params, sr.Params) {
		errs = append(errs, fmt.Sprintf("params: expected %v, got %v", expect.Params, sr.Params))
	}
	if expect.Idempotent != nil && *expect.Idempotent != sr.Idempotent {
		errs = append(errs, fmt.Sprintf("idempotent: expected %t, got %t", *expect.Idempotent, sr.Idempotent))
	}
	if expect.IsCounter != nil && *expect.IsCounter != sr.IsCounter {
		errs = append(errs, fmt.Sprintf("is_counter: expected %t, got %t", *expect.IsCounter, sr.IsCounter))
	}
	return errs
}

// sameJSON compares values by their JSON form, so YAML integers match
// whatever integer type a converter produced.
func sameJSON(a, b any) bool {
	var na, nb any
	if !normalizeJSON(a, &na) || !normalizeJSON(b, &nb) {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

func normalizeJSON(v any, out *any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// catalogEntries lists every compiled statement, ordered by model.
func (h *Harness) catalogEntries() []store.Entry {
	models := make([]string, 0, len(h.mappers))
	for name := range h.mappers {
		models = append(models, name)
	}
	sort.Strings(models)

	var entries []store.Entry
	for _, name := range models {
		entries = append(entries, h.mappers[name].Entries()...)
	}
	return entries
}
