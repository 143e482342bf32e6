package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/cqlmap/internal/ir"
)

// Specs is the compiled content of one definition set.
type Specs struct {
	// Tables by name; TableNames keeps declaration order.
	Tables     map[string]*Table `json:"tables"`
	TableNames []string          `json:"-"`

	// Models in declaration order.
	Models []*ir.ModelMapping `json:"models"`
}

// Model returns the mapping named name.
func (s *Specs) Model(name string) (*ir.ModelMapping, bool) {
	for _, m := range s.Models {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// CompileSpecs compiles every table under "table" and every model under
// "model". It collects all errors rather than stopping at the first one;
// a failing table also fails the models that reference it.
func CompileSpecs(v cue.Value) (*Specs, []error) {
	specs := &Specs{Tables: make(map[string]*Table)}
	var errs []error

	if tablesVal := v.LookupPath(cue.ParsePath("table")); tablesVal.Exists() {
		iter, err := tablesVal.Fields()
		if err != nil {
			return specs, []error{formatCUEError(err)}
		}
		for iter.Next() {
			table, err := CompileTable(iter.Value())
			if err != nil {
				errs = append(errs, fmt.Errorf("table.%s: %w", iter.Label(), err))
				continue
			}
			specs.Tables[iter.Label()] = table
			specs.TableNames = append(specs.TableNames, iter.Label())
		}
	}

	if modelsVal := v.LookupPath(cue.ParsePath("model")); modelsVal.Exists() {
		iter, err := modelsVal.Fields()
		if err != nil {
			return specs, append(errs, formatCUEError(err))
		}
		for iter.Next() {
			model, err := CompileModel(iter.Value(), specs.Tables)
			if err != nil {
				errs = append(errs, fmt.Errorf("model.%s: %w", iter.Label(), err))
				continue
			}
			specs.Models = append(specs.Models, model)
		}
	}

	return specs, errs
}
