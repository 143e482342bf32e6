package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cqlmap/internal/compiler"
)

// LoadResult contains the results of loading specs from a directory.
type LoadResult struct {
	Specs     *compiler.Specs
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads the CUE package in dir and compiles its tables and
// models. A nil result means nothing could be compiled; otherwise the
// errors are per-definition compile errors and the result holds whatever
// compiled cleanly.
func LoadSpecs(dir string) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	specs, compileErrs := compiler.CompileSpecs(value)
	result := &LoadResult{
		Specs:     specs,
		FileCount: len(cueFiles),
	}

	errs := make([]error, 0, len(compileErrs))
	for _, err := range compileErrs {
		errs = append(errs, convertCompileError(err))
	}
	if len(specs.Tables) == 0 && len(specs.Models) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no tables or models found in specs"})
	}

	return result, errs
}

// FindCUEFiles returns the .cue files directly in dir. Subdirectories are
// not part of the loaded package.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with
// position info. The message keeps the definition prefix
// ("table.users: ...") added by CompileSpecs.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		msg := compileErr.Message
		if prefix, _, ok := strings.Cut(err.Error(), ": "); ok && isDefinitionPath(prefix) {
			msg = prefix + ": " + msg
		}
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: msg,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
	}
}

func isDefinitionPath(s string) bool {
	return strings.HasPrefix(s, "table.") || strings.HasPrefix(s, "model.")
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeCatalog     = "E008" // Statement catalog error
	ErrCodeDocument    = "E009" // Unreadable document or condition file

	// Definition structure errors
	ErrCodeKeyspace   = "E010" // Missing or invalid keyspace
	ErrCodeColumns    = "E011" // Missing or invalid columns
	ErrCodeKey        = "E012" // Invalid partition or clustering key
	ErrCodeTableRef   = "E013" // Model references a missing table
	ErrCodeProperties = "E014" // Missing or invalid properties
	ErrCodeCUE        = "E015" // CUE evaluation error

	// Rendering errors
	ErrCodeUnknownModel = "E020" // Model not defined
	ErrCodeRender       = "E021" // Statement generation or extraction failed

	ErrCodeLint       = "E120" // Lint finding on a canonical statement
	ErrCodeTestFailed = "E030" // One or more scenarios failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "keyspace":
		return ErrCodeKeyspace
	case field == "columns" || strings.HasPrefix(field, "columns."):
		return ErrCodeColumns
	case field == "partition_key" || field == "clustering_key":
		return ErrCodeKey
	case field == "table":
		return ErrCodeTableRef
	case field == "properties" || field == "property" || strings.HasPrefix(field, "properties."):
		return ErrCodeProperties
	case field == "cue":
		return ErrCodeCUE
	default:
		return ErrCodeGeneric
	}
}
