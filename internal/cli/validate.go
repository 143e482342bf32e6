package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cqlmap/internal/compiler"
	"github.com/roach88/cqlmap/internal/mapper"
	"github.com/roach88/cqlmap/internal/queryir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [specs-dir]",
		Short: "Validate mapping definitions",
		Long: `Validate CUE table and model definitions.

Runs the structural checks of compile plus the schema checks (key column
types, counter tables, duplicate and unmapped columns), then lints the
canonical statements of every model. Warnings are reported but do not fail
validation.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, rootOpts.specsDir(args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadSpecs(specsDir)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	var findings []compiler.ValidationError
	for _, err := range loadErrors {
		code, message := parseCompileError(err)
		findings = append(findings, compiler.ValidationError{
			Field:    "load",
			Message:  message,
			Code:     code,
			Severity: compiler.SeverityError,
		})
	}
	findings = append(findings, validateSpecs(loadResult.Specs, formatter)...)

	result := ValidationResult{Valid: true}
	for _, f := range findings {
		if f.IsWarning() {
			result.Warnings = append(result.Warnings, f)
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// validateSpecs runs the schema checks on every compiled table and model
// and lints the canonical statements of each model.
func validateSpecs(specs *compiler.Specs, formatter *OutputFormatter) []compiler.ValidationError {
	var findings []compiler.ValidationError

	for _, name := range specs.TableNames {
		formatter.VerboseLog("Validating table: %s", name)
		for _, f := range compiler.Validate(specs.Tables[name]) {
			f.Field = "table." + name + "." + f.Field
			findings = append(findings, f)
		}
	}

	for _, model := range specs.Models {
		formatter.VerboseLog("Validating model: %s", model.Name)
		modelFindings := compiler.Validate(model)
		blocked := false
		for _, f := range modelFindings {
			f.Field = "model." + model.Name + "." + f.Field
			findings = append(findings, f)
			blocked = blocked || !f.IsWarning()
		}
		// Statements of a broken mapping would only repeat its errors.
		if blocked {
			continue
		}
		findings = append(findings, lintModel(mapper.New(model, nil))...)
	}

	return findings
}

func lintModel(m *mapper.Mapper) []compiler.ValidationError {
	var findings []compiler.ValidationError
	for _, stmt := range m.Canonical() {
		res := queryir.Lint(stmt)
		for _, w := range res.Warnings {
			findings = append(findings, compiler.ValidationError{
				Field:    fmt.Sprintf("model.%s.%s", m.Mapping().Name, stmt.Kind()),
				Message:  w,
				Code:     ErrCodeLint,
				Severity: compiler.SeverityWarning,
			})
		}
	}
	return findings
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	printWarnings(formatter, result.Warnings)
	fmt.Fprintln(formatter.Writer, "✓ All specs valid")
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Validation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs the findings of a failed validation.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))

	if formatter.JSON() {
		first := CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		if err := formatter.Failure(first, result); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range result.Errors {
		fmt.Fprintf(formatter.Writer, "%s\n  %s: %s\n\n", err.Field, err.Code, err.Message)
	}
	printWarnings(formatter, result.Warnings)

	return NewExitError(ExitFailure, msg)
}

func printWarnings(formatter *OutputFormatter, warnings []compiler.ValidationError) {
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "warning: %s\n  %s: %s\n\n", w.Field, w.Code, w.Message)
	}
}
