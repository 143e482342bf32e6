package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/roach88/cqlmap/internal/compiler"
	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/mapper"
	"github.com/roach88/cqlmap/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled definitions.
type CompilationResult struct {
	Tables []TableResult      `json:"tables"`
	Models []*ir.ModelMapping `json:"models"`

	// Catalog is the number of statements recorded with --catalog.
	Catalog int `json:"catalog,omitempty"`
}

// TableResult is one compiled table.
type TableResult struct {
	Name string `json:"name"`
	*compiler.Table
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [specs-dir]",
		Short: "Compile CUE mapping definitions",
		Long: `Compile CUE table and model definitions.

The compiler loads the CUE package in the specs directory, checks every
table and model, and prints the compiled mappings. With --catalog, the
canonical statements of every model (find, insert, update and remove by
primary key) are compiled and recorded in a SQLite statement catalog.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	// Read through the config layer (key "catalog").
	cmd.Flags().String("catalog", "", "record canonical statements in this SQLite catalog")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadSpecs(specsDir)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	for _, name := range loadResult.Specs.TableNames {
		formatter.VerboseLog("Compiled table: %s", name)
	}
	for _, m := range loadResult.Specs.Models {
		formatter.VerboseLog("Compiled model: %s", m.Name)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := newCompilationResult(loadResult.Specs)

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if opts.Catalog != "" {
		n, err := recordCatalog(cmd.Context(), loadResult.Specs, opts.Catalog, formatter)
		if err != nil {
			return outputCompileError(formatter, ErrCodeCatalog, fmt.Sprintf("recording catalog: %v", err), nil)
		}
		result.Catalog = n
	}

	return outputCompileSuccess(formatter, result, opts.Output, opts.Catalog)
}

func newCompilationResult(specs *compiler.Specs) *CompilationResult {
	result := &CompilationResult{
		Tables: make([]TableResult, 0, len(specs.TableNames)),
		Models: specs.Models,
	}
	for _, name := range specs.TableNames {
		result.Tables = append(result.Tables, TableResult{Name: name, Table: specs.Tables[name]})
	}
	if result.Models == nil {
		result.Models = []*ir.ModelMapping{}
	}
	return result
}

// recordCatalog warms a mapper per model and stores the compiled
// statements. Returns the number of statements recorded.
func recordCatalog(ctx context.Context, specs *compiler.Specs, path string, formatter *OutputFormatter) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := formatter.Logger()

	var entries []store.Entry
	for _, model := range specs.Models {
		m := mapper.New(model, nil, mapper.WithLogger(logger))
		if err := m.Warm(); err != nil {
			return 0, fmt.Errorf("model %s: %w", model.Name, err)
		}
		entries = append(entries, m.Entries()...)
	}

	st, err := store.Open(path)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	if err := st.PutAll(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile, catalog string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d table(s), %d model(s)\n\n", len(result.Tables), len(result.Models))

	if len(result.Tables) > 0 {
		fmt.Fprintln(w, "Tables:")
		for _, t := range result.Tables {
			fmt.Fprintf(w, "  %s: %s.%s, %d column(s)\n", t.Name, t.Keyspace, t.Name, len(t.Columns))
		}
		fmt.Fprintln(w)
	}

	if len(result.Models) > 0 {
		fmt.Fprintln(w, "Models:")
		for _, m := range result.Models {
			fmt.Fprintf(w, "  %s → %s: %d property(ies)\n", m.Name, m.Table, len(m.Properties))
		}
		fmt.Fprintln(w)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote compiled mappings to %s\n", outputFile)
	}
	if catalog != "" {
		fmt.Fprintf(w, "Recorded %d statement(s) in %s\n", result.Catalog, catalog)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.JSON() {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}

		if err := formatter.Failure(cliErrors[0], cliErrors); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeResultToFile writes the compilation result as indented JSON. The
// file is replaced atomically.
func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(filename, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
