package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/cqlmap/internal/harness"
	"github.com/roach88/cqlmap/internal/ir"
	"github.com/roach88/cqlmap/internal/mapper"
	"github.com/roach88/cqlmap/internal/queryir"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Model          string
	Op             string
	DocFile        string // YAML document, "-" for stdin
	WhenFile       string // YAML conditions for update and remove
	Columns        []string
	OrderBy        []string // column[:asc|desc]
	Limit          int
	TTL            int
	IfNotExists    bool
	IfExists       bool
	AllowFiltering bool
	OnlyColumns    bool
	Convert        map[string]string // property -> builtin converter
}

// RenderResult is one rendered statement.
type RenderResult struct {
	Model      string    `json:"model"`
	Op         string    `json:"op"`
	Query      string    `json:"query"`
	Params     []any     `json:"params"`
	Idempotent bool      `json:"idempotent"`
	IsCounter  bool      `json:"is_counter"`
	ShapeID    uuid.UUID `json:"shape_id"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render [specs-dir]",
		Short: "Render the statement for one operation",
		Long: `Render the parameterized statement a model operation generates.

The document is read from a YAML file of property values. Values may use
the operator forms $eq, $ne, $gt, $gte, $lt, $lte, $in, $between and $and
for reads and conditions, and $incr, $decr, $append and $prepend for
assignments.

Examples:
  cqlmap render --model User --op find --doc where.yaml
  cqlmap render --model User --op insert --doc user.yaml --if-not-exists --ttl 3600
  cqlmap render --model User --op update --doc user.yaml --when when.yaml
  cqlmap render --model PageView --op update --doc hit.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "model name (required)")
	cmd.Flags().StringVar(&opts.Op, "op", mapper.OpFind, "operation (find|insert|update|remove)")
	cmd.Flags().StringVarP(&opts.DocFile, "doc", "d", "", "YAML document file, - for stdin")
	cmd.Flags().StringVar(&opts.WhenFile, "when", "", "YAML conditions file (update, remove)")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "columns to select (find)")
	cmd.Flags().StringSliceVar(&opts.OrderBy, "order-by", nil, "ordering as column[:asc|desc] (find)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "row limit (find)")
	cmd.Flags().IntVar(&opts.TTL, "ttl", 0, "time to live in seconds (insert, update)")
	cmd.Flags().BoolVar(&opts.IfNotExists, "if-not-exists", false, "insert only if absent")
	cmd.Flags().BoolVar(&opts.IfExists, "if-exists", false, "update or remove only if present")
	cmd.Flags().BoolVar(&opts.AllowFiltering, "allow-filtering", false, "accepted for symmetry; always rendered")
	cmd.Flags().BoolVar(&opts.OnlyColumns, "only-columns", false, "delete the bound columns instead of the row")
	cmd.Flags().StringToStringVar(&opts.Convert, "convert", nil, "property=converter (upper|lower|string)")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runRender(opts *RenderOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadSpecs(specsDir)
	if len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return outputCompileError(formatter, code, message, nil)
	}

	mapping, ok := loadResult.Specs.Model(opts.Model)
	if !ok {
		return outputCompileError(formatter, ErrCodeUnknownModel, fmt.Sprintf("model not defined: %s", opts.Model), nil)
	}

	conv := make(ir.Converters, len(opts.Convert))
	for property, name := range opts.Convert {
		fn, ok := harness.BuiltinConverters[name]
		if !ok {
			return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("unknown converter %q for property %q", name, property), nil)
		}
		conv[property] = fn
	}

	doc, err := readFields(opts.DocFile, cmd.InOrStdin())
	if err != nil {
		return outputCompileError(formatter, ErrCodeDocument, fmt.Sprintf("reading document: %v", err), nil)
	}
	callOpts, err := opts.mapperOptions(cmd)
	if err != nil {
		return outputCompileError(formatter, ErrCodeDocument, err.Error(), nil)
	}

	m := mapper.New(mapping, conv, mapper.WithLogger(formatter.Logger()))
	exec, err := m.Execute(opts.Op, doc, callOpts)
	if err != nil {
		return WrapExitError(ExitFailure, "render failed", renderFailure(formatter, err))
	}

	result := RenderResult{
		Model:      opts.Model,
		Op:         opts.Op,
		Query:      exec.Query,
		Params:     exec.Params,
		Idempotent: exec.Idempotent,
		IsCounter:  exec.IsCounter,
		ShapeID:    exec.ShapeID,
	}
	if result.Params == nil {
		result.Params = []any{}
	}
	return outputRenderSuccess(formatter, result)
}

// renderFailure reports a generation or extraction error and returns it.
func renderFailure(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(ErrCodeRender, err.Error(), nil)
	return err
}

// mapperOptions converts flags to mapper options. Pointer options are set
// only for flags given on the command line.
func (o *RenderOptions) mapperOptions(cmd *cobra.Command) (mapper.Options, error) {
	opts := mapper.Options{
		Columns:        o.Columns,
		AllowFiltering: o.AllowFiltering,
		IfNotExists:    o.IfNotExists,
		IfExists:       o.IfExists,
		OnlyColumns:    o.OnlyColumns,
	}
	if cmd.Flags().Changed("limit") {
		limit := o.Limit
		opts.Limit = &limit
	}
	if cmd.Flags().Changed("ttl") {
		ttl := o.TTL
		opts.TTL = &ttl
	}
	for _, spec := range o.OrderBy {
		order, err := parseOrder(spec)
		if err != nil {
			return mapper.Options{}, err
		}
		opts.OrderBy = append(opts.OrderBy, order)
	}
	if o.WhenFile != "" {
		when, err := readFields(o.WhenFile, cmd.InOrStdin())
		if err != nil {
			return mapper.Options{}, fmt.Errorf("reading conditions: %w", err)
		}
		opts.When = when
	}
	return opts, nil
}

// parseOrder parses "column" or "column:direction".
func parseOrder(spec string) (queryir.Order, error) {
	column, dir, found := strings.Cut(spec, ":")
	if column == "" {
		return queryir.Order{}, fmt.Errorf("invalid order %q: column is required", spec)
	}
	if !found {
		return queryir.Order{Column: column, Direction: "ASC"}, nil
	}
	switch strings.ToUpper(dir) {
	case "ASC", "DESC":
		return queryir.Order{Column: column, Direction: strings.ToUpper(dir)}, nil
	default:
		return queryir.Order{}, fmt.Errorf("invalid order %q: direction must be asc or desc", spec)
	}
}

// readFields decodes a YAML mapping of property values. An empty path
// yields an empty document.
func readFields(path string, stdin io.Reader) (ir.Fields, error) {
	if path == "" {
		return ir.Fields{}, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ir.DecodeFields(raw)
}

// outputRenderSuccess outputs a rendered statement.
func outputRenderSuccess(formatter *OutputFormatter, result RenderResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, result.Query)
	fmt.Fprintln(w)
	for i, p := range result.Params {
		fmt.Fprintf(w, "  $%d = %v\n", i+1, p)
	}
	if len(result.Params) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "idempotent: %t\n", result.Idempotent)
	fmt.Fprintf(w, "counter:    %t\n", result.IsCounter)
	fmt.Fprintf(w, "shape:      %s\n", result.ShapeID)
	return nil
}
