package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands. After flag parsing the
// fields hold the effective configuration (see LoadConfig).
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	SpecsDir   string
	Catalog    string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cqlmap CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cqlmap",
		Short: "cqlmap - statement generation for wide-row stores",
		Long: `Compile model mappings and render the parameterized statements
they generate, together with their retry-safety classification.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", DefaultFormat, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./"+DefaultConfigFile+")")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// load resolves the effective configuration for cmd.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(o.ConfigFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !isValidFormat(cfg.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", cfg.Format, ValidFormats)
	}
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose
	o.SpecsDir = cfg.SpecsDir
	o.Catalog = cfg.Catalog
	return nil
}

// specsDir returns the positional specs directory, falling back to the
// configured one.
func (o *RootOptions) specsDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if o.SpecsDir != "" {
		return o.SpecsDir
	}
	return DefaultSpecsDir
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
