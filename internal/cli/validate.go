package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/calcdocs/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Wells  int                        `json:"wells"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <batch.yaml>",
		Short: "Check a batch for malformed input without building documents",
		Long: `Validate a YAML batch of raw wells.

Reports every malformed value, missing identifier, duplicate id and
unknown field at once. With --config the run configuration is compiled
too, and a reference sample without wells is reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "CUE run configuration to check as well")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	b, err := LoadBatchFile(path)
	if err != nil {
		return failLoad(formatter, err)
	}

	errs := compiler.ValidateRecords(b.Wells)

	if opts.Config != "" {
		cfg, err := LoadRunConfig(opts.Config)
		if err != nil {
			return failLoad(formatter, err)
		}
		errs = append(errs, compiler.ValidateReference(b.Wells, cfg)...)
	}

	opts.Logger().Debug("batch validated", "path", path, "wells", len(b.Wells), "errors", len(errs))

	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Wells: len(b.Wells)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d wells valid\n", len(b.Wells))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
