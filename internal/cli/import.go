package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/calcdocs/internal/compiler"
	"github.com/roach88/calcdocs/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// ImportResult is the import command's output.
type ImportResult struct {
	RunID    string `json:"run_id"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <batch.yaml>",
		Short: "Store a batch of raw wells",
		Long: `Validate a YAML batch and store its raw wells in a SQLite database.

Importing the same batch twice is a no-op. A record id stored with
different fields is rejected. Only raw records are stored; documents are
rebuilt by calc --db.

Examples:
  calcdocs import plate.yaml --db ./calcdocs.db
  calcdocs import plate.yaml --db ./calcdocs.db --run plate-0412-rerun`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: the batch's run field)")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	b, err := LoadBatchFile(path)
	if err != nil {
		return failLoad(formatter, err)
	}
	if opts.RunID != "" {
		b.Run = opts.RunID
	}

	if errs := compiler.ValidateRecords(b.Wells); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	defer st.Close()

	res, err := st.WriteBatch(ctx, store.Batch{RunID: b.Run, Source: path, Records: b.Wells})
	if errors.Is(err, store.ErrRecordConflict) {
		return formatter.fail(ExitFailure, ErrCodeStoreFailed, "record conflict", err)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to write batch", err)
	}

	opts.Logger().Info("batch imported", "run", b.Run, "inserted", res.Inserted, "skipped", res.Skipped)

	result := ImportResult{RunID: b.Run, Inserted: res.Inserted, Skipped: res.Skipped}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ run %s: %d wells stored, %d already present\n", result.RunID, result.Inserted, result.Skipped)
	return nil
}
