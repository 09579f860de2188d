package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/calcdocs/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// NewRunsCommand creates the runs command and its rm subcommand.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Long: `List the runs stored in a database by import.

Examples:
  calcdocs runs --db ./calcdocs.db
  calcdocs runs rm plate-0412 --db ./calcdocs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "rm <run-id>",
		Short:         "Delete a stored run and its wells",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsRemove(opts, cmd, args[0])
		},
	})

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to list runs", err)
	}

	if opts.Format == "json" {
		if runs == nil {
			runs = []store.RunInfo{}
		}
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "no runs stored")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tWELLS\tENGINE\tSOURCE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.ID, r.Records, r.EngineVersion, r.Source)
	}
	return tw.Flush()
}

func runRunsRemove(opts *RunsOptions, cmd *cobra.Command, runID string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	defer st.Close()

	err = st.DeleteRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run %q not found", runID), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, "failed to delete run", err)
	}

	opts.Logger().Info("run deleted", "run", runID)
	if opts.Format == "json" {
		return formatter.Success(map[string]string{"deleted": runID})
	}
	fmt.Fprintf(formatter.Writer, "✓ run %s deleted\n", runID)
	return nil
}
