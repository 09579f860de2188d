package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/qpcr"
)

// CalcOptions holds flags for the calc command.
type CalcOptions struct {
	*RootOptions
	RunFlags
}

// CalcResult is the calc command's output.
type CalcResult struct {
	RunID      string              `json:"run_id"`
	Experiment qpcr.ExperimentType `json:"experiment"`
	Wells      int                 `json:"wells"`
	Groups     int                 `json:"groups"`
	Omitted    int                 `json:"omitted"`
	Lookups    int                 `json:"memo_lookups"`
	Builds     int                 `json:"memo_evaluations"`
	Documents  []graph.Document    `json:"documents"`
}

// NewCalcCommand creates the calc command.
func NewCalcCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CalcOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "calc [batch.yaml]",
		Short: "Build calculated documents for a batch of wells",
		Long: `Build the calculated documents of one run.

Wells are read from a YAML batch file, or from a database written by
import when --db and --run are given. Documents are printed dependencies
first; every calculated source appears before the document citing it.

Examples:
  calcdocs calc plate.yaml --config run.cue
  calcdocs calc --db ./calcdocs.db --run plate-0412 --config run.cue --format json
  calcdocs calc plate.yaml --config run.cue --deterministic-ids --metrics-file memo.prom`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(opts, cmd, args)
		},
	}

	opts.RunFlags.register(cmd)

	return cmd
}

func runCalc(opts *CalcOptions, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := opts.Logger()

	in, err := loadInput(ctx, &opts.RunFlags, args)
	if err != nil {
		return failLoad(formatter, err)
	}
	cfg, err := loadConfig(cmd, &opts.RunFlags)
	if err != nil {
		return failLoad(formatter, err)
	}

	sess, err := newSession(&opts.RunFlags, in.RunID, cfg, logger)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "metrics setup failed", err)
	}

	out, err := qpcr.Convert(ctx, sess.run, in.Records, *cfg)
	if err != nil {
		_ = sess.close()
		return failRun(formatter, err)
	}

	stats := sess.run.Stats()
	if err := sess.close(); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "closing run", err)
	}

	result := CalcResult{
		RunID:      in.RunID,
		Experiment: out.Experiment,
		Wells:      out.Wells,
		Groups:     out.Groups,
		Omitted:    out.Omitted,
		Lookups:    stats.Lookups,
		Builds:     stats.Evaluations,
		Documents:  out.Documents,
	}
	if result.Documents == nil {
		result.Documents = []graph.Document{}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "run %s: %s, %d wells, %d groups, %d documents (%d not computable)\n\n",
		result.RunID, result.Experiment, result.Wells, result.Groups, len(result.Documents), result.Omitted)
	return writeDocuments(formatter.Writer, result.Documents)
}
