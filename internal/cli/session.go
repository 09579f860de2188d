package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/memo"
	"github.com/roach88/calcdocs/internal/qpcr"
	"github.com/roach88/calcdocs/internal/store"
)

// RunFlags holds the flags of commands that build documents.
type RunFlags struct {
	Config           string
	Database         string
	RunID            string
	DeterministicIDs bool
	Parallel         int
	MetricsFile      string
}

func (f *RunFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Config, "config", "", "CUE run configuration file or directory (required)")
	_ = cmd.MarkFlagRequired("config")
	cmd.Flags().StringVar(&f.Database, "db", "", "read wells from this SQLite database instead of a batch file")
	cmd.Flags().StringVar(&f.RunID, "run", "", "stored run id (with --db)")
	cmd.Flags().BoolVar(&f.DeterministicIDs, "deterministic-ids", false, "number documents CALCULATED_DATA_1, _2, ... instead of UUIDs")
	cmd.Flags().IntVar(&f.Parallel, "parallel", 1, "groups built at once (overrides the config)")
	cmd.Flags().StringVar(&f.MetricsFile, "metrics-file", "", "write memo metrics in Prometheus text format to this file")
}

// input is one run's raw records, read from a batch file or the store.
type input struct {
	RunID   string
	Source  string
	Records []qpcr.RawRecord
}

func loadInput(ctx context.Context, f *RunFlags, args []string) (*input, error) {
	if len(args) == 1 {
		b, err := LoadBatchFile(args[0])
		if err != nil {
			return nil, err
		}
		return &input{RunID: b.Run, Source: args[0], Records: b.Wells}, nil
	}

	if f.Database == "" || f.RunID == "" {
		return nil, &LoadError{Code: ErrCodeMissingInput, Message: "give a batch file or --db with --run"}
	}

	st, err := store.Open(f.Database)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	defer st.Close()

	b, err := st.ReadBatch(ctx, f.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("run %q not found in %s", f.RunID, f.Database)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	return &input{RunID: b.RunID, Source: b.Source, Records: b.Records}, nil
}

// loadConfig compiles --config and applies --parallel when it was set.
func loadConfig(cmd *cobra.Command, f *RunFlags) (*qpcr.Config, error) {
	cfg, err := LoadRunConfig(f.Config)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("parallel") {
		if f.Parallel < 1 {
			return nil, &LoadError{Code: ErrCodeParallelism, Message: fmt.Sprintf("--parallel must be >= 1, got %d", f.Parallel)}
		}
		cfg.Parallelism = f.Parallel
	}
	return cfg, nil
}

// session is one engine run plus its optional metrics registry.
type session struct {
	run         *engine.Run
	registry    *prometheus.Registry
	metricsFile string
}

func newSession(f *RunFlags, runID string, cfg *qpcr.Config, logger *slog.Logger) (*session, error) {
	s := &session{metricsFile: f.MetricsFile}
	opts := []engine.Option{engine.WithRunID(runID), engine.WithLogger(logger)}

	if f.DeterministicIDs {
		opts = append(opts, engine.WithIDGenerator(graph.NewSequentialGenerator("")))
		if cfg.Parallelism > 1 {
			logger.Warn("document ids depend on scheduling when parallelism > 1", "parallelism", cfg.Parallelism)
		}
	}

	if f.MetricsFile != "" {
		s.registry = prometheus.NewRegistry()
		m, err := memo.NewMetrics(s.registry)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithMetrics(m))
	}

	s.run = engine.NewRun(opts...)
	return s, nil
}

// close ends the run and writes metrics.
func (s *session) close() error {
	if err := s.run.Close(); err != nil {
		return err
	}
	if s.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(s.metricsFile, s.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// failLoad reports a LoadError (or any error) as a command error.
func failLoad(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = f.Error(loadErr.Code, loadErr.Error(), nil)
		return WrapExitError(ExitCommandError, loadErr.Code, err)
	}
	return f.fail(ExitCommandError, ErrCodeGeneric, "load failed", err)
}

// failRun reports a conversion error with the code of its kind.
func failRun(f *OutputFormatter, err error) error {
	switch {
	case engine.IsMalformedInput(err):
		return f.fail(ExitFailure, ErrCodeMalformedInput, "malformed input", err)
	case engine.IsUnknownExperiment(err):
		return f.fail(ExitCommandError, ErrCodeExperiment, "unknown experiment", err)
	case engine.IsMissingReference(err):
		return f.fail(ExitCommandError, ErrCodeReference, "missing reference", err)
	case engine.IsGraphError(err):
		return f.fail(ExitFailure, ErrCodeGraph, "graph error", err)
	default:
		return f.fail(ExitFailure, ErrCodeGeneric, "conversion failed", err)
	}
}
