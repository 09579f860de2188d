package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/calcdocs/internal/compiler"
	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/qpcr"
	"github.com/roach88/calcdocs/internal/store"
)

// Harness is the test execution engine.
// It runs scenarios with sequential node IDs and a fresh store per scenario.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Compile the scenario's CUE run configuration
//  2. Round-trip the wells through a fresh in-memory store
//  3. Convert within a run that assigns sequential node IDs
//  4. Evaluate assertions against the document list
//
// Run returns an error when the scenario cannot be executed (bad config,
// store failure) or when conversion fails unexpectedly. A conversion error
// that matches ExpectError is a pass.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := compileConfig(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	return h.run(context.Background(), scenario, cfg)
}

func compileConfig(scenario *Scenario) (*qpcr.Config, error) {
	v := cuecontext.New().CompileString(scenario.Config, cue.Filename(scenario.Name+".cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("scenario %s: config: %w", scenario.Name, err)
	}
	cfg, err := compiler.CompileRun(v.LookupPath(cue.ParsePath("run")))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: config: %w", scenario.Name, err)
	}
	return cfg, nil
}

func (h *Harness) run(ctx context.Context, scenario *Scenario, cfg *qpcr.Config) (*Result, error) {
	recs, err := h.roundTrip(ctx, scenario)
	if err != nil {
		return nil, err
	}

	run := engine.NewRun(
		engine.WithRunID(scenario.Name),
		engine.WithIDGenerator(graph.NewSequentialGenerator("")),
		engine.WithLogger(h.logger),
	)
	defer run.Close()

	result := NewResult()
	result.Experiment = cfg.Experiment

	out, convErr := qpcr.Convert(ctx, run, recs, *cfg)
	for _, b := range run.Builders() {
		result.Memo[b] = run.BuilderStats(b)
	}

	if convErr != nil {
		code := errorCode(convErr)
		if scenario.ExpectError == "" || code == "" {
			return nil, fmt.Errorf("scenario %s: convert: %w", scenario.Name, convErr)
		}
		result.ErrorCode = code
		if code != scenario.ExpectError {
			result.AddError(fmt.Sprintf("expected error %s, got %s: %v", scenario.ExpectError, code, convErr))
		}
		return result, nil
	}

	if scenario.ExpectError != "" {
		result.AddError(fmt.Sprintf("expected error %s, conversion succeeded with %d documents",
			scenario.ExpectError, len(out.Documents)))
		return result, nil
	}

	result.Documents = out.Documents
	result.Omitted = out.Omitted

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// roundTrip stores the scenario wells and reads them back, so scenarios
// convert exactly what the store would hand to the CLI.
func (h *Harness) roundTrip(ctx context.Context, scenario *Scenario) ([]qpcr.RawRecord, error) {
	_, err := h.store.WriteBatch(ctx, store.Batch{
		RunID:   scenario.Name,
		Source:  "scenario",
		Records: scenario.Wells,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: store wells: %w", scenario.Name, err)
	}
	batch, err := h.store.ReadBatch(ctx, scenario.Name)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: read wells: %w", scenario.Name, err)
	}
	return batch.Records, nil
}

// errorCode returns the engine error code carried by err, or "".
func errorCode(err error) string {
	var ie *engine.InputError
	if errors.As(err, &ie) {
		return string(ie.Code)
	}
	if engine.IsGraphError(err) {
		return string(engine.ErrCodeGraph)
	}
	return ""
}
