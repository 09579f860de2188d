package qpcr

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/ir"
)

// ErrUnknownDocument is returned by Root for names the experiment does not
// build.
var ErrUnknownDocument = errors.New("unknown document name")

// Output is the result of one conversion.
type Output struct {
	Experiment ExperimentType
	Wells      int
	Groups     int

	// Nodes is the flattened document list, dependencies first.
	Nodes []*ir.Node

	// Documents maps Nodes to their output form.
	Documents []graph.Document

	// Omitted counts root documents that were not computable.
	Omitted int
}

// Convert parses recs and builds the calculated documents of cfg's
// experiment within run.
func Convert(ctx context.Context, run *engine.Run, recs []RawRecord, cfg Config) (*Output, error) {
	wells, err := ParseWells(recs)
	if err != nil {
		return nil, fmt.Errorf("parse wells: %w", err)
	}
	return ConvertWells(ctx, run, wells, cfg)
}

// ConvertWells builds the calculated documents of already parsed wells.
//
// Groups may be built in parallel (cfg.Parallelism), but documents are
// emitted in view order so the document list does not depend on scheduling.
// Node IDs from a SequentialGenerator are only reproducible when
// Parallelism <= 1.
func ConvertWells(ctx context.Context, run *engine.Run, wells []*WellItem, cfg Config) (*Output, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	it, ok := iterators[cfg.Experiment]
	if !ok {
		return nil, engine.NewUnknownExperiment(string(cfg.Experiment))
	}

	view := NewView(wells)
	calc, err := NewCalculator(run, view, cfg)
	if err != nil {
		return nil, err
	}
	logger := run.Logger()

	if cfg.Experiment.needsReferenceSample() && !view.HasSample(cfg.ReferenceSample) {
		logger.Warn("reference sample has no wells", "reference_sample", cfg.ReferenceSample)
	}

	keys := view.Keys()
	groupRoots := make([][]ir.Result, len(keys))
	err = engine.ForEach(ctx, len(keys), cfg.Parallelism, func(_ context.Context, i int) error {
		rs, err := it.group(calc, keys[i])
		if err != nil {
			return fmt.Errorf("build %s/%s: %w", keys[i].Sample, keys[i].Target, err)
		}
		groupRoots[i] = rs
		return nil
	})
	if err != nil {
		return nil, err
	}

	var targetRoots [][]ir.Result
	if it.target != nil {
		targets := view.Targets()
		targetRoots = make([][]ir.Result, len(targets))
		err = engine.ForEach(ctx, len(targets), cfg.Parallelism, func(_ context.Context, i int) error {
			rs, err := it.target(calc, targets[i])
			if err != nil {
				return fmt.Errorf("build target %s: %w", targets[i], err)
			}
			targetRoots[i] = rs
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	emitter := run.NewEmitter()
	omitted := 0
	for _, batch := range [][][]ir.Result{groupRoots, targetRoots} {
		for _, rs := range batch {
			for _, r := range rs {
				emitted, err := emitter.EmitResult(r)
				if err != nil {
					return nil, &engine.GraphError{Builder: "emit", Err: err}
				}
				if !emitted {
					omitted++
				}
			}
		}
	}

	nodes := emitter.Nodes()
	stats := run.Stats()
	logger.Info("calculated documents built",
		"experiment", string(cfg.Experiment),
		"wells", len(wells),
		"groups", len(keys),
		"documents", len(nodes),
		"omitted_roots", omitted,
		"evaluations", stats.Evaluations,
		"not_computable", stats.NotComputable)

	return &Output{
		Experiment: cfg.Experiment,
		Wells:      len(wells),
		Groups:     len(keys),
		Nodes:      nodes,
		Documents:  graph.ToDocuments(nodes),
		Omitted:    omitted,
	}, nil
}

// rootBuilders maps document names to their group builders for Root.
func (c *Calculator) rootBuilders() map[string]func(sample, target string) (ir.Result, error) {
	rSample, rTarget := c.cfg.ReferenceSample, c.cfg.ReferenceTarget
	m := map[string]func(sample, target string) (ir.Result, error){
		NameCtMean:       c.ctMean,
		NameCtSD:         c.ctSD,
		NameCtSE:         c.ctSE,
		NameEqCtMean:     c.eqCtMean,
		NameAdjEqCtMean:  c.adjEqCtMean,
		NameQuantityMean: c.quantityMean,
		NameQuantitySD:   c.quantitySD,
		NameRnMean:       c.rnMean,
		NameRnSD:         c.rnSD,
		NameDeltaCtMean: func(s, t string) (ir.Result, error) {
			return c.deltaCtMean(s, t, rTarget)
		},
		NameDeltaCtSD: func(s, t string) (ir.Result, error) {
			return c.deltaCtSD(s, t, rTarget)
		},
		NameDeltaCtSE: func(s, t string) (ir.Result, error) {
			return c.deltaCtSE(s, t, rTarget)
		},
		NameDeltaDeltaCt: func(s, t string) (ir.Result, error) {
			return c.deltaDeltaCt(s, t, rSample, rTarget)
		},
		NameRQ: func(s, t string) (ir.Result, error) {
			return c.rq(s, t, rSample, rTarget)
		},
		NameRQMin: func(s, t string) (ir.Result, error) {
			return c.rqMin(s, t, rSample, rTarget)
		},
		NameRQMax: func(s, t string) (ir.Result, error) {
			return c.rqMax(s, t, rSample, rTarget)
		},
		NameYIntercept: func(_, t string) (ir.Result, error) { return c.yIntercept(t) },
		NameRSquared:   func(_, t string) (ir.Result, error) { return c.rSquared(t) },
		NameSlope:      func(_, t string) (ir.Result, error) { return c.slope(t) },
		NameEfficiency: func(_, t string) (ir.Result, error) { return c.efficiency(t) },
	}
	if c.cfg.Experiment == RelativeStandardCurve {
		m[NameRQ] = c.relativeRQ
		m[NameRQMin] = c.relativeRQMin
		m[NameRQMax] = c.relativeRQMax
	}
	return m
}

// RootNames lists the document names Root accepts, sorted.
func (c *Calculator) RootNames() []string {
	m := c.rootBuilders()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Root builds one named document for a group. Standard curve documents
// (y intercept, r^2, slope, efficiency) ignore sample.
func (c *Calculator) Root(name, sample, target string) (ir.Result, error) {
	build, ok := c.rootBuilders()[name]
	if !ok {
		return ir.Result{}, fmt.Errorf("%w %q", ErrUnknownDocument, name)
	}
	return build(ir.NormalizeName(sample), ir.NormalizeName(target))
}
