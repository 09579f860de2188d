package qpcr

import (
	"fmt"

	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/ir"
	"github.com/roach88/calcdocs/internal/memo"
)

// Calculator binds the builder set to one run and one view.
//
// Every builder returns ir.NotComputable when a value it needs was not
// reported, and an error only for arena or memo failures.
type Calculator struct {
	run  *engine.Run
	view *View
	cfg  Config
}

// NewCalculator creates a calculator. cfg supplies the reference sample and
// reference target of comparative builders; it is validated here so an
// invalid configuration never reaches a builder.
func NewCalculator(run *engine.Run, view *View, cfg Config) (*Calculator, error) {
	resolved, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	return &Calculator{run: run, view: view, cfg: resolved}, nil
}

func notReported(name string) ir.Result {
	return ir.NotComputable(name + " not reported")
}

func noWells(sample, target string) ir.Result {
	return ir.NotComputable(fmt.Sprintf("no wells for sample %q target %q", sample, target))
}

func rawSources(feature string, wells []*WellItem) []ir.DataSource {
	sources := make([]ir.DataSource, len(wells))
	for i, w := range wells {
		sources[i] = ir.RawSource(feature, w)
	}
	return sources
}

func groupArgs(sample, target string) memo.Args {
	return memo.Of(memo.String(sample), memo.String(target))
}

// wellScore builds a per-well document that references the well's ct.
func (c *Calculator) wellScore(name string, w *WellItem, v *float64) (ir.Result, error) {
	return c.run.Build(name, memo.Of(memo.Raw(w)), func() (ir.Result, error) {
		if v == nil {
			return notReported(name), nil
		}
		if w.Result.Ct == nil {
			return notReported(FeatureCt), nil
		}
		return c.run.NewNode(name, *v, ir.RawSource(FeatureCt, w))
	})
}

func (c *Calculator) ampScore(w *WellItem) (ir.Result, error) {
	return c.wellScore(NameAmpScore, w, w.Result.AmpScore)
}

func (c *Calculator) cqConf(w *WellItem) (ir.Result, error) {
	return c.wellScore(NameCqConf, w, w.Result.CqConf)
}

// groupStat builds a reported group value that references one raw feature
// of every replicate well.
func (c *Calculator) groupStat(name, feature, sample, target string, pick func(*Result) *float64) (ir.Result, error) {
	return c.run.Build(name, groupArgs(sample, target), func() (ir.Result, error) {
		wells := c.view.Wells(sample, target)
		if len(wells) == 0 {
			return noWells(sample, target), nil
		}
		v := pick(&wells[0].Result)
		if v == nil {
			return notReported(name), nil
		}
		return c.run.NewNode(name, *v, rawSources(feature, wells)...)
	})
}

// targetStat builds a reported standard curve value that references the ct
// of every well of the target.
func (c *Calculator) targetStat(name, target string, pick func(*Result) *float64) (ir.Result, error) {
	return c.run.Build(name, memo.Of(memo.String(target)), func() (ir.Result, error) {
		wells := c.view.TargetWells(target)
		if len(wells) == 0 {
			return ir.NotComputable(fmt.Sprintf("no wells for target %q", target)), nil
		}
		v := pick(&wells[0].Result)
		if v == nil {
			return notReported(name), nil
		}
		return c.run.NewNode(name, *v, rawSources(FeatureCt, wells)...)
	})
}

// chained builds a reported group value with exactly one required upstream.
func (c *Calculator) chained(builder, name string, args memo.Args, sample, target string,
	pick func(*Result) *float64, upstreamName string, upstream func() (ir.Result, error)) (ir.Result, error) {
	return c.run.Build(builder, args, func() (ir.Result, error) {
		wells := c.view.Wells(sample, target)
		if len(wells) == 0 {
			return noWells(sample, target), nil
		}
		v := pick(&wells[0].Result)
		if v == nil {
			return notReported(name), nil
		}
		up, err := upstream()
		if err != nil {
			return ir.Result{}, err
		}
		n, ok := up.Node()
		if !ok {
			return up.Propagate(upstreamName), nil
		}
		return c.run.NewNode(name, *v, ir.CalculatedSource(upstreamName, n))
	})
}

func (c *Calculator) ctMean(sample, target string) (ir.Result, error) {
	return c.groupStat(NameCtMean, FeatureCt, sample, target, func(r *Result) *float64 { return r.CtMean })
}

func (c *Calculator) ctSD(sample, target string) (ir.Result, error) {
	return c.groupStat(NameCtSD, FeatureCt, sample, target, func(r *Result) *float64 { return r.CtSD })
}

func (c *Calculator) ctSE(sample, target string) (ir.Result, error) {
	return c.groupStat(NameCtSE, FeatureCt, sample, target, func(r *Result) *float64 { return r.CtSE })
}

func (c *Calculator) rnMean(sample, target string) (ir.Result, error) {
	return c.groupStat(NameRnMean, FeatureRn, sample, target, func(r *Result) *float64 { return r.RnMean })
}

func (c *Calculator) rnSD(sample, target string) (ir.Result, error) {
	return c.groupStat(NameRnSD, FeatureRn, sample, target, func(r *Result) *float64 { return r.RnSD })
}

func (c *Calculator) yIntercept(target string) (ir.Result, error) {
	return c.targetStat(NameYIntercept, target, func(r *Result) *float64 { return r.YIntercept })
}

func (c *Calculator) rSquared(target string) (ir.Result, error) {
	return c.targetStat(NameRSquared, target, func(r *Result) *float64 { return r.RSquared })
}

func (c *Calculator) slope(target string) (ir.Result, error) {
	return c.targetStat(NameSlope, target, func(r *Result) *float64 { return r.Slope })
}

func (c *Calculator) efficiency(target string) (ir.Result, error) {
	return c.targetStat(NameEfficiency, target, func(r *Result) *float64 { return r.Efficiency })
}

// quantity references the well's ct and, when available, the target's
// standard curve. An unreported quantity is derived from the curve.
func (c *Calculator) quantity(target string, w *WellItem) (ir.Result, error) {
	return c.run.Build(NameQuantity, memo.Of(memo.String(target), memo.Raw(w)), func() (ir.Result, error) {
		if w.Result.Ct == nil {
			return notReported(FeatureCt), nil
		}
		sources := []ir.DataSource{ir.RawSource(FeatureCt, w)}

		interceptRes, err := c.yIntercept(target)
		if err != nil {
			return ir.Result{}, err
		}
		slopeRes, err := c.slope(target)
		if err != nil {
			return ir.Result{}, err
		}
		intercept, hasIntercept := interceptRes.Node()
		if hasIntercept {
			sources = append(sources, ir.CalculatedSource(FeatureYIntercept, intercept))
		}
		slope, hasSlope := slopeRes.Node()
		if hasSlope {
			sources = append(sources, ir.CalculatedSource(FeatureSlope, slope))
		}

		var value float64
		switch {
		case w.Result.Quantity != nil:
			value = *w.Result.Quantity
		case hasIntercept && hasSlope && slope.Value != 0:
			value = quantityFromCurve(*w.Result.Ct, intercept.Value, slope.Value)
		default:
			return notReported(NameQuantity), nil
		}
		return c.run.NewNode(NameQuantity, value, sources...)
	})
}

// replicateQuantities returns the quantity node of every replicate of a
// group, or the first not-computable outcome.
func (c *Calculator) replicateQuantities(sample, target string) ([]*ir.Node, ir.Result, error) {
	wells := c.view.Wells(sample, target)
	if len(wells) == 0 {
		return nil, noWells(sample, target), nil
	}
	nodes := make([]*ir.Node, 0, len(wells))
	for _, w := range wells {
		res, err := c.quantity(target, w)
		if err != nil {
			return nil, ir.Result{}, err
		}
		n, ok := res.Node()
		if !ok {
			return nil, res.Propagate(NameQuantity), nil
		}
		nodes = append(nodes, n)
	}
	return nodes, ir.Result{}, nil
}

func quantitySources(nodes []*ir.Node) ([]ir.DataSource, []float64) {
	sources := make([]ir.DataSource, len(nodes))
	values := make([]float64, len(nodes))
	for i, n := range nodes {
		sources[i] = ir.CalculatedSource(NameQuantity, n)
		values[i] = n.Value
	}
	return sources, values
}

func (c *Calculator) quantityMean(sample, target string) (ir.Result, error) {
	return c.run.Build(NameQuantityMean, groupArgs(sample, target), func() (ir.Result, error) {
		nodes, nc, err := c.replicateQuantities(sample, target)
		if err != nil || nodes == nil {
			return nc, err
		}
		sources, values := quantitySources(nodes)
		value := mean(values)
		if v := c.view.Wells(sample, target)[0].Result.QuantityMean; v != nil {
			value = *v
		}
		return c.run.NewNode(NameQuantityMean, value, sources...)
	})
}

func (c *Calculator) quantitySD(sample, target string) (ir.Result, error) {
	return c.run.Build(NameQuantitySD, groupArgs(sample, target), func() (ir.Result, error) {
		nodes, nc, err := c.replicateQuantities(sample, target)
		if err != nil || nodes == nil {
			return nc, err
		}
		sources, values := quantitySources(nodes)
		var value float64
		switch v := c.view.Wells(sample, target)[0].Result.QuantitySD; {
		case v != nil:
			value = *v
		case len(values) >= 2:
			value = sampleSD(values)
		default:
			return ir.NotComputable("quantity sd needs at least 2 replicates"), nil
		}
		return c.run.NewNode(NameQuantitySD, value, sources...)
	})
}

func (c *Calculator) eqCtMean(sample, target string) (ir.Result, error) {
	return c.chained(NameEqCtMean, NameEqCtMean, groupArgs(sample, target), sample, target,
		func(r *Result) *float64 { return r.EqCtMean },
		NameCtMean, func() (ir.Result, error) { return c.ctMean(sample, target) })
}

func (c *Calculator) adjEqCtMean(sample, target string) (ir.Result, error) {
	return c.chained(NameAdjEqCtMean, NameAdjEqCtMean, groupArgs(sample, target), sample, target,
		func(r *Result) *float64 { return r.AdjEqCtMean },
		NameEqCtMean, func() (ir.Result, error) { return c.eqCtMean(sample, target) })
}

// equivalentCtSource picks the adjusted equivalent ct mean when computable,
// else the unadjusted one. Exactly one of them is referenced.
func (c *Calculator) equivalentCtSource(sample, target string) (ir.DataSource, ir.Result, error) {
	adj, err := c.adjEqCtMean(sample, target)
	if err != nil {
		return ir.DataSource{}, ir.Result{}, err
	}
	if n, ok := adj.Node(); ok {
		return ir.CalculatedSource(NameAdjEqCtMean, n), adj, nil
	}
	eq, err := c.eqCtMean(sample, target)
	if err != nil {
		return ir.DataSource{}, ir.Result{}, err
	}
	if n, ok := eq.Node(); ok {
		return ir.CalculatedSource(NameEqCtMean, n), eq, nil
	}
	return ir.DataSource{}, eq.Propagate(NameEqCtMean), nil
}

func (c *Calculator) deltaCtMean(sample, target string, rTarget *string) (ir.Result, error) {
	args := memo.Of(memo.String(sample), memo.String(target), memo.Optional(rTarget))
	return c.run.Build(NameDeltaCtMean, args, func() (ir.Result, error) {
		wells := c.view.Wells(sample, target)
		if len(wells) == 0 {
			return noWells(sample, target), nil
		}
		v := wells[0].Result.DeltaCtMean
		if v == nil {
			return notReported(NameDeltaCtMean), nil
		}

		src, res, err := c.equivalentCtSource(sample, target)
		if err != nil || !res.OK() {
			return res, err
		}
		sources := []ir.DataSource{src}

		if rTarget != nil {
			rsrc, rres, err := c.equivalentCtSource(sample, *rTarget)
			if err != nil || !rres.OK() {
				return rres, err
			}
			sources = append(sources, rsrc)
		}
		return c.run.NewNode(NameDeltaCtMean, *v, sources...)
	})
}

// deltaSpread builds delta equivalent ct sd/se from the matching ct spread of
// the target and the reference target.
func (c *Calculator) deltaSpread(name, upstreamName, sample, target string, rTarget *string,
	pick func(*Result) *float64, upstream func(sample, target string) (ir.Result, error)) (ir.Result, error) {
	args := memo.Of(memo.String(sample), memo.String(target), memo.Optional(rTarget))
	return c.run.Build(name, args, func() (ir.Result, error) {
		wells := c.view.Wells(sample, target)
		if len(wells) == 0 {
			return noWells(sample, target), nil
		}
		v := pick(&wells[0].Result)
		if v == nil {
			return notReported(name), nil
		}

		targets := []string{target}
		if rTarget != nil {
			targets = append(targets, *rTarget)
		}
		sources := make([]ir.DataSource, 0, len(targets))
		for _, t := range targets {
			up, err := upstream(sample, t)
			if err != nil {
				return ir.Result{}, err
			}
			n, ok := up.Node()
			if !ok {
				return up.Propagate(upstreamName), nil
			}
			sources = append(sources, ir.CalculatedSource(upstreamName, n))
		}
		return c.run.NewNode(name, *v, sources...)
	})
}

func (c *Calculator) deltaCtSD(sample, target string, rTarget *string) (ir.Result, error) {
	return c.deltaSpread(NameDeltaCtSD, NameCtSD, sample, target, rTarget,
		func(r *Result) *float64 { return r.DeltaCtSD }, c.ctSD)
}

func (c *Calculator) deltaCtSE(sample, target string, rTarget *string) (ir.Result, error) {
	return c.deltaSpread(NameDeltaCtSE, NameCtSE, sample, target, rTarget,
		func(r *Result) *float64 { return r.DeltaCtSE }, c.ctSE)
}

func comparativeArgs(sample, target, rSample string, rTarget *string) memo.Args {
	return memo.Of(memo.String(sample), memo.String(target), memo.String(rSample), memo.Optional(rTarget))
}

// deltaDeltaCt references the delta ct mean of the sample and of the
// reference sample, both for the same target.
func (c *Calculator) deltaDeltaCt(sample, target, rSample string, rTarget *string) (ir.Result, error) {
	return c.run.Build(NameDeltaDeltaCt, comparativeArgs(sample, target, rSample, rTarget), func() (ir.Result, error) {
		wells := c.view.Wells(sample, target)
		if len(wells) == 0 {
			return noWells(sample, target), nil
		}
		v := wells[0].Result.DeltaDeltaCt
		if v == nil {
			return notReported(NameDeltaDeltaCt), nil
		}

		sources := make([]ir.DataSource, 0, 2)
		for _, s := range []string{sample, rSample} {
			up, err := c.deltaCtMean(s, target, rTarget)
			if err != nil {
				return ir.Result{}, err
			}
			n, ok := up.Node()
			if !ok {
				return up.Propagate(NameDeltaCtMean), nil
			}
			sources = append(sources, ir.CalculatedSource(NameDeltaCtMean, n))
		}
		return c.run.NewNode(NameDeltaDeltaCt, *v, sources...)
	})
}

func (c *Calculator) rq(sample, target, rSample string, rTarget *string) (ir.Result, error) {
	return c.chained(NameRQ, NameRQ, comparativeArgs(sample, target, rSample, rTarget), sample, target,
		func(r *Result) *float64 { return r.RQ },
		NameDeltaDeltaCt, func() (ir.Result, error) { return c.deltaDeltaCt(sample, target, rSample, rTarget) })
}

func (c *Calculator) rqMin(sample, target, rSample string, rTarget *string) (ir.Result, error) {
	return c.chained(NameRQMin, NameRQMin, comparativeArgs(sample, target, rSample, rTarget), sample, target,
		func(r *Result) *float64 { return r.RQMin },
		NameRQ, func() (ir.Result, error) { return c.rq(sample, target, rSample, rTarget) })
}

func (c *Calculator) rqMax(sample, target, rSample string, rTarget *string) (ir.Result, error) {
	return c.chained(NameRQMax, NameRQMax, comparativeArgs(sample, target, rSample, rTarget), sample, target,
		func(r *Result) *float64 { return r.RQMax },
		NameRQ, func() (ir.Result, error) { return c.rq(sample, target, rSample, rTarget) })
}

// relativeRQ is the relative standard curve rq, derived from quantity mean.
func (c *Calculator) relativeRQ(sample, target string) (ir.Result, error) {
	return c.chained(builderRelativeRQ, NameRQ, groupArgs(sample, target), sample, target,
		func(r *Result) *float64 { return r.RQ },
		NameQuantityMean, func() (ir.Result, error) { return c.quantityMean(sample, target) })
}

func (c *Calculator) relativeRQMin(sample, target string) (ir.Result, error) {
	return c.chained(builderRelativeRQMin, NameRQMin, groupArgs(sample, target), sample, target,
		func(r *Result) *float64 { return r.RQMin },
		NameRQ, func() (ir.Result, error) { return c.relativeRQ(sample, target) })
}

func (c *Calculator) relativeRQMax(sample, target string) (ir.Result, error) {
	return c.chained(builderRelativeRQMax, NameRQMax, groupArgs(sample, target), sample, target,
		func(r *Result) *float64 { return r.RQMax },
		NameRQ, func() (ir.Result, error) { return c.relativeRQ(sample, target) })
}
