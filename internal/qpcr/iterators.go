package qpcr

import (
	"github.com/roach88/calcdocs/internal/ir"
)

// roots collects the root results of one group in emission order. The first
// error stops collection.
type roots struct {
	out []ir.Result
	err error
}

func (r *roots) add(res ir.Result, err error) {
	if r.err != nil {
		return
	}
	if err != nil {
		r.err = err
		return
	}
	r.out = append(r.out, res)
}

func (r *roots) result() ([]ir.Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.out, nil
}

// iterator lists the root documents of an experiment. Group roots are
// emitted per (sample, target) in view order, then target roots per target.
type iterator struct {
	group  func(c *Calculator, k Key) ([]ir.Result, error)
	target func(c *Calculator, target string) ([]ir.Result, error)
}

var iterators = map[ExperimentType]iterator{
	StandardCurve:         {group: standardCurveGroup, target: standardCurveTarget},
	RelativeStandardCurve: {group: relativeStandardCurveGroup},
	ComparativeCt:         {group: comparativeCtGroup},
	PresenceAbsence:       {group: presenceAbsenceGroup},
}

func (c *Calculator) wellRoots(r *roots, k Key) {
	for _, w := range c.view.Wells(k.Sample, k.Target) {
		r.add(c.ampScore(w))
		r.add(c.cqConf(w))
	}
}

func standardCurveGroup(c *Calculator, k Key) ([]ir.Result, error) {
	var r roots
	c.wellRoots(&r, k)
	r.add(c.quantityMean(k.Sample, k.Target))
	r.add(c.quantitySD(k.Sample, k.Target))
	r.add(c.ctMean(k.Sample, k.Target))
	r.add(c.ctSD(k.Sample, k.Target))
	return r.result()
}

func standardCurveTarget(c *Calculator, target string) ([]ir.Result, error) {
	var r roots
	r.add(c.yIntercept(target))
	r.add(c.rSquared(target))
	r.add(c.slope(target))
	r.add(c.efficiency(target))
	return r.result()
}

func relativeStandardCurveGroup(c *Calculator, k Key) ([]ir.Result, error) {
	rSample, rTarget := c.cfg.ReferenceSample, c.cfg.ReferenceTarget
	var r roots
	c.wellRoots(&r, k)
	r.add(c.ctMean(k.Sample, k.Target))
	r.add(c.ctSD(k.Sample, k.Target))
	r.add(c.deltaCtSD(k.Sample, k.Target, rTarget))
	r.add(c.deltaCtSE(k.Sample, k.Target, rTarget))
	r.add(c.relativeRQMin(k.Sample, k.Target))
	r.add(c.relativeRQMax(k.Sample, k.Target))
	if !c.cfg.isReferenceTarget(k.Target) {
		r.add(c.rqMin(k.Sample, k.Target, rSample, rTarget))
		r.add(c.rqMax(k.Sample, k.Target, rSample, rTarget))
	}
	return r.result()
}

func comparativeCtGroup(c *Calculator, k Key) ([]ir.Result, error) {
	rSample, rTarget := c.cfg.ReferenceSample, c.cfg.ReferenceTarget
	var r roots
	c.wellRoots(&r, k)
	r.add(c.ctMean(k.Sample, k.Target))
	r.add(c.ctSD(k.Sample, k.Target))
	r.add(c.ctSE(k.Sample, k.Target))
	r.add(c.deltaCtMean(k.Sample, k.Target, rTarget))
	r.add(c.deltaCtSD(k.Sample, k.Target, rTarget))
	r.add(c.deltaCtSE(k.Sample, k.Target, rTarget))
	if !c.cfg.isReferenceTarget(k.Target) {
		r.add(c.rq(k.Sample, k.Target, rSample, rTarget))
		r.add(c.rqMin(k.Sample, k.Target, rSample, rTarget))
		r.add(c.rqMax(k.Sample, k.Target, rSample, rTarget))
	}
	return r.result()
}

func presenceAbsenceGroup(c *Calculator, k Key) ([]ir.Result, error) {
	var r roots
	c.wellRoots(&r, k)
	r.add(c.rnMean(k.Sample, k.Target))
	r.add(c.rnSD(k.Sample, k.Target))
	return r.result()
}
