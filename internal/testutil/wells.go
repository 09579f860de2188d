// Package testutil provides fixtures shared by command and harness tests:
// raw well records, batch files, run configurations and deterministic runs.
package testutil

import (
	"github.com/roach88/calcdocs/internal/qpcr"
)

// Well builds a raw record from alternating field name / value pairs.
// The well position equals the id.
func Well(id, sample, target string, kv ...string) qpcr.RawRecord {
	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return qpcr.RawRecord{ID: id, Well: id, Sample: sample, Target: target, Fields: fields}
}

// StandardCurveWells returns three S1/T1 replicates with ct 20.1 on a curve
// of slope -3.3 and intercept 38.0. Quantities are not reported.
func StandardCurveWells() []qpcr.RawRecord {
	curve := []string{qpcr.FieldCt, "20.1", qpcr.FieldSlope, "-3.3", qpcr.FieldYIntercept, "38.0"}
	return []qpcr.RawRecord{
		Well("A1", "S1", "T1", curve...),
		Well("A2", "S1", "T1", curve...),
		Well("A3", "S1", "T1", curve...),
	}
}

// ComparativeWells returns two samples (S0 calibrator, S1) by two targets
// (T1, reference T2) with every comparative field reported.
func ComparativeWells() []qpcr.RawRecord {
	full := func(id, sample, target, ct string) qpcr.RawRecord {
		return Well(id, sample, target,
			qpcr.FieldCt, ct, qpcr.FieldCtMean, ct, qpcr.FieldCtSD, "0.1", qpcr.FieldCtSE, "0.05",
			qpcr.FieldEqCtMean, ct, qpcr.FieldAdjEqCtMean, ct,
			qpcr.FieldDeltaCtMean, "2", qpcr.FieldDeltaCtSD, "0.2", qpcr.FieldDeltaCtSE, "0.1",
			qpcr.FieldDeltaDeltaCt, "1", qpcr.FieldRQ, "0.5", qpcr.FieldRQMin, "0.4", qpcr.FieldRQMax, "0.6")
	}
	return []qpcr.RawRecord{
		full("A1", "S1", "T1", "22"),
		full("A2", "S1", "T2", "18"),
		full("B1", "S0", "T1", "21"),
		full("B2", "S0", "T2", "18"),
	}
}
