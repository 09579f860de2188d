package qpcr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/ir"
)

// Raw field names accepted in RawRecord.Fields.
const (
	FieldCt           = "ct"
	FieldAmpScore     = "amp_score"
	FieldCqConf       = "cq_conf"
	FieldQuantity     = "quantity"
	FieldQuantityMean = "quantity_mean"
	FieldQuantitySD   = "quantity_sd"
	FieldCtMean       = "ct_mean"
	FieldCtSD         = "ct_sd"
	FieldCtSE         = "ct_se"
	FieldEqCtMean     = "eq_ct_mean"
	FieldAdjEqCtMean  = "adj_eq_ct_mean"
	FieldDeltaCtMean  = "delta_ct_mean"
	FieldDeltaCtSD    = "delta_ct_sd"
	FieldDeltaCtSE    = "delta_ct_se"
	FieldDeltaDeltaCt = "delta_delta_ct"
	FieldRQ           = "rq"
	FieldRQMin        = "rq_min"
	FieldRQMax        = "rq_max"
	FieldRn           = "rn"
	FieldRnMean       = "rn_mean"
	FieldRnSD         = "rn_sd"
	FieldYIntercept   = "y_intercept"
	FieldRSquared     = "r_squared"
	FieldSlope        = "slope"
	FieldEfficiency   = "efficiency"
)

// RawRecord is one well as delivered by a vendor parser: identifiers plus
// the raw field strings exactly as read from the instrument export.
type RawRecord struct {
	ID     string            `yaml:"id" json:"id"`
	Well   string            `yaml:"well" json:"well"`
	Sample string            `yaml:"sample" json:"sample"`
	Target string            `yaml:"target" json:"target"`
	Fields map[string]string `yaml:"fields" json:"fields"`
}

// Result holds the typed well results. nil means the instrument did not
// report the value.
type Result struct {
	Ct           *float64
	AmpScore     *float64
	CqConf       *float64
	Quantity     *float64
	QuantityMean *float64
	QuantitySD   *float64
	CtMean       *float64
	CtSD         *float64
	CtSE         *float64
	EqCtMean     *float64
	AdjEqCtMean  *float64
	DeltaCtMean  *float64
	DeltaCtSD    *float64
	DeltaCtSE    *float64
	DeltaDeltaCt *float64
	RQ           *float64
	RQMin        *float64
	RQMax        *float64
	Rn           *float64
	RnMean       *float64
	RnSD         *float64
	YIntercept   *float64
	RSquared     *float64
	Slope        *float64
	Efficiency   *float64
}

var fieldNames = []string{
	FieldCt, FieldAmpScore, FieldCqConf,
	FieldQuantity, FieldQuantityMean, FieldQuantitySD,
	FieldCtMean, FieldCtSD, FieldCtSE,
	FieldEqCtMean, FieldAdjEqCtMean,
	FieldDeltaCtMean, FieldDeltaCtSD, FieldDeltaCtSE, FieldDeltaDeltaCt,
	FieldRQ, FieldRQMin, FieldRQMax,
	FieldRn, FieldRnMean, FieldRnSD,
	FieldYIntercept, FieldRSquared, FieldSlope, FieldEfficiency,
}

// FieldNames returns the accepted raw field names in canonical order.
func FieldNames() []string {
	return append([]string(nil), fieldNames...)
}

func (r *Result) fields() map[string]**float64 {
	return map[string]**float64{
		FieldCt:           &r.Ct,
		FieldAmpScore:     &r.AmpScore,
		FieldCqConf:       &r.CqConf,
		FieldQuantity:     &r.Quantity,
		FieldQuantityMean: &r.QuantityMean,
		FieldQuantitySD:   &r.QuantitySD,
		FieldCtMean:       &r.CtMean,
		FieldCtSD:         &r.CtSD,
		FieldCtSE:         &r.CtSE,
		FieldEqCtMean:     &r.EqCtMean,
		FieldAdjEqCtMean:  &r.AdjEqCtMean,
		FieldDeltaCtMean:  &r.DeltaCtMean,
		FieldDeltaCtSD:    &r.DeltaCtSD,
		FieldDeltaCtSE:    &r.DeltaCtSE,
		FieldDeltaDeltaCt: &r.DeltaDeltaCt,
		FieldRQ:           &r.RQ,
		FieldRQMin:        &r.RQMin,
		FieldRQMax:        &r.RQMax,
		FieldRn:           &r.Rn,
		FieldRnMean:       &r.RnMean,
		FieldRnSD:         &r.RnSD,
		FieldYIntercept:   &r.YIntercept,
		FieldRSquared:     &r.RSquared,
		FieldSlope:        &r.Slope,
		FieldEfficiency:   &r.Efficiency,
	}
}

// WellItem is a parsed well. It is the raw record handle referenced by
// calculated documents.
type WellItem struct {
	ID     string
	Well   string
	Sample string
	Target string
	Result Result
}

// RawID implements ir.RawRef.
func (w *WellItem) RawID() string {
	return w.ID
}

// ParseWell converts a raw record. The id, sample and target are NFC
// normalized. Absent values (missing key, empty, "Undetermined", "N/A")
// become nil; any other value that is not a finite number is a
// malformed-input error. Unknown field names are ignored.
func ParseWell(rec RawRecord) (*WellItem, error) {
	id := ir.NormalizeName(strings.TrimSpace(rec.ID))
	if id == "" {
		return nil, &engine.InputError{
			Code:    engine.ErrCodeMalformedInput,
			Message: fmt.Sprintf("record for well %q has no id", rec.Well),
		}
	}
	for _, f := range [][2]string{{"sample", rec.Sample}, {"target", rec.Target}} {
		if field, v := f[0], f[1]; strings.TrimSpace(v) == "" {
			return nil, &engine.InputError{
				Code:    engine.ErrCodeMalformedInput,
				Message: "required identifier is empty",
				Record:  id,
				Field:   field,
				Value:   v,
			}
		}
	}

	w := &WellItem{
		ID:     id,
		Well:   rec.Well,
		Sample: ir.NormalizeName(strings.TrimSpace(rec.Sample)),
		Target: ir.NormalizeName(strings.TrimSpace(rec.Target)),
	}
	dsts := w.Result.fields()
	for _, name := range fieldNames {
		raw, ok := rec.Fields[name]
		if !ok {
			continue
		}
		v, err := ParseValue(raw)
		if err != nil {
			return nil, engine.NewMalformedInput(id, name, raw, err)
		}
		*dsts[name] = v
	}
	return w, nil
}

// ParseWells parses every record and rejects duplicate IDs, comparing the
// normalized form so canonically equivalent IDs collide. The first
// malformed record aborts parsing.
func ParseWells(recs []RawRecord) ([]*WellItem, error) {
	wells := make([]*WellItem, 0, len(recs))
	seen := make(map[string]bool, len(recs))
	for _, rec := range recs {
		w, err := ParseWell(rec)
		if err != nil {
			return nil, err
		}
		if seen[w.ID] {
			return nil, &engine.InputError{
				Code:    engine.ErrCodeMalformedInput,
				Message: "duplicate record id",
				Record:  w.ID,
				Field:   "id",
				Value:   w.ID,
			}
		}
		seen[w.ID] = true
		wells = append(wells, w)
	}
	return wells, nil
}

func isAbsent(s string) bool {
	switch strings.ToLower(s) {
	case "", "undetermined", "n/a":
		return true
	}
	return false
}

// ParseValue parses one raw field value. Absent tokens return nil, nil.
func ParseValue(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if isAbsent(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("non-finite value %s", s)
	}
	return &v, nil
}
