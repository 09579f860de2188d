package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/calcdocs/internal/ir"
	"github.com/roach88/calcdocs/internal/qpcr"
)

// Validation error codes (E200-E299)
const (
	ErrMalformedValue   = "E201" // field value is neither absent nor a finite number
	ErrMissingID        = "E202" // id, sample or target is empty
	ErrDuplicateID      = "E203" // record id appears twice in one batch
	ErrUnknownField     = "E204" // field name is not a known result field
	ErrNoReferenceWells = "E205" // reference sample has no wells
)

// ValidationError represents a record validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Record  string `json:"record,omitempty"`
	Index   int    `json:"index"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("[%s] record %s: %s: %s", e.Code, e.Record, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] wells[%d]: %s: %s", e.Code, e.Index, e.Field, e.Message)
}

// ValidateRecords checks a batch of raw well records.
// Returns all errors found (does not fail-fast). Unknown fields are
// reported but are ignored by conversion.
func ValidateRecords(recs []qpcr.RawRecord) []ValidationError {
	var errs []ValidationError
	known := qpcr.FieldNames()
	seen := make(map[string]int, len(recs))

	for i, rec := range recs {
		id := strings.TrimSpace(rec.ID)

		// E202: identifiers are required
		if id == "" {
			errs = append(errs, ValidationError{
				Field:   "id",
				Message: "id is required and must be non-empty",
				Code:    ErrMissingID,
				Index:   i,
			})
		}
		for _, f := range [][2]string{{"sample", rec.Sample}, {"target", rec.Target}} {
			if strings.TrimSpace(f[1]) == "" {
				errs = append(errs, ValidationError{
					Field:   f[0],
					Message: f[0] + " is required and must be non-empty",
					Code:    ErrMissingID,
					Record:  id,
					Index:   i,
				})
			}
		}

		// E203: duplicate record id
		if id != "" {
			if first, ok := seen[id]; ok {
				errs = append(errs, ValidationError{
					Field:   "id",
					Message: fmt.Sprintf("duplicate id (first at wells[%d])", first),
					Code:    ErrDuplicateID,
					Record:  id,
					Index:   i,
				})
			} else {
				seen[id] = i
			}
		}

		// Sorted for stable output.
		names := make([]string, 0, len(rec.Fields))
		for name := range rec.Fields {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			raw := rec.Fields[name]

			// E204: unknown field
			if !slices.Contains(known, name) {
				errs = append(errs, ValidationError{
					Field:   name,
					Message: "unknown result field",
					Code:    ErrUnknownField,
					Record:  id,
					Index:   i,
				})
				continue
			}

			// E201: malformed value
			if _, err := qpcr.ParseValue(raw); err != nil {
				errs = append(errs, ValidationError{
					Field:   name,
					Message: fmt.Sprintf("malformed value %q: %v", raw, err),
					Code:    ErrMalformedValue,
					Record:  id,
					Index:   i,
				})
			}
		}
	}

	return errs
}

// ValidateReference reports E205 when cfg names a reference sample that no
// record carries. Conversion still succeeds in that case, with every
// comparative document not computable.
func ValidateReference(recs []qpcr.RawRecord, cfg *qpcr.Config) []ValidationError {
	if cfg == nil || cfg.ReferenceSample == "" {
		return nil
	}
	want := ir.NormalizeName(strings.TrimSpace(cfg.ReferenceSample))
	for _, rec := range recs {
		if ir.NormalizeName(strings.TrimSpace(rec.Sample)) == want {
			return nil
		}
	}
	return []ValidationError{{
		Field:   "reference_sample",
		Message: fmt.Sprintf("no wells for reference sample %q", want),
		Code:    ErrNoReferenceWells,
		Index:   -1,
	}}
}
