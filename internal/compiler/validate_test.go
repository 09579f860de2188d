package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calcdocs/internal/qpcr"
)

func well(id, sample, target string, fields map[string]string) qpcr.RawRecord {
	return qpcr.RawRecord{ID: id, Well: id, Sample: sample, Target: target, Fields: fields}
}

func TestValidateRecordsValid(t *testing.T) {
	recs := []qpcr.RawRecord{
		well("A1", "S1", "T1", map[string]string{"ct": "20.1", "slope": "-3.3"}),
		well("A2", "S1", "T1", map[string]string{"ct": "Undetermined", "quantity": ""}),
		well("A3", "S1", "T1", nil),
	}

	errs := ValidateRecords(recs)
	assert.Empty(t, errs, "valid batch should have no errors")
}

func TestValidateRecordsMalformedValue(t *testing.T) {
	recs := []qpcr.RawRecord{
		well("A1", "S1", "T1", map[string]string{"ct": "twenty"}),
	}

	errs := ValidateRecords(recs)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrMalformedValue, errs[0].Code)
	assert.Equal(t, "ct", errs[0].Field)
	assert.Equal(t, "A1", errs[0].Record)
	assert.Contains(t, errs[0].Message, `"twenty"`)
}

func TestValidateRecordsNonFinite(t *testing.T) {
	recs := []qpcr.RawRecord{
		well("A1", "S1", "T1", map[string]string{"ct": "NaN", "rq": "+Inf"}),
	}

	errs := ValidateRecords(recs)
	require.Len(t, errs, 2)
	// Fields are reported in sorted order.
	assert.Equal(t, "ct", errs[0].Field)
	assert.Equal(t, "rq", errs[1].Field)
	for _, e := range errs {
		assert.Equal(t, ErrMalformedValue, e.Code)
	}
}

func TestValidateRecordsMissingIdentifiers(t *testing.T) {
	recs := []qpcr.RawRecord{
		well("", "S1", "T1", nil),
		well("A2", " ", "", nil),
	}

	errs := ValidateRecords(recs)
	require.Len(t, errs, 3)

	assert.Equal(t, ErrMissingID, errs[0].Code)
	assert.Equal(t, "id", errs[0].Field)
	assert.Equal(t, 0, errs[0].Index)

	assert.Equal(t, "sample", errs[1].Field)
	assert.Equal(t, "A2", errs[1].Record)
	assert.Equal(t, "target", errs[2].Field)
}

func TestValidateRecordsDuplicateID(t *testing.T) {
	recs := []qpcr.RawRecord{
		well("A1", "S1", "T1", nil),
		well("A2", "S1", "T1", nil),
		well("A1", "S2", "T1", nil),
	}

	errs := ValidateRecords(recs)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateID, errs[0].Code)
	assert.Equal(t, 2, errs[0].Index)
	assert.Contains(t, errs[0].Message, "wells[0]")
}

func TestValidateRecordsUnknownField(t *testing.T) {
	recs := []qpcr.RawRecord{
		well("A1", "S1", "T1", map[string]string{"colour": "blue", "ct": "20"}),
	}

	errs := ValidateRecords(recs)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownField, errs[0].Code)
	assert.Equal(t, "colour", errs[0].Field)
}

func TestValidateRecordsCollectsAll(t *testing.T) {
	recs := []qpcr.RawRecord{
		well("A1", "", "T1", map[string]string{"ct": "x"}),
		well("A1", "S1", "T1", map[string]string{"bogus": "1"}),
	}

	errs := ValidateRecords(recs)
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{ErrMissingID, ErrMalformedValue, ErrDuplicateID, ErrUnknownField}, codes)
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "ct", Message: "bad", Code: ErrMalformedValue, Record: "A1"}
	assert.Equal(t, "[E201] record A1: ct: bad", e.Error())

	e = ValidationError{Field: "id", Message: "missing", Code: ErrMissingID, Index: 3}
	assert.Equal(t, "[E202] wells[3]: id: missing", e.Error())
}

func TestValidateReference(t *testing.T) {
	recs := []qpcr.RawRecord{
		well("A1", "café", "T1", nil),
		well("A2", "S2", "T1", nil),
	}

	t.Run("present", func(t *testing.T) {
		cfg := &qpcr.Config{Experiment: qpcr.ComparativeCt, ReferenceSample: "S2"}
		assert.Empty(t, ValidateReference(recs, cfg))
	})

	t.Run("present after normalization", func(t *testing.T) {
		cfg := &qpcr.Config{Experiment: qpcr.ComparativeCt, ReferenceSample: " café "}
		assert.Empty(t, ValidateReference(recs, cfg))
	})

	t.Run("absent", func(t *testing.T) {
		cfg := &qpcr.Config{Experiment: qpcr.ComparativeCt, ReferenceSample: "S9"}
		errs := ValidateReference(recs, cfg)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrNoReferenceWells, errs[0].Code)
	})

	t.Run("no reference configured", func(t *testing.T) {
		assert.Empty(t, ValidateReference(recs, &qpcr.Config{Experiment: qpcr.StandardCurve}))
		assert.Empty(t, ValidateReference(recs, nil))
	})
}
