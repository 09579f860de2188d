package qpcr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calcdocs/internal/engine"
)

func TestParseWell_Values(t *testing.T) {
	w, err := ParseWell(rec("w1", "S1", "T1", FieldCt, " 20.1 ", FieldSlope, "-3.3", FieldRQ, "1e-2"))
	require.NoError(t, err)

	require.NotNil(t, w.Result.Ct)
	assert.Equal(t, 20.1, *w.Result.Ct)
	assert.Equal(t, -3.3, *w.Result.Slope)
	assert.Equal(t, 0.01, *w.Result.RQ)
	assert.Nil(t, w.Result.Quantity)
	assert.Equal(t, "w1", w.RawID())
}

func TestParseWell_AbsentTokens(t *testing.T) {
	for _, tok := range []string{"", "  ", "Undetermined", "UNDETERMINED", "N/A", "n/a"} {
		t.Run(tok, func(t *testing.T) {
			w, err := ParseWell(rec("w1", "S1", "T1", FieldCt, tok))
			require.NoError(t, err)
			assert.Nil(t, w.Result.Ct)
		})
	}
}

func TestParseWell_Malformed(t *testing.T) {
	for _, tok := range []string{"abc", "20,1", "NaN", "Inf", "-inf"} {
		t.Run(tok, func(t *testing.T) {
			_, err := ParseWell(rec("w7", "S1", "T1", FieldCt, tok))
			require.Error(t, err)
			assert.True(t, engine.IsMalformedInput(err))

			var ie *engine.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, "w7", ie.Record)
			assert.Equal(t, FieldCt, ie.Field)
			assert.Equal(t, tok, ie.Value)
		})
	}
}

func TestParseWell_MissingIdentifiers(t *testing.T) {
	_, err := ParseWell(rec("", "S1", "T1"))
	assert.True(t, engine.IsMalformedInput(err))

	_, err = ParseWell(rec("w1", " ", "T1"))
	var ie *engine.InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "sample", ie.Field)

	_, err = ParseWell(rec("w1", "S1", ""))
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "target", ie.Field)
}

func TestParseWell_UnknownFieldsIgnored(t *testing.T) {
	w, err := ParseWell(rec("w1", "S1", "T1", "reporter dye", "FAM"))
	require.NoError(t, err)
	assert.Nil(t, w.Result.Ct)
}

func TestParseWell_NormalizesNames(t *testing.T) {
	a, err := ParseWell(rec("w1", "caf\u00e9", "T1"))
	require.NoError(t, err)
	b, err := ParseWell(rec("w2", " cafe\u0301 ", "T1"))
	require.NoError(t, err)
	assert.Equal(t, a.Sample, b.Sample)
}

func TestParseWells_Duplicates(t *testing.T) {
	_, err := ParseWells([]RawRecord{rec("w1", "S1", "T1"), rec("w1", "S2", "T1")})
	require.Error(t, err)
	assert.True(t, engine.IsMalformedInput(err))
	assert.Contains(t, err.Error(), "duplicate record id")
}

func TestParseWells_EquivalentIDsCollide(t *testing.T) {
	_, err := ParseWells([]RawRecord{
		rec("caf\u00e9", "S1", "T1", FieldCt, "20"),
		rec("cafe\u0301", "S1", "T1", FieldCt, "30"),
	})
	var ie *engine.InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, engine.ErrCodeMalformedInput, ie.Code)
	assert.Equal(t, "caf\u00e9", ie.Record)
}

func TestParseWells_FirstErrorAborts(t *testing.T) {
	_, err := ParseWells([]RawRecord{
		rec("w1", "S1", "T1", FieldCt, "20"),
		rec("w2", "S1", "T1", FieldCt, "bad"),
		rec("w3", "S1", "T1", FieldCt, "worse"),
	})
	var ie *engine.InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "w2", ie.Record)
}

func TestFieldNames(t *testing.T) {
	names := FieldNames()
	assert.Len(t, names, 25)
	assert.Equal(t, FieldCt, names[0])
	names[0] = "mutated"
	assert.Equal(t, FieldCt, FieldNames()[0])
}
