package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calcdocs/internal/compiler"
	"github.com/roach88/calcdocs/internal/qpcr"
	"github.com/roach88/calcdocs/internal/testutil"
)

func TestValidateValidBatch(t *testing.T) {
	batch, _ := fixture(t, "plate-1", testutil.StandardCurveWells(), standardCurveConfig)

	out, err := execute(t, "validate", batch)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 3 wells valid")
}

func TestValidateValidBatchJSON(t *testing.T) {
	batch, cfg := fixture(t, "plate-1", testutil.ComparativeWells(), comparativeConfig)

	out, err := execute(t, "--format", "json", "validate", batch, "--config", cfg)
	require.NoError(t, err)

	status, res, _ := decode[ValidationResult](t, out)
	assert.Equal(t, "ok", status)
	assert.True(t, res.Valid)
	assert.Equal(t, 4, res.Wells)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	wells := testutil.StandardCurveWells()
	wells[0].Fields[qpcr.FieldCt] = "abc"
	wells[1].Fields[qpcr.FieldSlope] = "NaN"
	wells[2].ID = "A1"
	batch, _ := fixture(t, "plate-1", wells, standardCurveConfig)

	out, err := execute(t, "--format", "json", "validate", batch)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	status, res, cliErr := decode[ValidationResult](t, out)
	assert.Equal(t, "error", status)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, compiler.ErrMalformedValue, cliErr.Code)

	codes := []string{res.Errors[0].Code, res.Errors[1].Code, res.Errors[2].Code}
	assert.Equal(t, []string{compiler.ErrMalformedValue, compiler.ErrMalformedValue, compiler.ErrDuplicateID}, codes)
}

func TestValidateText(t *testing.T) {
	wells := testutil.StandardCurveWells()
	wells[0].Fields["colour"] = "blue"
	batch, _ := fixture(t, "plate-1", wells, standardCurveConfig)

	out, err := execute(t, "validate", batch)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "[E204] record A1: colour: unknown result field")
}

func TestValidateMissingReferenceWells(t *testing.T) {
	batch, cfg := fixture(t, "plate-1", testutil.StandardCurveWells(), comparativeConfig)

	out, err := execute(t, "validate", batch, "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, out, compiler.ErrNoReferenceWells)
}

func TestValidateNonExistentFile(t *testing.T) {
	out, err := execute(t, "validate", "/nonexistent/batch.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}
