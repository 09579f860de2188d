package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calcdocs/internal/qpcr"
	"github.com/roach88/calcdocs/internal/store"
	"github.com/roach88/calcdocs/internal/testutil"
)

func TestImportThenCalcFromDB(t *testing.T) {
	batch, cfg := fixture(t, "plate-1", testutil.ComparativeWells(), comparativeConfig)
	db := filepath.Join(t.TempDir(), "calcdocs.db")

	out, err := execute(t, "--format", "json", "import", batch, "--db", db)
	require.NoError(t, err)
	status, res, _ := decode[ImportResult](t, out)
	assert.Equal(t, "ok", status)
	assert.Equal(t, ImportResult{RunID: "plate-1", Inserted: 4}, res)

	fromFile, err := execute(t, "--format", "json", "calc", batch, "--config", cfg, "--deterministic-ids")
	require.NoError(t, err)
	fromDB, err := execute(t, "--format", "json", "calc", "--db", db, "--run", "plate-1", "--config", cfg, "--deterministic-ids")
	require.NoError(t, err)

	_, a, _ := decode[CalcResult](t, fromFile)
	_, b, _ := decode[CalcResult](t, fromDB)
	assert.Equal(t, a.Documents, b.Documents)
}

func TestImportIdempotent(t *testing.T) {
	batch, _ := fixture(t, "plate-1", testutil.StandardCurveWells(), standardCurveConfig)
	db := filepath.Join(t.TempDir(), "calcdocs.db")

	_, err := execute(t, "import", batch, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "import", batch, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "0 wells stored, 3 already present")
}

func TestImportConflict(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "calcdocs.db")
	wells := testutil.StandardCurveWells()

	_, err := execute(t, "import", testutil.WriteBatch(t, dir, "plate-1", wells), "--db", db)
	require.NoError(t, err)

	wells[0].Fields[qpcr.FieldCt] = "25"
	_, err = execute(t, "import", testutil.WriteBatch(t, dir, "plate-1", wells), "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrRecordConflict)
}

func TestImportRejectsInvalidBatch(t *testing.T) {
	wells := testutil.StandardCurveWells()
	wells[0].Fields[qpcr.FieldCt] = "oops"
	batch, _ := fixture(t, "plate-1", wells, standardCurveConfig)
	db := filepath.Join(t.TempDir(), "calcdocs.db")

	_, err := execute(t, "import", batch, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, "--format", "json", "runs", "--db", db)
	require.NoError(t, err)
	_, runs, _ := decode[[]store.RunInfo](t, out)
	assert.Empty(t, runs)
}

func TestImportRunOverride(t *testing.T) {
	batch, _ := fixture(t, "plate-1", testutil.StandardCurveWells(), standardCurveConfig)
	db := filepath.Join(t.TempDir(), "calcdocs.db")

	_, err := execute(t, "import", batch, "--db", db, "--run", "rerun")
	require.NoError(t, err)

	out, err := execute(t, "--format", "json", "runs", "--db", db)
	require.NoError(t, err)
	_, runs, _ := decode[[]store.RunInfo](t, out)
	require.Len(t, runs, 1)
	assert.Equal(t, "rerun", runs[0].ID)
	assert.Equal(t, 3, runs[0].Records)
	assert.Equal(t, batch, runs[0].Source)
}

func TestCalcUnknownStoredRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testutil.WriteRunConfig(t, dir, standardCurveConfig)

	out, err := execute(t, "calc", "--db", filepath.Join(dir, "calcdocs.db"), "--run", "nope", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeNotFound)
}
