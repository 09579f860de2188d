package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calcdocs/internal/store"
	"github.com/roach88/calcdocs/internal/testutil"
)

func TestRuns_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "calcdocs.db")

	out, err := execute(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "no runs stored\n", out)

	out, err = execute(t, "--format", "json", "runs", "--db", db)
	require.NoError(t, err)
	status, runs, _ := decode[[]store.RunInfo](t, out)
	assert.Equal(t, "ok", status)
	assert.Empty(t, runs)
}

func TestRuns_ListAndRemove(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "calcdocs.db")

	out, err := execute(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "no runs stored")

	for _, run := range []string{"b-plate", "a-plate"} {
		_, err := execute(t, "import", testutil.WriteBatch(t, dir, run, testutil.StandardCurveWells()), "--db", db)
		require.NoError(t, err)
	}

	out, err = execute(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Less(t, strings.Index(out, "a-plate"), strings.Index(out, "b-plate"))

	_, err = execute(t, "runs", "rm", "a-plate", "--db", db)
	require.NoError(t, err)

	out, err = execute(t, "--format", "json", "runs", "--db", db)
	require.NoError(t, err)
	_, runs, _ := decode[[]store.RunInfo](t, out)
	require.Len(t, runs, 1)
	assert.Equal(t, "b-plate", runs[0].ID)

	_, err = execute(t, "runs", "rm", "a-plate", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRuns_RemoveUnknown(t *testing.T) {
	db := filepath.Join(t.TempDir(), "calcdocs.db")

	out, err := execute(t, "--format", "json", "runs", "rm", "nope", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	status, _, cliErr := decode[any](t, out)
	assert.Equal(t, "error", status)
	require.NotNil(t, cliErr)
	assert.Equal(t, ErrCodeNotFound, cliErr.Code)
}

func TestRuns_RequiresDB(t *testing.T) {
	_, err := execute(t, "runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}
