package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/calcdocs/internal/qpcr"
	"github.com/roach88/calcdocs/internal/testutil"
)

const (
	standardCurveConfig = `run: { experiment: "standard_curve" }`
	comparativeConfig   = `run: {
	experiment:       "comparative_ct"
	reference_sample: "S0"
	reference_target: "T2"
}`
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// fixture writes a batch and a run config into a temp dir.
func fixture(t *testing.T, run string, wells []qpcr.RawRecord, config string) (batch, cfg string) {
	t.Helper()
	dir := t.TempDir()
	return testutil.WriteBatch(t, dir, run, wells), testutil.WriteRunConfig(t, dir, config)
}

// decode unmarshals a JSON CLIResponse whose data is of type T.
func decode[T any](t *testing.T, out string) (string, T, *CLIError) {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   T         `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp.Status, resp.Data, resp.Error
}
