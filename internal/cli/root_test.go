package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "calcdocs", cmd.Use)
	assert.Contains(t, cmd.Long, "computed once per run")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"calc", "import", "validate", "trace", "runs"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestCalcCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	calcCmd, _, err := cmd.Find([]string{"calc"})
	require.NoError(t, err)

	for _, name := range []string{"config", "db", "run", "deterministic-ids", "parallel", "metrics-file"} {
		assert.NotNil(t, calcCmd.Flags().Lookup(name), "flag --%s", name)
	}
	assert.Equal(t, "1", calcCmd.Flags().Lookup("parallel").DefValue)
	assert.Equal(t, "false", calcCmd.Flags().Lookup("deterministic-ids").DefValue)
}

func TestTraceCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	traceCmd, _, err := cmd.Find([]string{"trace"})
	require.NoError(t, err)

	for _, name := range []string{"config", "node", "sample", "target", "db", "run"} {
		assert.NotNil(t, traceCmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestRunsRemoveInheritsDB(t *testing.T) {
	cmd := NewRootCommand()
	rmCmd, _, err := cmd.Find([]string{"runs", "rm"})
	require.NoError(t, err)
	assert.Equal(t, "rm", rmCmd.Name())
	assert.NotNil(t, rmCmd.InheritedFlags().Lookup("db"))
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(t, "--format", "invalid", "validate", "batch.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootOptionsLoggerDefault(t *testing.T) {
	opts := &RootOptions{}
	assert.NotNil(t, opts.Logger())
}
