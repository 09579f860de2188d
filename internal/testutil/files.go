package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/qpcr"
)

type batchFile struct {
	Run   string           `yaml:"run"`
	Wells []qpcr.RawRecord `yaml:"wells"`
}

// WriteBatch writes wells as a YAML batch file in dir and returns its path.
func WriteBatch(t testing.TB, dir, run string, wells []qpcr.RawRecord) string {
	t.Helper()
	data, err := yaml.Marshal(batchFile{Run: run, Wells: wells})
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	path := filepath.Join(dir, run+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	return path
}

// WriteRunConfig writes CUE source as run.cue in dir and returns its path.
func WriteRunConfig(t testing.TB, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "run.cue")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// NewRun creates a run whose documents are numbered CALCULATED_DATA_1, _2, ...
// The run is closed when the test ends.
func NewRun(t testing.TB, opts ...engine.Option) *engine.Run {
	t.Helper()
	opts = append([]engine.Option{
		engine.WithRunID("test-run"),
		engine.WithIDGenerator(graph.NewSequentialGenerator("")),
	}, opts...)
	run := engine.NewRun(opts...)
	t.Cleanup(func() { _ = run.Close() })
	return run
}
