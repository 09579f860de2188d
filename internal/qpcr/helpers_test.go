package qpcr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/ir"
)

// rec builds a raw record from alternating field name / value pairs.
func rec(id, sample, target string, kv ...string) RawRecord {
	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return RawRecord{ID: id, Well: id, Sample: sample, Target: target, Fields: fields}
}

func newTestRun(t *testing.T) *engine.Run {
	t.Helper()
	return engine.NewRun(
		engine.WithRunID("test-run"),
		engine.WithIDGenerator(graph.NewSequentialGenerator("")),
	)
}

func newTestCalculator(t *testing.T, cfg Config, recs ...RawRecord) (*Calculator, *engine.Run) {
	t.Helper()
	wells, err := ParseWells(recs)
	require.NoError(t, err)
	run := newTestRun(t)
	c, err := NewCalculator(run, NewView(wells), cfg)
	require.NoError(t, err)
	return c, run
}

// mustNode returns a function that unwraps a builder's (result, error)
// pair, failing the test unless it is a computed node:
//
//	n := mustNode(t)(c.quantity("T1", w))
func mustNode(t *testing.T) func(ir.Result, error) *ir.Node {
	t.Helper()
	return func(res ir.Result, err error) *ir.Node {
		t.Helper()
		require.NoError(t, err)
		n, ok := res.Node()
		require.Truef(t, ok, "not computable: %s", res.Reason())
		return n
	}
}

func ptr(s string) *string {
	return &s
}

func sourceFeatures(n *ir.Node) []string {
	out := make([]string, len(n.Sources))
	for i, s := range n.Sources {
		out[i] = s.Feature
	}
	return out
}

func names(nodes []*ir.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}
