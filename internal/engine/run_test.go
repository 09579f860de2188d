package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/ir"
	"github.com/roach88/calcdocs/internal/memo"
)

type well string

func (w well) RawID() string { return string(w) }

func newTestRun(t *testing.T, opts ...Option) *Run {
	t.Helper()
	opts = append([]Option{
		WithRunID("run-test"),
		WithIDGenerator(graph.NewSequentialGenerator("N")),
	}, opts...)
	return NewRun(opts...)
}

func TestNewRun_Defaults(t *testing.T) {
	run := NewRun()
	assert.NotEmpty(t, run.ID)
	assert.NotNil(t, run.Graph())
	assert.NotNil(t, run.Logger())
	assert.Equal(t, 0, run.Graph().Len())
}

func TestRun_BuildOnce(t *testing.T) {
	run := newTestRun(t)
	calls := 0
	build := func() (ir.Result, error) {
		return run.Build("ct mean", memo.Of(memo.String("S1"), memo.String("T1")), func() (ir.Result, error) {
			calls++
			return run.NewNode("ct mean", 20.1, ir.RawSource("cycle threshold result", well("w1")))
		})
	}

	first, err := build()
	require.NoError(t, err)
	second, err := build()
	require.NoError(t, err)

	n1, _ := first.Node()
	n2, _ := second.Node()
	assert.Same(t, n1, n2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, run.Graph().Len())
	assert.Equal(t, ir.NodeID("N_1"), n1.ID)
	assert.Equal(t, 1, run.BuilderStats("ct mean").Evaluations)
	assert.Equal(t, 2, run.Stats().Lookups)
	assert.Equal(t, []string{"ct mean"}, run.Builders())
}

func TestRun_NewNodeWithoutSources(t *testing.T) {
	run := newTestRun(t)
	_, err := run.NewNode("orphan", 1)
	require.Error(t, err)
	assert.True(t, IsGraphError(err))
	assert.ErrorIs(t, err, graph.ErrNoProvenance)
	assert.Contains(t, err.Error(), "GRAPH")
}

func TestRun_NewNodeNonFiniteNotComputable(t *testing.T) {
	run := newTestRun(t)
	res, err := run.NewNode("quantity", math.Inf(1), ir.RawSource("cycle threshold result", well("w1")))
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, "quantity is not finite (+Inf)", res.Reason())
	assert.Equal(t, 0, run.Graph().Len())
}

func TestRun_Flatten(t *testing.T) {
	run := newTestRun(t)
	a, err := run.NewNode("ct mean", 20.1, ir.RawSource("cycle threshold result", well("w1")))
	require.NoError(t, err)
	an, _ := a.Node()
	b, err := run.NewNode("equivalent ct mean", 20.1, ir.CalculatedSource("ct mean", an))
	require.NoError(t, err)
	bn, _ := b.Node()

	nodes, err := run.Flatten(bn)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, an.ID, nodes[0].ID)
	assert.Equal(t, bn.ID, nodes[1].ID)

	em := run.NewEmitter()
	require.NoError(t, em.Emit(bn))
	require.NoError(t, em.Emit(an))
	assert.Equal(t, 2, em.Len())
}

func TestRun_FlattenForeignNode(t *testing.T) {
	run := newTestRun(t)
	other := newTestRun(t)
	res, err := other.NewNode("ct mean", 1, ir.RawSource("cycle threshold result", well("w1")))
	require.NoError(t, err)
	n, _ := res.Node()

	_, err = run.Flatten(n)
	assert.True(t, IsGraphError(err))
	assert.ErrorIs(t, err, graph.ErrForeignNode)
}

func TestRun_Close(t *testing.T) {
	run := newTestRun(t)
	_, err := run.Build("slope", memo.Of(memo.String("T1")), func() (ir.Result, error) {
		return ir.NotComputable("slope not reported"), nil
	})
	require.NoError(t, err)

	require.NoError(t, run.Close())
	assert.Error(t, run.Close())

	_, err = run.Build("slope", memo.Of(memo.String("T1")), func() (ir.Result, error) {
		return ir.NotComputable("x"), nil
	})
	assert.ErrorIs(t, err, memo.ErrClosed)
}

func TestRun_RunsAreIsolated(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		run := newTestRun(t)
		_, err := run.Build("slope", memo.Of(memo.String("T1")), func() (ir.Result, error) {
			calls++
			return ir.NotComputable("x"), nil
		})
		require.NoError(t, err)
		require.NoError(t, run.Close())
	}
	assert.Equal(t, 2, calls)
}

func TestRun_LogsNotComputable(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	run := newTestRun(t, WithLogger(logger))

	_, err := run.Build("rq", memo.Of(memo.String("S1")), func() (ir.Result, error) {
		return ir.NotComputable("rq not reported"), nil
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "run_id=run-test")
	assert.Contains(t, out, "not computable")
	assert.Contains(t, out, `reason="rq not reported"`)
}

func TestForEach_Sequential(t *testing.T) {
	var order []int
	err := ForEach(context.Background(), 4, 1, func(_ context.Context, i int) error {
		order = append(order, i)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestForEach_Parallel(t *testing.T) {
	var sum atomic.Int64
	err := ForEach(context.Background(), 100, 8, func(_ context.Context, i int) error {
		sum.Add(int64(i))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4950), sum.Load())
}

func TestForEach_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := ForEach(context.Background(), 5, 0, func(_ context.Context, i int) error {
		calls++
		if i == 1 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	err = ForEach(context.Background(), 50, 4, func(_ context.Context, i int) error {
		if i == 7 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEach_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ForEach(ctx, 3, 1, func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ConcurrentBuildSharesNode(t *testing.T) {
	run := newTestRun(t)
	var calls atomic.Int32
	nodes := make([]*ir.Node, 16)

	err := ForEach(context.Background(), len(nodes), 8, func(_ context.Context, i int) error {
		res, err := run.Build("slope", memo.Of(memo.String("T1")), func() (ir.Result, error) {
			calls.Add(1)
			return run.NewNode("slope", -3.3, ir.RawSource("cycle threshold result", well("w1")))
		})
		if err != nil {
			return err
		}
		nodes[i], _ = res.Node()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	for _, n := range nodes {
		assert.Same(t, nodes[0], n)
	}
	assert.Equal(t, 1, run.Graph().Len())
}
