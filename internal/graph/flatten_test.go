package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calcdocs/internal/ir"
)

// diamond builds:
//
//	ct(w1), ct(w2) -> ctMean -> eq -> adj
//	                         \-> sd
//	root depends on adj and sd (fan-in on ctMean through two paths)
func diamond(t *testing.T, g *Graph) (ctMean, eq, adj, sd, root *ir.Node) {
	t.Helper()
	var err error
	ctMean, err = g.NewNode("ct mean", 20, ir.RawSource("cycle threshold result", well("w1")), ir.RawSource("cycle threshold result", well("w2")))
	require.NoError(t, err)
	eq, err = g.NewNode("equivalent ct mean", 21, ir.CalculatedSource("ct mean", ctMean))
	require.NoError(t, err)
	adj, err = g.NewNode("adjusted equivalent ct mean", 22, ir.CalculatedSource("equivalent ct mean", eq))
	require.NoError(t, err)
	sd, err = g.NewNode("ct sd", 0.1, ir.CalculatedSource("ct mean", ctMean))
	require.NoError(t, err)
	root, err = g.NewNode("delta equivalent ct mean", 1.5,
		ir.CalculatedSource("adjusted equivalent ct mean", adj),
		ir.CalculatedSource("ct sd", sd),
	)
	require.NoError(t, err)
	return
}

func TestFlatten_PostOrderDedup(t *testing.T) {
	g := newTestGraph()
	ctMean, eq, adj, sd, root := diamond(t, g)

	got, err := g.Flatten(root)
	require.NoError(t, err)

	assert.Equal(t, []*ir.Node{ctMean, eq, adj, sd, root}, got)
	require.NoError(t, CheckOrder(got))
}

func TestFlatten_LeafRoot(t *testing.T) {
	g := newTestGraph()
	ctMean, _, _, _, _ := diamond(t, g)

	got, err := g.Flatten(ctMean)
	require.NoError(t, err)
	assert.Equal(t, []*ir.Node{ctMean}, got)
}

func TestFlatten_RawSourcesNotEmitted(t *testing.T) {
	g := newTestGraph()
	n, err := g.NewNode("amplification score", 1.2, ir.RawSource("cycle threshold result", well("w1")))
	require.NoError(t, err)

	got, err := g.Flatten(n)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFlatten_ForeignRoot(t *testing.T) {
	g := newTestGraph()
	_, err := g.Flatten(&ir.Node{ID: "N_1"})
	assert.ErrorIs(t, err, ErrForeignNode)

	_, err = g.Flatten(nil)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestFlatten_DetectsCycle(t *testing.T) {
	g := newTestGraph()
	// Cycles cannot be built through NewNode; inject them directly.
	a := &ir.Node{ID: "a", Name: "a"}
	b := &ir.Node{ID: "b", Name: "b"}
	a.Sources = []ir.DataSource{ir.CalculatedSource("b", b)}
	b.Sources = []ir.DataSource{ir.CalculatedSource("a", a)}
	g.nodes["a"], g.nodes["b"] = a, b

	_, err := g.Flatten(a)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestFlatten_UnknownHandle(t *testing.T) {
	g := newTestGraph()
	dangling := &ir.Node{ID: "x", Sources: []ir.DataSource{ir.CalculatedSource("ghost", &ir.Node{ID: "ghost"})}}
	g.nodes["x"] = dangling

	_, err := g.Flatten(dangling)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestEmitter_DedupAcrossRoots(t *testing.T) {
	g := newTestGraph()
	ctMean, eq, adj, sd, root := diamond(t, g)

	e := NewEmitter(g)
	require.NoError(t, e.Emit(adj))
	require.NoError(t, e.Emit(root))
	require.NoError(t, e.Emit(ctMean))

	assert.Equal(t, []*ir.Node{ctMean, eq, adj, sd, root}, e.Nodes())
	assert.Equal(t, 5, e.Len())
	require.NoError(t, CheckOrder(e.Nodes()))
}

func TestEmitter_RollbackOnError(t *testing.T) {
	g := newTestGraph()
	ctMean, _, _, _, _ := diamond(t, g)
	bad := &ir.Node{ID: "bad", Sources: []ir.DataSource{
		ir.CalculatedSource("ct mean", ctMean),
		ir.CalculatedSource("ghost", &ir.Node{ID: "ghost"}),
	}}
	g.nodes["bad"] = bad

	e := NewEmitter(g)
	require.Error(t, e.Emit(bad))
	assert.Equal(t, 0, e.Len(), "partially visited nodes must be rolled back")

	require.NoError(t, e.Emit(ctMean))
	assert.Equal(t, []*ir.Node{ctMean}, e.Nodes())
}

func TestEmitter_EmitResult(t *testing.T) {
	g := newTestGraph()
	ctMean, _, _, _, _ := diamond(t, g)
	e := NewEmitter(g)

	emitted, err := e.EmitResult(ir.NotComputable("missing"))
	require.NoError(t, err)
	assert.False(t, emitted)

	emitted, err = e.EmitResult(ir.Computed(ctMean))
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, 1, e.Len())
}

func TestCheckOrder(t *testing.T) {
	g := newTestGraph()
	ctMean, eq, _, _, _ := diamond(t, g)

	assert.NoError(t, CheckOrder([]*ir.Node{ctMean, eq}))
	assert.ErrorContains(t, CheckOrder([]*ir.Node{eq, ctMean}), "before it is emitted")
	assert.ErrorContains(t, CheckOrder([]*ir.Node{ctMean, ctMean}), "emitted twice")
}

func TestToDocuments(t *testing.T) {
	g := newTestGraph()
	ctMean, eq, _, _, _ := diamond(t, g)

	docs := ToDocuments([]*ir.Node{ctMean, eq})
	require.Len(t, docs, 2)

	assert.Equal(t, Document{
		ID:    "N_1",
		Name:  "ct mean",
		Value: 20,
		Sources: []DocumentSource{
			{ID: "w1", Feature: "cycle threshold result", Kind: "raw"},
			{ID: "w2", Feature: "cycle threshold result", Kind: "raw"},
		},
	}, docs[0])
	assert.Equal(t, []DocumentSource{{ID: "N_1", Feature: "ct mean", Kind: "calculated"}}, docs[1].Sources)
}
