package graph

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/roach88/calcdocs/internal/ir"
)

var (
	// ErrNoProvenance is returned when a node would be constructed without
	// any data source.
	ErrNoProvenance = errors.New("calculated node requires at least one data source")

	// ErrForeignNode is returned when a calculated source references a node
	// that this arena did not construct (for example, from another run).
	ErrForeignNode = errors.New("data source references a node from another graph")

	// ErrUnknownNode is returned when a handle cannot be resolved.
	ErrUnknownNode = errors.New("unknown node")

	// ErrCycle is returned when traversal finds a node on its own path.
	ErrCycle = errors.New("cycle in calculated node graph")

	// ErrInvalidSource is returned for a raw source without a record handle or
	// a source without a feature label.
	ErrInvalidSource = errors.New("invalid data source")

	// ErrNonFinite is returned for a NaN or infinite node value.
	ErrNonFinite = errors.New("node value is not finite")
)

// Graph is the node arena for one conversion run.
//
// Thread-safety: all methods are safe for concurrent use. Node pointers
// handed out must be treated as read-only.
type Graph struct {
	mu    sync.RWMutex
	ids   IDGenerator
	nodes map[ir.NodeID]*ir.Node
	order []ir.NodeID
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDGenerator overrides the default UUIDv7 identifiers.
func WithIDGenerator(gen IDGenerator) Option {
	return func(g *Graph) {
		g.ids = gen
	}
}

// New creates an empty arena.
func New(opts ...Option) *Graph {
	g := &Graph{
		ids:   UUIDv7Generator{},
		nodes: make(map[ir.NodeID]*ir.Node),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewNode constructs a node, assigns its identifier and takes ownership.
//
// The sources slice is copied. Every calculated source must resolve to a node
// already in this arena, which also makes cycles impossible: a node can only
// reference nodes constructed before it.
func (g *Graph) NewNode(name string, value float64, sources ...ir.DataSource) (*ir.Node, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("new node %q: %w", name, ErrNoProvenance)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("new node %q: value %v: %w", name, value, ErrNonFinite)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for i, src := range sources {
		if src.Feature == "" {
			return nil, fmt.Errorf("new node %q: source %d has no feature: %w", name, i, ErrInvalidSource)
		}
		switch src.Kind() {
		case ir.SourceRaw:
			if src.Raw() == nil {
				return nil, fmt.Errorf("new node %q: source %d has no raw record: %w", name, i, ErrInvalidSource)
			}
		case ir.SourceCalculated:
			if _, ok := g.nodes[src.NodeID()]; !ok {
				return nil, fmt.Errorf("new node %q: source %d (%s): %w", name, i, src.NodeID(), ErrForeignNode)
			}
		default:
			return nil, fmt.Errorf("new node %q: source %d kind %s: %w", name, i, src.Kind(), ErrInvalidSource)
		}
	}

	n := &ir.Node{
		ID:      g.ids.Next(),
		Name:    name,
		Value:   value,
		Sources: append([]ir.DataSource(nil), sources...),
	}
	if _, dup := g.nodes[n.ID]; dup {
		return nil, fmt.Errorf("new node %q: identifier %s already issued", name, n.ID)
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return n, nil
}

// Node resolves a handle.
func (g *Graph) Node(id ir.NodeID) (*ir.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Owns reports whether the node pointer was constructed by this arena.
func (g *Graph) Owns(n *ir.Node) bool {
	if n == nil {
		return false
	}
	got, ok := g.Node(n.ID)
	return ok && got == n
}

// Len returns the number of constructed nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Nodes returns all nodes in construction order.
func (g *Graph) Nodes() []*ir.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*ir.Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}
