package graph

import (
	"fmt"

	"github.com/roach88/calcdocs/internal/ir"
)

// Flatten returns root and every node transitively reachable through its
// calculated sources, each exactly once, dependencies first, root last.
func (g *Graph) Flatten(root *ir.Node) ([]*ir.Node, error) {
	e := NewEmitter(g)
	if err := e.Emit(root); err != nil {
		return nil, err
	}
	return e.Nodes(), nil
}

// Emitter accumulates the flattened lists of many roots into one
// deduplicated list. A node shared by two roots is emitted with the first
// root that reaches it.
//
// Thread-safety: not safe for concurrent use. Emission order is the call
// order of Emit, so callers that build in parallel must emit sequentially.
type Emitter struct {
	g    *Graph
	seen map[ir.NodeID]bool
	out  []*ir.Node
}

// NewEmitter creates an empty emitter over g.
func NewEmitter(g *Graph) *Emitter {
	return &Emitter{g: g, seen: make(map[ir.NodeID]bool)}
}

// Emit appends root's flattened dependency tree. Nodes already emitted are
// skipped. On error nothing from this call is kept.
func (e *Emitter) Emit(root *ir.Node) error {
	if root == nil {
		return fmt.Errorf("emit: %w: nil root", ErrUnknownNode)
	}
	if !e.g.Owns(root) {
		return fmt.Errorf("emit %s: %w", root.ID, ErrForeignNode)
	}

	start := len(e.out)
	onPath := make(map[ir.NodeID]bool)
	if err := e.visit(root, onPath); err != nil {
		for _, n := range e.out[start:] {
			delete(e.seen, n.ID)
		}
		e.out = e.out[:start]
		return fmt.Errorf("emit %s: %w", root.ID, err)
	}
	return nil
}

// EmitResult emits the node of a computable result and ignores a
// not-computable one. Returns whether anything was emitted.
func (e *Emitter) EmitResult(r ir.Result) (bool, error) {
	n, ok := r.Node()
	if !ok {
		return false, nil
	}
	return true, e.Emit(n)
}

func (e *Emitter) visit(n *ir.Node, onPath map[ir.NodeID]bool) error {
	if e.seen[n.ID] {
		return nil
	}
	if onPath[n.ID] {
		return fmt.Errorf("%w at %s", ErrCycle, n.ID)
	}
	onPath[n.ID] = true

	for _, id := range n.CalculatedSources() {
		child, ok := e.g.Node(id)
		if !ok {
			return fmt.Errorf("%s source %s: %w", n.ID, id, ErrUnknownNode)
		}
		if err := e.visit(child, onPath); err != nil {
			return err
		}
	}

	delete(onPath, n.ID)
	e.seen[n.ID] = true
	e.out = append(e.out, n)
	return nil
}

// Nodes returns the emitted nodes in emission order.
func (e *Emitter) Nodes() []*ir.Node {
	return append([]*ir.Node(nil), e.out...)
}

// Len returns the number of emitted nodes.
func (e *Emitter) Len() int {
	return len(e.out)
}

// CheckOrder verifies an emitted list: no duplicate identifiers, and every
// calculated source appears at an earlier index.
func CheckOrder(nodes []*ir.Node) error {
	index := make(map[ir.NodeID]int, len(nodes))
	for i, n := range nodes {
		if prev, dup := index[n.ID]; dup {
			return fmt.Errorf("node %s emitted twice (index %d and %d)", n.ID, prev, i)
		}
		for _, id := range n.CalculatedSources() {
			if _, ok := index[id]; !ok {
				return fmt.Errorf("node %s at index %d references %s before it is emitted", n.ID, i, id)
			}
		}
		index[n.ID] = i
	}
	return nil
}
