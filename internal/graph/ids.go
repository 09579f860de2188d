package graph

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/calcdocs/internal/ir"
)

// IDGenerator assigns node identifiers.
// Implemented by UUIDv7Generator (production) and SequentialGenerator (tests,
// golden output).
type IDGenerator interface {
	Next() ir.NodeID
}

// UUIDv7Generator generates time-sortable UUIDv7 node identifiers.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Next creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Next() ir.NodeID {
	return ir.NodeID(uuid.Must(uuid.NewV7()).String())
}

// SequentialGenerator produces "<prefix>_<n>" identifiers from a monotonic
// counter, starting at 1. The same build order yields byte-identical IDs.
//
// Thread-safety: safe for concurrent use (atomic counter), though IDs are
// only reproducible when nodes are constructed in a fixed order.
type SequentialGenerator struct {
	prefix string
	seq    atomic.Int64
}

// NewSequentialGenerator creates a generator. An empty prefix defaults to
// "CALCULATED_DATA".
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	if prefix == "" {
		prefix = "CALCULATED_DATA"
	}
	return &SequentialGenerator{prefix: prefix}
}

// Next returns the next identifier.
func (g *SequentialGenerator) Next() ir.NodeID {
	return ir.NodeID(fmt.Sprintf("%s_%d", g.prefix, g.seq.Add(1)))
}

// Current returns how many identifiers have been issued.
func (g *SequentialGenerator) Current() int64 {
	return g.seq.Load()
}
