package ir

import "fmt"

// NodeID is the stable identifier of a calculated node. It is assigned once
// by the arena that constructs the node and never changes.
type NodeID string

// RawRef is an opaque handle to a raw measurement record supplied by an
// external collaborator (for qPCR, a well result). The engine compares raw
// references by RawID only and never copies or mutates them.
type RawRef interface {
	RawID() string
}

// SourceKind tags the variant held by a DataSource.
type SourceKind int

const (
	// SourceRaw references a raw measurement record.
	SourceRaw SourceKind = iota
	// SourceCalculated references another calculated node by handle.
	SourceCalculated
)

// String returns the kind name used in documents and logs.
func (k SourceKind) String() string {
	switch k {
	case SourceRaw:
		return "raw"
	case SourceCalculated:
		return "calculated"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// DataSource is a typed, non-owning link from a node to the value it was
// derived from. Feature labels which facet of the source was used, e.g.
// "cycle threshold result" or "ct mean".
type DataSource struct {
	Feature string
	kind    SourceKind
	raw     RawRef
	node    NodeID
}

// RawSource creates a reference to a raw record.
func RawSource(feature string, ref RawRef) DataSource {
	return DataSource{Feature: feature, kind: SourceRaw, raw: ref}
}

// CalculatedSource creates a handle reference to a calculated node.
func CalculatedSource(feature string, n *Node) DataSource {
	return DataSource{Feature: feature, kind: SourceCalculated, node: n.ID}
}

// Kind reports which variant the source holds.
func (d DataSource) Kind() SourceKind {
	return d.kind
}

// Raw returns the raw record handle. Only meaningful for SourceRaw.
func (d DataSource) Raw() RawRef {
	return d.raw
}

// NodeID returns the calculated node handle. Only meaningful for SourceCalculated.
func (d DataSource) NodeID() NodeID {
	return d.node
}

// SourceID returns the identifier the source is emitted under: the raw
// record ID or the calculated node ID.
func (d DataSource) SourceID() string {
	if d.kind == SourceRaw {
		if d.raw == nil {
			return ""
		}
		return d.raw.RawID()
	}
	return string(d.node)
}

// Node is one derived quantity with its provenance.
type Node struct {
	ID      NodeID
	Name    string
	Value   float64
	Sources []DataSource
}

// CalculatedSources returns the node handles among the sources, in order.
func (n *Node) CalculatedSources() []NodeID {
	var ids []NodeID
	for _, src := range n.Sources {
		if src.kind == SourceCalculated {
			ids = append(ids, src.node)
		}
	}
	return ids
}

// String renders a short form for logs: name(id)=value.
func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)=%g", n.Name, n.ID, n.Value)
}
