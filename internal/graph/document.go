package graph

import "github.com/roach88/calcdocs/internal/ir"

// Document is the emittable form of a node: name, value and the ordered
// source identifiers with their feature labels.
type Document struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Value   float64          `json:"value"`
	Sources []DocumentSource `json:"data_sources"`
}

// DocumentSource is one data source entry of a Document.
type DocumentSource struct {
	ID      string `json:"id"`
	Feature string `json:"feature"`
	Kind    string `json:"kind"`
}

// ToDocuments maps flattened nodes to documents, preserving order.
func ToDocuments(nodes []*ir.Node) []Document {
	docs := make([]Document, len(nodes))
	for i, n := range nodes {
		srcs := make([]DocumentSource, len(n.Sources))
		for j, s := range n.Sources {
			srcs[j] = DocumentSource{
				ID:      s.SourceID(),
				Feature: s.Feature,
				Kind:    s.Kind().String(),
			}
		}
		docs[i] = Document{
			ID:      string(n.ID),
			Name:    n.Name,
			Value:   n.Value,
			Sources: srcs,
		}
	}
	return docs
}
