// Package graph owns the calculated nodes of one conversion run.
//
// A Graph is an arena: it constructs every node, assigns its identifier and
// keeps the only owning reference. Data sources elsewhere hold NodeID
// handles that are resolved through the arena during traversal.
//
// Flattening is a post-order depth-first walk over calculated sources in
// declared order. A node reachable through several paths is emitted once, at
// the position of its first encounter, and always after every node it
// references. Consumers serialise documents that reference earlier
// identifiers, so a node never references an identifier not yet emitted.
package graph
