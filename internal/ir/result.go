package ir

// Result is the outcome of a builder call that did not fail: either a
// calculated node, or the not-computable sentinel carrying the reason the
// required input was absent.
//
// The zero Result is not computable with an empty reason.
type Result struct {
	node   *Node
	reason string
}

// Computed wraps a constructed node.
func Computed(n *Node) Result {
	return Result{node: n}
}

// NotComputable reports that a required input is absent for this batch.
func NotComputable(reason string) Result {
	return Result{reason: reason}
}

// Node returns the node and true when the result is computable.
func (r Result) Node() (*Node, bool) {
	return r.node, r.node != nil
}

// OK reports whether the result holds a node.
func (r Result) OK() bool {
	return r.node != nil
}

// Reason returns why the result is not computable. Empty when computable.
func (r Result) Reason() string {
	return r.reason
}

// Propagate returns a not-computable result that names the missing upstream
// quantity and carries its reason forward.
func (r Result) Propagate(upstream string) Result {
	if r.reason == "" {
		return NotComputable(upstream + " not computable")
	}
	return NotComputable(upstream + ": " + r.reason)
}
