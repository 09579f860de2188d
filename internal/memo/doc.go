// Package memo implements the run-scoped memoization table for builder
// calls.
//
// A Table guarantees at most one evaluation per (builder, arguments) key
// within a run. The stored outcome is returned to every later caller:
// a computed node (same pointer, so fan-in shares identity), the
// not-computable sentinel (absence is never retried), or a hard error.
//
// Keys are built from argument descriptors only (strings, optional strings,
// raw record handles, node handles), encoded as canonical JSON and hashed
// with domain separation. Node values never take part in a key.
//
// Tables are created per conversion run and discarded with Close. There is
// no package-level cache: two runs never share nodes.
//
// Concurrency: Do is safe for concurrent use. Concurrent callers of the same
// key share one evaluation through singleflight.
package memo
