// Package engine holds the run scope of a calculated-document conversion.
//
// A Run owns everything that lives for exactly one conversion: the node
// arena, the memoization table, the logger, and the run identifier. Nothing
// is cached at package level; two runs never share nodes or memo entries.
//
// ARCHITECTURE:
//
// Builders are plain functions that receive the *Run explicitly:
//
//	func ctMean(run *engine.Run, sample, target string) (ir.Result, error) {
//	    return run.Build("ct mean", memo.Of(memo.String(sample), memo.String(target)),
//	        func() (ir.Result, error) { ... run.NewNode(...) ... })
//	}
//
// Build routes the call through the memo table so the body runs once per
// (builder, arguments) key. NewNode constructs the single node a builder
// produces and wraps arena contract breaches in a GraphError.
//
// Error model:
//   - ir.NotComputable: a required input is absent. Not an error; memoized.
//   - InputError: malformed input or invalid configuration. Aborts the run.
//   - GraphError: arena or flattening contract breach. Aborts the run.
//
// Concurrency:
// The default run is single-threaded. ForEach fans independent work out over
// an errgroup with a limit; the memo table and arena are safe for that use.
// Callers emit documents in input order after ForEach returns, so output is
// identical for any parallelism.
package engine
