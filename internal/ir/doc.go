// Package ir provides the foundational types of the calculated-value
// provenance engine.
//
// This package contains type definitions and canonical encodings only. All
// other internal packages import ir; ir imports nothing internal. This keeps
// the node model the bottom layer with no circular dependencies.
//
// Key constraints:
//   - A Node is only ever constructed by a graph arena (internal/graph). The
//     exported fields are read-only by convention once the arena hands the
//     node out.
//   - A DataSource never owns what it points at. Calculated sources hold a
//     NodeID handle into the run's arena; raw sources hold the caller's
//     RawRef handle unchanged.
//   - "Not computable" is a Result, not an error. Errors are reserved for
//     malformed input and contract breaches.
//   - Memo keys are canonical JSON over strings only: no floats, so a key
//     can never depend on a computed value.
package ir
