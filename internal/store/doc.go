// Package store provides SQLite-backed storage for raw well records.
//
// A run is a named batch of raw records as delivered by a vendor parser.
// Only inputs are stored: the calculated graph and memo table live for one
// conversion and are never persisted.
//
// # Patterns
//
// Idempotent import:
//   - PRIMARY KEY(run_id, id) with ON CONFLICT DO NOTHING
//   - Re-importing an identical record is skipped; re-importing a record ID
//     with different fields fails with ErrRecordConflict (digest mismatch)
//
// Deterministic reads:
//   - ORDER BY seq ASC, id COLLATE BINARY ASC
//   - seq is the record's position in import order within its run
//
// Canonical fields:
//   - Fields are stored as canonical JSON (ir.MarshalCanonical) and hashed
//     with ir.RecordDigest
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
