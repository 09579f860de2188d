package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/calcdocs/internal/ir"
	"github.com/roach88/calcdocs/internal/qpcr"
)

// ErrRecordConflict is returned when a record ID is re-imported into a run
// with different content.
var ErrRecordConflict = errors.New("record already stored with different fields")

// Batch is one run's raw records in import order.
type Batch struct {
	RunID   string
	Source  string
	Records []qpcr.RawRecord
}

// WriteResult reports what WriteBatch stored.
type WriteResult struct {
	Inserted int
	Skipped  int
}

// WriteBatch stores a batch in one transaction.
// Records already stored with identical fields are skipped, so importing the
// same file twice is a no-op. New records are appended after existing ones.
func (s *Store) WriteBatch(ctx context.Context, b Batch) (WriteResult, error) {
	if b.RunID == "" {
		return WriteResult{}, fmt.Errorf("write batch: run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, engine_version)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, b.RunID, b.Source, ir.EngineVersion)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write batch: insert run: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM wells WHERE run_id = ?`, b.RunID,
	).Scan(&seq); err != nil {
		return WriteResult{}, fmt.Errorf("write batch: read seq: %w", err)
	}

	var res WriteResult
	for _, rec := range b.Records {
		inserted, err := writeRecord(ctx, tx, b.RunID, seq+1, rec)
		if err != nil {
			return WriteResult{}, fmt.Errorf("write batch %s: %w", b.RunID, err)
		}
		if inserted {
			seq++
			res.Inserted++
		} else {
			res.Skipped++
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE runs SET record_count = (SELECT COUNT(*) FROM wells WHERE run_id = ?)
		WHERE id = ?
	`, b.RunID, b.RunID)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write batch: update count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return WriteResult{}, fmt.Errorf("write batch: commit: %w", err)
	}
	return res, nil
}

func writeRecord(ctx context.Context, tx *sql.Tx, runID string, seq int64, rec qpcr.RawRecord) (bool, error) {
	if rec.ID == "" {
		return false, fmt.Errorf("record for well %q has no id", rec.Well)
	}
	fieldsJSON, err := marshalFields(rec.Fields)
	if err != nil {
		return false, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	digest, err := ir.RecordDigest(rec.Fields)
	if err != nil {
		return false, fmt.Errorf("record %s: %w", rec.ID, err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO wells (run_id, id, seq, well, sample, target, fields, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, id) DO NOTHING
	`, runID, rec.ID, seq, rec.Well, rec.Sample, rec.Target, fieldsJSON, digest)
	if err != nil {
		return false, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record %s: rows affected: %w", rec.ID, err)
	}
	if n == 1 {
		return true, nil
	}

	var existing string
	if err := tx.QueryRowContext(ctx,
		`SELECT digest FROM wells WHERE run_id = ? AND id = ?`, runID, rec.ID,
	).Scan(&existing); err != nil {
		return false, fmt.Errorf("record %s: read digest: %w", rec.ID, err)
	}
	if existing != digest {
		return false, fmt.Errorf("record %s: %w", rec.ID, ErrRecordConflict)
	}
	return false, nil
}
