package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/calcdocs/internal/qpcr"
)

// ErrRunNotFound is returned by ReadBatch for an unknown run.
var ErrRunNotFound = errors.New("run not found")

// RunInfo summarises a stored run.
type RunInfo struct {
	ID            string `json:"id"`
	Source        string `json:"source"`
	EngineVersion string `json:"engine_version"`
	Records       int    `json:"records"`
}

// ReadBatch returns a run's records in import order.
// Ordering: ORDER BY seq ASC, id COLLATE BINARY ASC.
func (s *Store) ReadBatch(ctx context.Context, runID string) (*Batch, error) {
	var source string
	err := s.db.QueryRowContext(ctx, `SELECT source FROM runs WHERE id = ?`, runID).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read batch %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read batch %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, well, sample, target, fields
		FROM wells
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query wells: %w", err)
	}
	defer rows.Close()

	records := []qpcr.RawRecord{}
	for rows.Next() {
		var rec qpcr.RawRecord
		var fieldsJSON string
		if err := rows.Scan(&rec.ID, &rec.Well, &rec.Sample, &rec.Target, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan well: %w", err)
		}
		if rec.Fields, err = unmarshalFields(fieldsJSON); err != nil {
			return nil, fmt.Errorf("well %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wells: %w", err)
	}

	return &Batch{RunID: runID, Source: source, Records: records}, nil
}

// ListRuns returns every stored run ordered by ID.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, engine_version, record_count
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.ID, &r.Source, &r.EngineVersion, &r.Records); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
