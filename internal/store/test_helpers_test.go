package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/calcdocs/internal/qpcr"
)

// createTestStore creates a new on-disk store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a raw record with a ct field.
func createTestRecord(id, sample, target, ct string) qpcr.RawRecord {
	return qpcr.RawRecord{
		ID:     id,
		Well:   "A" + id,
		Sample: sample,
		Target: target,
		Fields: map[string]string{qpcr.FieldCt: ct},
	}
}
