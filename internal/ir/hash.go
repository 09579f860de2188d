package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed keys.
// Version suffix enables future algorithm migration.
const (
	DomainMemoKey = "calcdocs/memo/v1"
	DomainRecord  = "calcdocs/record/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MemoKey computes the memoization key for a builder call from the builder
// identity and its canonical argument encoding.
func MemoKey(builder string, canonicalArgs []byte) string {
	data := make([]byte, 0, len(builder)+1+len(canonicalArgs))
	data = append(data, builder...)
	data = append(data, 0x00)
	data = append(data, canonicalArgs...)
	return hashWithDomain(DomainMemoKey, data)
}

// RecordDigest computes a content digest for a raw record's fields. The store
// uses it to detect a re-import that changes an existing record.
func RecordDigest(fields map[string]string) (string, error) {
	canonical, err := MarshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("RecordDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}
