package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/calcdocs/internal/ir"
)

// marshalFields converts raw record fields to canonical JSON TEXT for storage.
func marshalFields(fields map[string]string) (string, error) {
	if fields == nil {
		fields = map[string]string{}
	}
	data, err := ir.MarshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(data), nil
}

// unmarshalFields parses stored fields. Returns an empty map (not nil).
func unmarshalFields(data string) (map[string]string, error) {
	fields := map[string]string{}
	if data == "" || data == "{}" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return fields, nil
}
