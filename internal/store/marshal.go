package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/querygraph/internal/vqg"
)

// marshalSettings converts session settings to canonical JSON TEXT so
// identical settings are stored byte-identically.
func marshalSettings(settings map[string]any) (string, error) {
	if settings == nil {
		return "{}", nil
	}
	data, err := vqg.MarshalCanonical(settings)
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}
	return string(data), nil
}

// unmarshalSettings parses settings TEXT. Numbers decode as int64 to
// match what marshalSettings accepts.
func unmarshalSettings(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			raw[k] = int64(f)
		}
	}
	return raw, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
