package vqg

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeConnections renders connections as a compact JSON array.
// Nil slices are written as [] and HTML characters are not escaped, so
// IRIs such as <http://...> stay readable.
func EncodeConnections(conns []Connection) (string, error) {
	normalized := make([]Connection, len(conns))
	for i, c := range conns {
		normalized[i] = Connection{
			Source:     c.Source,
			Target:     c.Target,
			Properties: normalizeProperties(c.Properties),
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return "", fmt.Errorf("encode graph: %w", err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// MustEncodeConnections is like EncodeConnections but panics on error.
// Connections built from plain strings and bools always encode.
func MustEncodeConnections(conns []Connection) string {
	out, err := EncodeConnections(conns)
	if err != nil {
		panic(err)
	}
	return out
}

func normalizeProperties(props []Property) []Property {
	out := make([]Property, len(props))
	for i, p := range props {
		p.Children = normalizeProperties(p.Children)
		out[i] = p
	}
	return out
}
