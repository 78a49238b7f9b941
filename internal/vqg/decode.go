package vqg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingField is wrapped by DecodeError when a required key is absent.
var ErrMissingField = errors.New("missing required field")

// DecodeError reports where in a graph document decoding failed.
// Path is a dotted location such as "2.properties.0.id".
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode graph: %v", e.Err)
	}
	return fmt.Sprintf("decode graph at %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// fieldDefault describes how a missing (or null) key is backfilled.
// required keys have no default and produce ErrMissingField.
type fieldDefault struct {
	required bool
	value    any
}

// decodeDefaults is the single source of truth for backward-compatible
// decoding. Graphs exported before projection and distinct existed lack
// those keys entirely.
var decodeDefaults = map[string]fieldDefault{
	"id":                    {required: true},
	"source":                {required: true},
	"target":                {required: true},
	"label":                 {value: ""},
	"prefix":                {value: Prefix{}},
	"iri":                   {value: ""},
	"abbreviation":          {value: ""},
	"selectedForProjection": {value: true},
	"distinct":              {value: false},
	"pathType":              {value: PathType("")},
	"modifier":              {value: Modifier("")},
	"properties":            {value: []Property{}},
}

// DecodeConnections parses a JSON graph document: a top-level array of
// connections. Unknown keys are ignored; missing keys are backfilled from
// decodeDefaults.
func DecodeConnections(data []byte) ([]Connection, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Err: err}
	}

	conns := make([]Connection, 0, len(raw))
	for i, item := range raw {
		conn, err := decodeConnection(item, strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

func decodeConnection(data json.RawMessage, path string) (Connection, error) {
	fields, err := decodeObject(data, path)
	if err != nil {
		return Connection{}, err
	}

	var conn Connection
	for _, key := range []string{"source", "target"} {
		raw, err := lookup(fields, key, path)
		if err != nil {
			return Connection{}, err
		}
		entity, err := decodeEntity(raw, join(path, key))
		if err != nil {
			return Connection{}, err
		}
		if key == "source" {
			conn.Source = entity
		} else {
			conn.Target = entity
		}
	}

	conn.Properties, err = decodeProperties(fields, path)
	if err != nil {
		return Connection{}, err
	}
	return conn, nil
}

func decodeEntity(data json.RawMessage, path string) (Entity, error) {
	fields, err := decodeObject(data, path)
	if err != nil {
		return Entity{}, err
	}

	var e Entity
	if err := decodeString(fields, "id", path, &e.ID); err != nil {
		return Entity{}, err
	}
	if err := decodeString(fields, "label", path, &e.Label); err != nil {
		return Entity{}, err
	}
	if e.Prefix, err = decodePrefix(fields, path); err != nil {
		return Entity{}, err
	}
	if err := decodeBool(fields, "selectedForProjection", path, &e.SelectedForProjection); err != nil {
		return Entity{}, err
	}
	if err := decodeBool(fields, "distinct", path, &e.Distinct); err != nil {
		return Entity{}, err
	}
	return e, nil
}

func decodeProperty(data json.RawMessage, path string) (Property, error) {
	fields, err := decodeObject(data, path)
	if err != nil {
		return Property{}, err
	}

	var p Property
	if err := decodeString(fields, "id", path, &p.ID); err != nil {
		return Property{}, err
	}
	if err := decodeString(fields, "label", path, &p.Label); err != nil {
		return Property{}, err
	}
	if p.Prefix, err = decodePrefix(fields, path); err != nil {
		return Property{}, err
	}
	if err := decodeBool(fields, "selectedForProjection", path, &p.SelectedForProjection); err != nil {
		return Property{}, err
	}
	if p.Children, err = decodeProperties(fields, path); err != nil {
		return Property{}, err
	}

	var pathType, modifier string
	if err := decodeString(fields, "pathType", path, &pathType); err != nil {
		return Property{}, err
	}
	if err := decodeString(fields, "modifier", path, &modifier); err != nil {
		return Property{}, err
	}
	p.PathType = PathType(pathType)
	p.Modifier = Modifier(modifier)
	return p, nil
}

func decodeProperties(fields map[string]json.RawMessage, path string) ([]Property, error) {
	raw, err := lookup(fields, "properties", path)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []Property{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{Path: join(path, "properties"), Err: err}
	}
	props := make([]Property, 0, len(items))
	for i, item := range items {
		p, err := decodeProperty(item, join(path, "properties", strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}

func decodePrefix(fields map[string]json.RawMessage, path string) (Prefix, error) {
	raw, err := lookup(fields, "prefix", path)
	if err != nil {
		return Prefix{}, err
	}
	if raw == nil {
		return decodeDefaults["prefix"].value.(Prefix), nil
	}

	prefixPath := join(path, "prefix")
	inner, err := decodeObject(raw, prefixPath)
	if err != nil {
		return Prefix{}, err
	}
	var p Prefix
	if err := decodeString(inner, "iri", prefixPath, &p.IRI); err != nil {
		return Prefix{}, err
	}
	if err := decodeString(inner, "abbreviation", prefixPath, &p.Abbreviation); err != nil {
		return Prefix{}, err
	}
	return p, nil
}

// lookup returns the raw value for key, or nil when the key is absent or
// null and has a default. Required keys that are absent produce an error.
func lookup(fields map[string]json.RawMessage, key, path string) (json.RawMessage, error) {
	raw, ok := fields[key]
	if ok && !isNull(raw) {
		return raw, nil
	}
	def, known := decodeDefaults[key]
	if !known || def.required {
		return nil, &DecodeError{Path: join(path, key), Err: ErrMissingField}
	}
	return nil, nil
}

func decodeString(fields map[string]json.RawMessage, key, path string, out *string) error {
	raw, err := lookup(fields, key, path)
	if err != nil {
		return err
	}
	if raw == nil {
		*out = defaultString(key)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Path: join(path, key), Err: err}
	}
	return nil
}

func decodeBool(fields map[string]json.RawMessage, key, path string, out *bool) error {
	raw, err := lookup(fields, key, path)
	if err != nil {
		return err
	}
	if raw == nil {
		*out = decodeDefaults[key].value.(bool)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Path: join(path, key), Err: err}
	}
	return nil
}

func defaultString(key string) string {
	switch v := decodeDefaults[key].value.(type) {
	case string:
		return v
	case PathType:
		return string(v)
	case Modifier:
		return string(v)
	default:
		return ""
	}
}

func decodeObject(data json.RawMessage, path string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if fields == nil {
		return nil, &DecodeError{Path: path, Err: errors.New("expected object, got null")}
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func join(parts ...string) string {
	var buf bytes.Buffer
	for _, p := range parts {
		if p == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('.')
		}
		buf.WriteString(p)
	}
	return buf.String()
}
