package vqg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the hashed layout to change later.
const (
	DomainTranslation = "qbg/translation/v1"
	DomainGraph       = "qbg/graph/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TranslationID identifies one translation request: the direction, the
// raw input text and the two label-service flags. Identical requests get
// identical ids, which makes recording idempotent.
func TranslationID(direction, input string, addLabelService, addLabelServicePrefixes bool) (string, error) {
	obj := map[string]any{
		"direction":                  direction,
		"input":                      input,
		"add_label_service":          addLabelService,
		"add_label_service_prefixes": addLabelServicePrefixes,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("TranslationID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTranslation, canonical), nil
}

// GraphID hashes the canonical form of a connection list. Two graphs that
// differ only in JSON key order or whitespace share an id.
func GraphID(conns []Connection) (string, error) {
	items := make([]any, len(conns))
	for i, c := range conns {
		items[i] = connectionValue(c)
	}

	canonical, err := MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("GraphID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGraph, canonical), nil
}

// MustTranslationID is like TranslationID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTranslationID(direction, input string, addLabelService, addLabelServicePrefixes bool) string {
	id, err := TranslationID(direction, input, addLabelService, addLabelServicePrefixes)
	if err != nil {
		panic(err)
	}
	return id
}

func connectionValue(c Connection) map[string]any {
	return map[string]any{
		"source":     entityValue(c.Source),
		"target":     entityValue(c.Target),
		"properties": propertyValues(c.Properties),
	}
}

func entityValue(e Entity) map[string]any {
	return map[string]any{
		"id":                    e.ID,
		"label":                 e.Label,
		"prefix":                prefixValue(e.Prefix),
		"selectedForProjection": e.SelectedForProjection,
		"distinct":              e.Distinct,
	}
}

func propertyValues(props []Property) []any {
	out := make([]any, len(props))
	for i, p := range props {
		obj := map[string]any{
			"id":                    p.ID,
			"label":                 p.Label,
			"prefix":                prefixValue(p.Prefix),
			"selectedForProjection": p.SelectedForProjection,
			"properties":            propertyValues(p.Children),
		}
		if p.PathType != "" {
			obj["pathType"] = string(p.PathType)
		}
		if p.Modifier != "" {
			obj["modifier"] = string(p.Modifier)
		}
		out[i] = obj
	}
	return out
}

func prefixValue(p Prefix) map[string]any {
	return map[string]any{
		"iri":          p.IRI,
		"abbreviation": p.Abbreviation,
	}
}
