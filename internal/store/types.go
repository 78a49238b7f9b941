package store

import (
	"fmt"

	"github.com/roach88/querygraph/internal/vqg"
)

// Direction values stored in translations.direction.
const (
	DirectionToQuery = "to_query"
	DirectionToGraph = "to_graph"
)

// Session groups the translations recorded by one CLI run.
type Session struct {
	ID                string
	Seq               int64
	TranslatorVersion string
	FormatVersion     string
	Settings          map[string]any
}

// Translation is one recorded translation.
type Translation struct {
	ID                      string
	SessionID               string
	Seq                     int64
	Direction               string
	Input                   string
	AddLabelService         bool
	AddLabelServicePrefixes bool
	Output                  string
}

// NewTranslation builds a record and computes its content-addressed id.
func NewTranslation(sessionID string, seq int64, direction, input string, addLabelService, addLabelServicePrefixes bool, output string) (Translation, error) {
	if direction != DirectionToQuery && direction != DirectionToGraph {
		return Translation{}, fmt.Errorf("new translation: unknown direction %q", direction)
	}
	id, err := vqg.TranslationID(direction, input, addLabelService, addLabelServicePrefixes)
	if err != nil {
		return Translation{}, fmt.Errorf("new translation: %w", err)
	}
	return Translation{
		ID:                      id,
		SessionID:               sessionID,
		Seq:                     seq,
		Direction:               direction,
		Input:                   input,
		AddLabelService:         addLabelService,
		AddLabelServicePrefixes: addLabelServicePrefixes,
		Output:                  output,
	}, nil
}
