package store

import (
	"context"
	"fmt"
)

// TranslateFunc re-runs a recorded translation and returns its output.
type TranslateFunc func(tr Translation) string

// Mismatch is a recorded translation whose replayed output differs.
type Mismatch struct {
	Translation Translation
	Got         string
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	Total      int
	Mismatches []Mismatch
}

// Deterministic reports whether every replayed output matched.
func (r *ReplayResult) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// Replay feeds every recorded translation, in log order, through fn and
// compares the result with the recorded output. It stops early only
// when ctx is cancelled.
func (s *Store) Replay(ctx context.Context, fn TranslateFunc) (*ReplayResult, error) {
	translations, err := s.ReadTranslations(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	result := &ReplayResult{Mismatches: []Mismatch{}}
	for _, tr := range translations {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("replay: %w", err)
		}
		result.Total++
		if got := fn(tr); got != tr.Output {
			result.Mismatches = append(result.Mismatches, Mismatch{Translation: tr, Got: got})
		}
	}
	return result, nil
}
