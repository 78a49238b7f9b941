// Package recorder runs translations and logs them to a store.
//
// A Recorder owns one session: it writes the session row on creation and
// stamps each translation with the next logical seq. Recording is
// idempotent per translation id, so re-running the same input only
// advances the clock.
package recorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/querygraph/internal/compose"
	"github.com/roach88/querygraph/internal/store"
	"github.com/roach88/querygraph/internal/translate"
	"github.com/roach88/querygraph/internal/vqg"
)

// SeqSource yields strictly increasing sequence numbers.
type SeqSource interface {
	Next() int64
}

// Recorder translates and records within one session.
type Recorder struct {
	store     *store.Store
	clock     SeqSource
	sessionID string
	logger    *slog.Logger
}

// Option configures a Recorder.
type Option func(*config)

type config struct {
	gen      SessionIDGenerator
	clock    SeqSource
	settings map[string]any
}

// WithSessionIDGenerator overrides the UUIDv7 session id generator.
func WithSessionIDGenerator(gen SessionIDGenerator) Option {
	return func(c *config) { c.gen = gen }
}

// WithClock overrides the clock. By default the clock resumes after the
// store's last seq.
func WithClock(clock SeqSource) Option {
	return func(c *config) { c.clock = clock }
}

// WithSettings attaches settings to the session row.
func WithSettings(settings map[string]any) Option {
	return func(c *config) { c.settings = settings }
}

// New starts a session on st.
func New(ctx context.Context, st *store.Store, logger *slog.Logger, opts ...Option) (*Recorder, error) {
	cfg := config{gen: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		last, err := st.LastSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
		cfg.clock = NewClockAt(last)
	}

	sess := store.Session{
		ID:                cfg.gen.Generate(),
		Seq:               cfg.clock.Next(),
		TranslatorVersion: vqg.TranslatorVersion,
		FormatVersion:     vqg.FormatVersion,
		Settings:          cfg.settings,
	}
	if err := st.WriteSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	logger.Debug("session started", "session_id", sess.ID, "seq", sess.Seq)

	return &Recorder{
		store:     st,
		clock:     cfg.clock,
		sessionID: sess.ID,
		logger:    logger,
	}, nil
}

// SessionID returns the id of the recorder's session.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// ToQuery renders graphJSON as SPARQL and records the translation.
func (r *Recorder) ToQuery(ctx context.Context, graphJSON string, opts compose.Options) (string, error) {
	out := translate.GraphToQuery(graphJSON, opts.AddLabelService, opts.AddLabelServicePrefixes)
	return out, r.record(ctx, store.DirectionToQuery, graphJSON, opts, out)
}

// ToGraph converts query text to graph JSON and records the translation.
func (r *Recorder) ToGraph(ctx context.Context, query string) (string, error) {
	out := translate.QueryToGraph(query)
	return out, r.record(ctx, store.DirectionToGraph, query, compose.Options{}, out)
}

func (r *Recorder) record(ctx context.Context, direction, input string, opts compose.Options, output string) error {
	tr, err := store.NewTranslation(r.sessionID, r.clock.Next(), direction, input,
		opts.AddLabelService, opts.AddLabelServicePrefixes, output)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	inserted, err := r.store.WriteTranslation(ctx, tr)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	r.logger.Debug("translation recorded",
		"id", tr.ID,
		"direction", direction,
		"seq", tr.Seq,
		"inserted", inserted)
	return nil
}

// Retranslate re-runs a recorded translation with the current code.
// It is the store.TranslateFunc used by replay.
func Retranslate(tr store.Translation) string {
	switch tr.Direction {
	case store.DirectionToQuery:
		return translate.GraphToQuery(tr.Input, tr.AddLabelService, tr.AddLabelServicePrefixes)
	case store.DirectionToGraph:
		return translate.QueryToGraph(tr.Input)
	default:
		return ""
	}
}
