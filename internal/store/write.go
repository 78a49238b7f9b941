package store

import (
	"context"
	"fmt"
)

// WriteSession inserts a session record. Duplicate ids are ignored.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	settings, err := marshalSettings(sess.Settings)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, seq, translator_version, format_version, settings)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.Seq,
		sess.TranslatorVersion,
		sess.FormatVersion,
		settings,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteTranslation inserts a translation record and reports whether a
// new row was written. A translation with the same id is left untouched.
// The referenced session must exist.
func (s *Store) WriteTranslation(ctx context.Context, tr Translation) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO translations
		(id, session_id, seq, direction, input, add_label_service, add_label_service_prefixes, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		tr.ID,
		tr.SessionID,
		tr.Seq,
		tr.Direction,
		tr.Input,
		boolToInt(tr.AddLabelService),
		boolToInt(tr.AddLabelServicePrefixes),
		tr.Output,
	)
	if err != nil {
		return false, fmt.Errorf("write translation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write translation: rows affected: %w", err)
	}
	return n > 0, nil
}
