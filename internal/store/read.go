package store

import (
	"context"
	"database/sql"
	"fmt"
)

const translationColumns = `id, session_id, seq, direction, input, add_label_service, add_label_service_prefixes, output`

// ReadTranslations returns every recorded translation in log order.
// Returns an empty slice (not nil) for an empty log.
func (s *Store) ReadTranslations(ctx context.Context) ([]Translation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+translationColumns+`
		FROM translations
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	return collectTranslations(rows)
}

// ReadSessionTranslations returns the translations of one session in
// log order.
func (s *Store) ReadSessionTranslations(ctx context.Context, sessionID string) ([]Translation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+translationColumns+`
		FROM translations
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session translations: %w", err)
	}
	return collectTranslations(rows)
}

// ReadTranslation returns the translation with the given id.
// Returns sql.ErrNoRows (wrapped) when it does not exist.
func (s *Store) ReadTranslation(ctx context.Context, id string) (Translation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+translationColumns+`
		FROM translations
		WHERE id = ?
	`, id)
	tr, err := scanTranslation(row)
	if err != nil {
		return Translation{}, fmt.Errorf("read translation %s: %w", id, err)
	}
	return tr, nil
}

// ReadSessions returns every session in log order.
func (s *Store) ReadSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, translator_version, format_version, settings
		FROM sessions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var (
			sess     Session
			settings string
		)
		if err := rows.Scan(&sess.ID, &sess.Seq, &sess.TranslatorVersion, &sess.FormatVersion, &settings); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.Settings, err = unmarshalSettings(settings); err != nil {
			return nil, fmt.Errorf("session %s: %w", sess.ID, err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTranslation(row scanner) (Translation, error) {
	var (
		tr                    Translation
		labels, labelPrefixes int
	)
	err := row.Scan(
		&tr.ID,
		&tr.SessionID,
		&tr.Seq,
		&tr.Direction,
		&tr.Input,
		&labels,
		&labelPrefixes,
		&tr.Output,
	)
	if err != nil {
		return Translation{}, err
	}
	tr.AddLabelService = labels != 0
	tr.AddLabelServicePrefixes = labelPrefixes != 0
	return tr, nil
}

func collectTranslations(rows *sql.Rows) ([]Translation, error) {
	defer rows.Close()

	translations := []Translation{}
	for rows.Next() {
		tr, err := scanTranslation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		translations = append(translations, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return translations, nil
}
