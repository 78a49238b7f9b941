package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession writes a session with fixed versions.
func createTestSession(t *testing.T, s *Store, id string, seq int64) Session {
	t.Helper()
	sess := Session{
		ID:                id,
		Seq:               seq,
		TranslatorVersion: "test",
		FormatVersion:     "2",
	}
	if err := s.WriteSession(context.Background(), sess); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	return sess
}

// createTestTranslation builds a translation and fails the test on error.
func createTestTranslation(t *testing.T, sessionID string, seq int64, direction, input, output string) Translation {
	t.Helper()
	tr, err := NewTranslation(sessionID, seq, direction, input, false, false, output)
	if err != nil {
		t.Fatalf("NewTranslation() failed: %v", err)
	}
	return tr
}
