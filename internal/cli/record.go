package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/querygraph/internal/recorder"
	"github.com/roach88/querygraph/internal/store"
)

// openRecorder opens the translation log at path and starts a session.
// The returned close func must be called when the command is done.
func openRecorder(ctx context.Context, path string, logger *slog.Logger, settings map[string]any) (*recorder.Recorder, func(), error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	rec, err := recorder.New(ctx, st, logger, recorder.WithSettings(settings))
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return rec, func() { st.Close() }, nil
}
