package conversation

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SaveDraft stores the composer text for a session so switching away and
// back restores it. Empty text deletes the draft.
func (s *Store) SaveDraft(ctx context.Context, sessionID, text string) error {
	if sessionID == "" {
		return nil
	}
	if text == "" {
		_, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE session_id = ?`, sessionID)
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts(session_id, text, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at`,
		sessionID, text, time.Now().Unix())
	return err
}

// Draft returns the saved composer text for a session, or "" when none
// exists.
func (s *Store) Draft(ctx context.Context, sessionID string) (string, error) {
	var text string
	row := s.db.QueryRowContext(ctx, `SELECT text FROM drafts WHERE session_id = ?`, sessionID)
	if err := row.Scan(&text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return text, nil
}
