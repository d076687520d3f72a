package store

import (
	"fmt"
	"log/slog"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
	"github.com/goccy/go-json"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func validateSession(session *models.Session) error {
	if session == nil {
		return models.ErrNilSession
	}
	if session.ID == "" {
		return models.ErrEmptyChannelKey
	}
	if session.State == "" {
		return models.ErrEmptySessionState
	}
	return nil
}

// encodeSession renders the JSON columns of a session row.
func encodeSession(session *models.Session) (profileJSON, historyJSON string, err error) {
	p, err := json.Marshal(session.Profile)
	if err != nil {
		return "", "", fmt.Errorf("marshal profile: %w", err)
	}
	h := []byte("[]")
	if len(session.History) > 0 {
		if h, err = json.Marshal(session.History); err != nil {
			return "", "", fmt.Errorf("marshal history: %w", err)
		}
	}
	return string(p), string(h), nil
}

// scanSession reads one chat_sessions row. A corrupt history column is
// dropped rather than failing the read; a corrupt profile is an error.
func scanSession(row rowScanner) (*models.Session, error) {
	var (
		sess                     models.Session
		state                    string
		profileJSON, historyJSON []byte
	)
	if err := row.Scan(&sess.ID, &state, &sess.Language, &profileJSON, &historyJSON, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return nil, err
	}
	sess.State = models.StateType(state)
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &sess.Profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile for %s: %w", sess.ID, err)
		}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &sess.History); err != nil {
			slog.Warn("store.scanSession: dropping unreadable history", "sessionID", sess.ID, "error", err)
			sess.History = nil
		}
	}
	if len(sess.History) == 0 {
		sess.History = nil
	}
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.UpdatedAt = sess.UpdatedAt.UTC()
	return &sess, nil
}
