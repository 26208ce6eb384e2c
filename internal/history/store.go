// Package history is the local transcript cache. It mirrors whatever the
// backend last returned so session switching can degrade to cached
// messages when a fetch fails.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"agentic/internal/session"
	"agentic/pkg/db"
	"agentic/pkg/migration"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type Store struct {
	db *db.DB
}

// Open opens (or creates) the cache database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}

	if err := migration.NewRunner(database.Write(), migrationFS).Run(); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}

	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PutMessages replaces the cached transcript for a session.
func (s *Store) PutMessages(sessionID string, messages []session.ChatMessage) error {
	return s.db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
			return err
		}
		for i, m := range messages {
			isError := 0
			if m.IsError {
				isError = 1
			}
			_, err := tx.Exec(
				`INSERT INTO messages (session_id, seq, role, content, is_error, status) VALUES (?, ?, ?, ?, ?, ?)`,
				sessionID, i, m.Role, m.Content, isError, string(m.Status),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Messages returns the cached transcript for a session, oldest first.
func (s *Store) Messages(sessionID string) ([]session.ChatMessage, error) {
	rows, err := s.db.Read().Query(
		`SELECT role, content, is_error, status FROM messages WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []session.ChatMessage
	for rows.Next() {
		var m session.ChatMessage
		var isError int
		var status string
		if err := rows.Scan(&m.Role, &m.Content, &isError, &status); err != nil {
			return nil, err
		}
		m.IsError = isError != 0
		m.Status = session.Status(status)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// PutSessions replaces the cached session list for an agent.
func (s *Store) PutSessions(agentID string, sessions []session.Session) error {
	return s.db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM sessions WHERE agent_id = ?`, agentID); err != nil {
			return err
		}
		for _, sess := range sessions {
			_, err := tx.Exec(
				`INSERT OR REPLACE INTO sessions (id, agent_id, title, created_at) VALUES (?, ?, ?, ?)`,
				sess.ID, agentID, sess.Title, sess.CreatedAt.Unix(),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Sessions returns the cached session list for an agent, newest first.
func (s *Store) Sessions(agentID string) ([]session.Session, error) {
	rows, err := s.db.Read().Query(
		`SELECT id, title, created_at FROM sessions WHERE agent_id = ? ORDER BY created_at DESC`,
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var sess session.Session
		var createdAt int64
		if err := rows.Scan(&sess.ID, &sess.Title, &createdAt); err != nil {
			return nil, err
		}
		if createdAt > 0 {
			sess.CreatedAt = timeFromUnix(createdAt)
		}
		sess.Status = session.StatusConfirmed
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func timeFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// DeleteSession drops a session and its transcript from the cache.
func (s *Store) DeleteSession(sessionID string) error {
	return s.db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
		return err
	})
}
