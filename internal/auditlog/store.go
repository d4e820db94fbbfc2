// Package auditlog provides PostgreSQL-backed storage for enforcement
// actions. Each record captures which message was deleted, whose it was,
// which keyword triggered the deletion, and where in the probation window
// the sender was.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store manages enforcement action records in PostgreSQL.
type Store struct {
	db *sql.DB
}

// Action is a single enforcement action to be persisted.
type Action struct {
	ID        string // UUID assigned by the webhook receiver
	ChatID    int64
	UserID    int64
	MessageID int64
	Keyword   string
	Plural    bool
	SeenCount int64
	Preview   string // truncated text preview, never the full message
}

// NewStore creates an audit log store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts an enforcement action. The keyword is required: a record
// without one would mean a deletion with no cause, which the decision
// engine never produces.
func (s *Store) Create(ctx context.Context, action *Action) error {
	if action.ID == "" {
		return fmt.Errorf("auditlog: missing action id")
	}
	if action.Keyword == "" {
		return fmt.Errorf("auditlog: missing keyword for action %s", action.ID)
	}

	const query = `
		INSERT INTO moderation_actions (id, chat_id, user_id, message_id, keyword, plural, seen_count, preview)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		action.ID,
		action.ChatID,
		action.UserID,
		action.MessageID,
		action.Keyword,
		action.Plural,
		action.SeenCount,
		action.Preview,
	)
	if err != nil {
		return fmt.Errorf("auditlog: insert %s: %w", action.ID, err)
	}
	return nil
}

// CountRecentByUser returns how many enforcement actions were recorded
// against a user within the given window. Useful for operator tooling
// (e.g. spotting repeat offenders who re-enter probation via new accounts).
func (s *Store) CountRecentByUser(ctx context.Context, userID int64, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM moderation_actions
		WHERE user_id = $1
		  AND created_at >= NOW() - $2::interval`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("auditlog: count recent: %w", err)
	}
	return count, nil
}
