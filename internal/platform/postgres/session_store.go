package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/acharya-api/internal/agent"
)

// SessionStore implements the agent.StateStore interface using PostgreSQL.
type SessionStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewSessionStore creates a new SessionStore.
// It accepts a database handle that should be initialized and managed by the caller.
func NewSessionStore(db DBTX, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		db:     db,
		logger: logger,
	}
}

// Ensure SessionStore implements agent.StateStore
var _ agent.StateStore = (*SessionStore)(nil)

// CreateSession allocates a new session row and returns its ID.
func (s *SessionStore) CreateSession(ctx context.Context, userID string) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO agent_sessions (id, user_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.db.ExecContext(ctx, query, id, userID, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create agent session",
			"user_id", userID,
			"error", err)
		return "", fmt.Errorf("failed to create agent session: %w", MapError(err))
	}

	return id, nil
}

// State returns a snapshot of all keyed values in the session.
func (s *SessionStore) State(ctx context.Context, sessionID string) (map[string]any, error) {
	var exists bool
	checkQuery := `SELECT EXISTS (SELECT 1 FROM agent_sessions WHERE id = $1)`
	if err := s.db.QueryRowContext(ctx, checkQuery, sessionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check agent session: %w", MapError(err))
	}
	if !exists {
		return nil, agent.ErrSessionNotFound
	}

	query := `
		SELECT key, value
		FROM agent_session_state
		WHERE session_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent session state: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	state := make(map[string]any)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan agent session state row: %w", MapError(err))
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			// A row we cannot decode is logged and skipped rather than
			// failing the whole snapshot.
			s.logger.WarnContext(ctx, "skipping undecodable state value",
				"session_id", sessionID,
				"key", key,
				"error", err)
			continue
		}
		state[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read agent session state: %w", MapError(err))
	}

	return state, nil
}

// SetState stores a value under the given key, replacing any previous value.
func (s *SessionStore) SetState(ctx context.Context, sessionID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode state value: %w", err)
	}

	query := `
		INSERT INTO agent_session_state (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query, sessionID, key, raw, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store agent session state",
			"session_id", sessionID,
			"key", key,
			"error", err)
		return fmt.Errorf("failed to store agent session state: %w", MapError(err))
	}

	return nil
}

// DeleteSession removes the session and all of its state. State rows are
// removed by the ON DELETE CASCADE on agent_session_state.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	query := `DELETE FROM agent_sessions WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete agent session: %w", MapError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return agent.ErrSessionNotFound
	}

	return nil
}
