package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/acharya-api/internal/agent"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"
)

// ErrDuplicateSession is returned when a session with the same ID already exists.
var ErrDuplicateSession = errors.New("session already exists")

// MapError maps a database error to an appropriate application error.
// It wraps the original error to preserve context and provide better
// debugging information. All database operations in this package route
// their errors through it.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", agent.ErrSessionNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", ErrDuplicateSession, err)
		case foreignKeyViolationCode:
			// State rows reference agent_sessions; a violation means the
			// session is gone.
			return fmt.Errorf("%w: %v", agent.ErrSessionNotFound, err)
		}
	}

	return err
}
