package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jorge-Marco5/go-api-template/internal/domain"
)

// ErrDuplicate is returned when a unique constraint is violated. The
// store constraint is the source of truth for email and refresh token
// uniqueness; concurrent writers race safely against it.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID, nil when absent
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail retrieves a user by email, nil when absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// List retrieves a page of users plus the total count
	List(ctx context.Context, offset, limit int) ([]*domain.User, int, error)
	// Update updates a user
	Update(ctx context.Context, user *domain.User) error
	// Delete deletes a user, reporting whether a row existed
	Delete(ctx context.Context, id string) (bool, error)
	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	// Create creates a new session
	Create(ctx context.Context, session *domain.Session) error
	// GetByRefreshToken retrieves a session by refresh token, nil when absent
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	// DeleteByUserID deletes all sessions for a user
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired deletes all expired sessions
	DeleteExpired(ctx context.Context) error
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
