package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jorge-Marco5/go-api-template/internal/apperr"
	"github.com/Jorge-Marco5/go-api-template/internal/domain"
	"github.com/Jorge-Marco5/go-api-template/internal/repository"
	"github.com/Jorge-Marco5/go-api-template/internal/telemetry"
	"github.com/Jorge-Marco5/go-api-template/internal/token"
)

// LoginResult carries everything a login produces. The handler is
// responsible for turning the tokens into cookies.
type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// RegisterResult carries the created user and its first access token.
// Registration never creates a session; only login starts a refresh cycle.
type RegisterResult struct {
	User        *domain.User
	AccessToken string
}

// AuthService orchestrates registration, login, refresh and logout.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*RegisterResult, error)
	Login(ctx context.Context, email, password, ip string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	PurgeExpiredSessions(ctx context.Context) error
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	codec       *token.Codec
	bcryptCost  int
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	codec *token.Codec,
	bcryptCost int,
) AuthService {
	if bcryptCost < 10 {
		bcryptCost = 10
	}
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		codec:       codec,
		bcryptCost:  bcryptCost,
	}
}

// Register creates a user with role USER and returns it with a fresh
// access token. The email unique constraint is the real arbiter of
// duplicates; the pre-check only gives a friendlier fast path.
func (s *authService) Register(ctx context.Context, email, password, name string) (*RegisterResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()
	span.SetAttributes(attribute.String("email", email))

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost the race to a concurrent registration
			return nil, apperr.Conflict("email already registered")
		}
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}

	accessToken, err := s.codec.IssueAccessToken(user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	return &RegisterResult{User: user, AccessToken: accessToken}, nil
}

// Login verifies credentials and opens a refresh cycle: it issues both
// tokens and persists a session row binding the refresh token to the
// user and the caller's IP. Unknown email and wrong password produce
// the same error.
func (s *authService) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()
	span.SetAttributes(attribute.String("email", email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.InvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.InvalidCredentials()
	}

	if !user.IsActive {
		return nil, apperr.Unauthenticated("account is inactive")
	}

	accessToken, err := s.codec.IssueAccessToken(user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	refreshToken, err := s.codec.IssueRefreshToken(user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	session := &domain.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		IPAddress:    ip,
		ExpiresAt:    time.Now().Add(s.codec.RefreshTTL()),
		CreatedAt:    time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a refresh token for a new access token. The
// session is read, never mutated: the refresh token is not rotated and
// its expiry is not extended, so a presented token stays valid until
// its own expiry or an explicit logout.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.refresh")
	defer span.End()

	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		span.RecordError(err)
		return "", apperr.Internal(err)
	}
	if session == nil || time.Now().After(session.ExpiresAt) {
		return "", apperr.Unauthenticated("invalid or expired token")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		span.RecordError(err)
		return "", apperr.Internal(err)
	}
	if user == nil {
		return "", apperr.NotFound("user not found")
	}
	if !user.IsActive {
		return "", apperr.Unauthenticated("account is inactive")
	}

	accessToken, err := s.codec.IssueAccessToken(user)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	return accessToken, nil
}

// Logout destroys every session the user has, a global sign-out across
// all devices.
func (s *authService) Logout(ctx context.Context, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		span.RecordError(err)
		return apperr.Internal(err)
	}
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry. Expired rows
// are already rejected on read; this reclaims the storage.
func (s *authService) PurgeExpiredSessions(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.purge_expired_sessions")
	defer span.End()

	if err := s.sessionRepo.DeleteExpired(ctx); err != nil {
		span.RecordError(err)
		return apperr.Internal(err)
	}
	return nil
}

// GetProfile returns the user without its password hash.
func (s *authService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.get_profile")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}
