package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Jorge-Marco5/go-api-template/internal/apperr"
	"github.com/Jorge-Marco5/go-api-template/internal/domain"
	"github.com/Jorge-Marco5/go-api-template/internal/repository"
	"github.com/Jorge-Marco5/go-api-template/internal/token"
)

// mockUserRepository is an in-memory implementation of UserRepository
type mockUserRepository struct {
	users       map[string]*domain.User
	emailIndex  map[string]*domain.User
	createError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:      make(map[string]*domain.User),
		emailIndex: make(map[string]*domain.User),
	}
}

func (r *mockUserRepository) add(user *domain.User) {
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user
}

func (r *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if r.createError != nil {
		return r.createError
	}
	if _, exists := r.emailIndex[user.Email]; exists {
		return repository.ErrDuplicate
	}
	r.add(user)
	return nil
}

func (r *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users[id], nil
}

func (r *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.emailIndex[email], nil
}

func (r *mockUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, int, error) {
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	count := len(all)
	if offset >= count {
		return nil, count, nil
	}
	end := offset + limit
	if end > count {
		end = count
	}
	return all[offset:end], count, nil
}

func (r *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if existing, ok := r.emailIndex[user.Email]; ok && existing.ID != user.ID {
		return repository.ErrDuplicate
	}
	if old := r.users[user.ID]; old != nil && old.Email != user.Email {
		delete(r.emailIndex, old.Email)
	}
	r.add(user)
	return nil
}

func (r *mockUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	user := r.users[id]
	if user == nil {
		return false, nil
	}
	delete(r.emailIndex, user.Email)
	delete(r.users, id)
	return true, nil
}

func (r *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, exists := r.emailIndex[email]
	return exists, nil
}

// mockSessionRepository is an in-memory implementation of SessionRepository
type mockSessionRepository struct {
	sessions          map[string]*domain.Session
	refreshTokenIndex map[string]*domain.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{
		sessions:          make(map[string]*domain.Session),
		refreshTokenIndex: make(map[string]*domain.Session),
	}
}

func (r *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if _, exists := r.refreshTokenIndex[session.RefreshToken]; exists {
		return repository.ErrDuplicate
	}
	r.sessions[session.ID] = session
	r.refreshTokenIndex[session.RefreshToken] = session
	return nil
}

func (r *mockSessionRepository) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	return r.refreshTokenIndex[token], nil
}

func (r *mockSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.refreshTokenIndex, session.RefreshToken)
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *mockSessionRepository) DeleteExpired(ctx context.Context) error {
	for id, session := range r.sessions {
		if time.Now().After(session.ExpiresAt) {
			delete(r.refreshTokenIndex, session.RefreshToken)
			delete(r.sessions, id)
		}
	}
	return nil
}

func newTestCodec() *token.Codec {
	return token.NewCodec("test-secret-key", 15*time.Minute, 168*time.Hour)
}

func seedUser(repo *mockUserRepository, email, password string, active bool) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &domain.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Test User",
		Role:         domain.RoleUser,
		IsActive:     active,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	repo.add(user)
	return user
}

func TestAuthService_Register(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	codec := newTestCodec()
	svc := NewAuthService(userRepo, sessionRepo, codec, 10)

	t.Run("successful registration", func(t *testing.T) {
		result, err := svc.Register(context.Background(), "new@example.com", "password123", "New User")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		if result.AccessToken == "" {
			t.Error("Register() AccessToken is empty")
		}

		// The returned token must decode back to the created user.
		claims, err := codec.Verify(result.AccessToken)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if claims.UserID != result.User.ID {
			t.Errorf("token UserID = %v, want %v", claims.UserID, result.User.ID)
		}
		if claims.Email != result.User.Email {
			t.Errorf("token Email = %v, want %v", claims.Email, result.User.Email)
		}
		if claims.Role != domain.RoleUser {
			t.Errorf("token Role = %v, want %v", claims.Role, domain.RoleUser)
		}

		if result.User.Email != "new@example.com" {
			t.Errorf("Register() User.Email = %v, want new@example.com", result.User.Email)
		}
		if result.User.Role != domain.RoleUser {
			t.Errorf("Register() User.Role = %v, want %v", result.User.Role, domain.RoleUser)
		}
		if !result.User.IsActive {
			t.Error("Register() User.IsActive = false, want true")
		}
		if result.User.PasswordHash == "password123" {
			t.Error("Register() stored the plaintext password")
		}
	})

	t.Run("registration opens no session", func(t *testing.T) {
		if len(sessionRepo.sessions) != 0 {
			t.Errorf("Register() created %d sessions, want 0", len(sessionRepo.sessions))
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(context.Background(), "new@example.com", "password456", "Other User")
		if !apperr.IsKind(err, apperr.KindConflict) {
			t.Errorf("Register() error = %v, want conflict", err)
		}
	})

	t.Run("duplicate race at the store", func(t *testing.T) {
		// The pre-check passes but the insert hits the unique constraint.
		racing := newMockUserRepository()
		racing.createError = repository.ErrDuplicate
		racingSvc := NewAuthService(racing, sessionRepo, newTestCodec(), 10)

		_, err := racingSvc.Register(context.Background(), "race@example.com", "password123", "Racer")
		if !apperr.IsKind(err, apperr.KindConflict) {
			t.Errorf("Register() error = %v, want conflict", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	codec := newTestCodec()
	svc := NewAuthService(userRepo, sessionRepo, codec, 10)

	user := seedUser(userRepo, "login@example.com", "password123", true)
	seedUser(userRepo, "inactive@example.com", "password123", false)

	t.Run("successful login persists a session", func(t *testing.T) {
		result, err := svc.Login(context.Background(), "login@example.com", "password123", "203.0.113.7")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if result.AccessToken == "" || result.RefreshToken == "" {
			t.Fatal("Login() returned empty tokens")
		}

		session, _ := sessionRepo.GetByRefreshToken(context.Background(), result.RefreshToken)
		if session == nil {
			t.Fatal("Login() did not persist a session for the refresh token")
		}
		if session.UserID != user.ID {
			t.Errorf("session.UserID = %v, want %v", session.UserID, user.ID)
		}
		if session.IPAddress != "203.0.113.7" {
			t.Errorf("session.IPAddress = %v, want 203.0.113.7", session.IPAddress)
		}
		if !session.ExpiresAt.After(time.Now().Add(codec.RefreshTTL() - time.Minute)) {
			t.Errorf("session.ExpiresAt = %v, want about %v out", session.ExpiresAt, codec.RefreshTTL())
		}
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, errWrong := svc.Login(context.Background(), "login@example.com", "badpassword", "203.0.113.7")
		_, errUnknown := svc.Login(context.Background(), "ghost@example.com", "password123", "203.0.113.7")

		if !apperr.IsKind(errWrong, apperr.KindInvalidCredentials) {
			t.Errorf("wrong password error = %v, want invalid credentials", errWrong)
		}
		if !apperr.IsKind(errUnknown, apperr.KindInvalidCredentials) {
			t.Errorf("unknown email error = %v, want invalid credentials", errUnknown)
		}
		if errWrong.Error() != errUnknown.Error() {
			t.Errorf("error messages differ: %q vs %q", errWrong.Error(), errUnknown.Error())
		}
	})

	t.Run("inactive account", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "inactive@example.com", "password123", "203.0.113.7")
		if !apperr.IsKind(err, apperr.KindUnauthenticated) {
			t.Errorf("Login() error = %v, want unauthenticated", err)
		}
	})
}

func TestAuthService_Refresh(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	codec := newTestCodec()
	svc := NewAuthService(userRepo, sessionRepo, codec, 10)

	seedUser(userRepo, "refresh@example.com", "password123", true)

	result, err := svc.Login(context.Background(), "refresh@example.com", "password123", "203.0.113.7")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("valid refresh returns a new access token", func(t *testing.T) {
		accessToken, err := svc.Refresh(context.Background(), result.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if accessToken == "" {
			t.Fatal("Refresh() returned an empty token")
		}

		claims, err := codec.Verify(accessToken)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if claims.Email != "refresh@example.com" {
			t.Errorf("claims.Email = %v, want refresh@example.com", claims.Email)
		}
	})

	t.Run("refresh token is not rotated", func(t *testing.T) {
		if _, err := svc.Refresh(context.Background(), result.RefreshToken); err != nil {
			t.Fatalf("first Refresh() error = %v", err)
		}
		if _, err := svc.Refresh(context.Background(), result.RefreshToken); err != nil {
			t.Errorf("second Refresh() with same token error = %v, want nil", err)
		}
	})

	t.Run("unknown refresh token", func(t *testing.T) {
		_, err := svc.Refresh(context.Background(), "no-such-token")
		if !apperr.IsKind(err, apperr.KindUnauthenticated) {
			t.Errorf("Refresh() error = %v, want unauthenticated", err)
		}
	})

	t.Run("expired session", func(t *testing.T) {
		session, _ := sessionRepo.GetByRefreshToken(context.Background(), result.RefreshToken)
		session.ExpiresAt = time.Now().Add(-time.Minute)

		_, err := svc.Refresh(context.Background(), result.RefreshToken)
		if !apperr.IsKind(err, apperr.KindUnauthenticated) {
			t.Errorf("Refresh() error = %v, want unauthenticated", err)
		}
		session.ExpiresAt = time.Now().Add(time.Hour)
	})

	t.Run("deactivated user", func(t *testing.T) {
		user := userRepo.emailIndex["refresh@example.com"]
		user.IsActive = false
		defer func() { user.IsActive = true }()

		_, err := svc.Refresh(context.Background(), result.RefreshToken)
		if !apperr.IsKind(err, apperr.KindUnauthenticated) {
			t.Errorf("Refresh() error = %v, want unauthenticated", err)
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	svc := NewAuthService(userRepo, sessionRepo, newTestCodec(), 10)

	user := seedUser(userRepo, "logout@example.com", "password123", true)

	// Two logins from two devices.
	first, err := svc.Login(context.Background(), "logout@example.com", "password123", "203.0.113.7")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	second, err := svc.Login(context.Background(), "logout@example.com", "password123", "198.51.100.4")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Fatal("two logins issued the same refresh token")
	}

	if err := svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	for _, tok := range []string{first.RefreshToken, second.RefreshToken} {
		if _, err := svc.Refresh(context.Background(), tok); !apperr.IsKind(err, apperr.KindUnauthenticated) {
			t.Errorf("Refresh() after logout error = %v, want unauthenticated", err)
		}
	}

	t.Run("logout with no sessions is a no-op", func(t *testing.T) {
		if err := svc.Logout(context.Background(), user.ID); err != nil {
			t.Errorf("Logout() error = %v, want nil", err)
		}
	})
}

func TestAuthService_PurgeExpiredSessions(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	svc := NewAuthService(userRepo, sessionRepo, newTestCodec(), 10)

	seedUser(userRepo, "purge@example.com", "password123", true)

	live, err := svc.Login(context.Background(), "purge@example.com", "password123", "203.0.113.7")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	stale, err := svc.Login(context.Background(), "purge@example.com", "password123", "198.51.100.4")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	sessionRepo.refreshTokenIndex[stale.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)

	if err := svc.PurgeExpiredSessions(context.Background()); err != nil {
		t.Fatalf("PurgeExpiredSessions() error = %v", err)
	}

	if session, _ := sessionRepo.GetByRefreshToken(context.Background(), stale.RefreshToken); session != nil {
		t.Error("expired session survived the purge")
	}
	if session, _ := sessionRepo.GetByRefreshToken(context.Background(), live.RefreshToken); session == nil {
		t.Error("live session was purged")
	}
}

func TestAuthService_GetProfile(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	svc := NewAuthService(userRepo, sessionRepo, newTestCodec(), 10)

	user := seedUser(userRepo, "profile@example.com", "password123", true)

	t.Run("existing user", func(t *testing.T) {
		got, err := svc.GetProfile(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("GetProfile() error = %v", err)
		}
		if got.Email != user.Email {
			t.Errorf("GetProfile() Email = %v, want %v", got.Email, user.Email)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.GetProfile(context.Background(), "no-such-id")
		if !apperr.IsKind(err, apperr.KindNotFound) {
			t.Errorf("GetProfile() error = %v, want not found", err)
		}
	})
}
