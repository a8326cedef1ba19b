package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Jorge-Marco5/go-api-template/internal/apperr"
	"github.com/Jorge-Marco5/go-api-template/internal/domain"
)

// Codec signs and verifies access and refresh tokens. Both token types
// carry the same claim shape and differ only in lifetime; refresh
// tokens are additionally checked against the session store by the
// auth service, not here.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec creates a Codec with the given HMAC secret and lifetimes.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// IssueAccessToken signs a short-lived token for the user.
func (c *Codec) IssueAccessToken(user *domain.User) (string, error) {
	return c.sign(user, c.accessTTL)
}

// IssueRefreshToken signs a long-lived token for the user.
func (c *Codec) IssueRefreshToken(user *domain.User) (string, error) {
	return c.sign(user, c.refreshTTL)
}

func (c *Codec) sign(user *domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	// The jti keeps concurrently issued tokens distinct; refresh tokens
	// must be unique because the session store keys on them.
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       user.ID,
		"jti":       uuid.New().String(),
		"user_id":   user.ID,
		"email":     user.Email,
		"role":      string(user.Role),
		"is_active": user.IsActive,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns its claims. Malformed
// tokens, bad signatures and expired tokens all collapse to the same
// 401 error; callers cannot distinguish them.
func (c *Codec) Verify(tokenString string) (*domain.Claims, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !t.Valid {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}

	mapClaims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}

	userID, _ := mapClaims["user_id"].(string)
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	isActive, _ := mapClaims["is_active"].(bool)
	if userID == "" {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}

	return &domain.Claims{
		UserID:   userID,
		Email:    email,
		Role:     domain.Role(role),
		IsActive: isActive,
	}, nil
}
