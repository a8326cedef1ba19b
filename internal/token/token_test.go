package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jorge-Marco5/go-api-template/internal/apperr"
	"github.com/Jorge-Marco5/go-api-template/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       "user-123",
		Email:    "test@example.com",
		Role:     domain.RoleUser,
		IsActive: true,
	}
}

func TestCodec_IssueAndVerify(t *testing.T) {
	codec := NewCodec("test-secret-key", 15*time.Minute, 168*time.Hour)
	user := testUser()

	t.Run("access token round trip", func(t *testing.T) {
		signed, err := codec.IssueAccessToken(user)
		require.NoError(t, err)
		require.NotEmpty(t, signed)

		claims, err := codec.Verify(signed)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
		assert.Equal(t, domain.RoleUser, claims.Role)
		assert.True(t, claims.IsActive)
	})

	t.Run("refresh token round trip", func(t *testing.T) {
		signed, err := codec.IssueRefreshToken(user)
		require.NoError(t, err)

		claims, err := codec.Verify(signed)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("back-to-back issuance yields distinct tokens", func(t *testing.T) {
		// The session store keys on the refresh token, so two logins in
		// the same second must not collide.
		first, err := codec.IssueRefreshToken(user)
		require.NoError(t, err)
		second, err := codec.IssueRefreshToken(user)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		for _, signed := range []string{first, second} {
			claims, err := codec.Verify(signed)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
		}
	})

	t.Run("access and refresh tokens differ", func(t *testing.T) {
		access, err := codec.IssueAccessToken(user)
		require.NoError(t, err)
		refresh, err := codec.IssueRefreshToken(user)
		require.NoError(t, err)
		assert.NotEqual(t, access, refresh)
	})
}

func TestCodec_Verify_Failures(t *testing.T) {
	codec := NewCodec("test-secret-key", 15*time.Minute, 168*time.Hour)
	user := testUser()

	t.Run("garbage token", func(t *testing.T) {
		_, err := codec.Verify("not-a-jwt")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewCodec("different-secret", 15*time.Minute, 168*time.Hour)
		signed, err := other.IssueAccessToken(user)
		require.NoError(t, err)

		_, err = codec.Verify(signed)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewCodec("test-secret-key", -1*time.Minute, 168*time.Hour)
		signed, err := short.IssueAccessToken(user)
		require.NoError(t, err)

		_, err = codec.Verify(signed)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
	})

	t.Run("all failures share one message", func(t *testing.T) {
		other := NewCodec("different-secret", 15*time.Minute, 168*time.Hour)
		forged, _ := other.IssueAccessToken(user)

		_, errGarbage := codec.Verify("garbage")
		_, errForged := codec.Verify(forged)
		assert.Equal(t, errGarbage.Error(), errForged.Error())
	})
}

func TestNewCodec_Defaults(t *testing.T) {
	codec := NewCodec("secret", 0, 0)
	assert.Equal(t, 15*time.Minute, codec.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, codec.RefreshTTL())
}
