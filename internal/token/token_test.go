package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventnest/internal/model"
)

const secret = "test-secret"

func testUser() *model.User {
	return &model.User{
		ID:    42,
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Role:  model.RoleOrganizer,
	}
}

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue(testUser(), secret)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	uc, err := Parse(tok, secret)
	require.NoError(t, err)

	assert.Equal(t, int64(42), uc.ID)
	assert.Equal(t, "Ada Lovelace", uc.Name)
	assert.Equal(t, "ada@example.com", uc.Email)
	assert.Equal(t, model.RoleOrganizer, uc.Role)
}

func TestParseRejects(t *testing.T) {
	t.Run("empty token", func(t *testing.T) {
		_, err := Parse("", secret)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Parse("not.a.token", secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := Issue(testUser(), secret)
		require.NoError(t, err)

		_, err = Parse(tok, "other-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		claims := Claims{
			UserID: 42,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * TTL)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-TTL)),
			},
		}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = Parse(tok, secret)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong signing method", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 42}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = Parse(tok, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenLifetime(t *testing.T) {
	tok, err := Issue(testUser(), secret)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(tok, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(*Claims)
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, TTL, lifetime)
}
