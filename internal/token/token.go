// Package token issues and validates the bearer tokens carried by every
// authenticated request.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventnest/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrNoToken      = errors.New("no token provided")
)

// TTL is how long an issued token stays valid.
const TTL = 7 * 24 * time.Hour

type Claims struct {
	UserID int64      `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserContext is the authenticated caller as seen by handlers.
type UserContext struct {
	ID    int64
	Name  string
	Email string
	Role  model.Role
}

// Issue signs a token carrying the user's id, name, email and role.
func Issue(u *model.User, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse validates a token string and returns the caller it identifies.
func Parse(tokenString, secret string) (*UserContext, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}

	return &UserContext{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
