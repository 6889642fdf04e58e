// Package jwtauth emite y verifica tokens HS256 respaldados por una sesión (jti).
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pawpals/internal/domain/users"
	"pawpals/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("invalid or expired session")
	ErrUserInactive   = errors.New("user is not active")
)

// ActiveFunc informa si el usuario sigue activo; nil => no se revisa.
type ActiveFunc func(ctx context.Context, userID string) (bool, error)

type Manager struct {
	secret   []byte
	ttl      time.Duration
	sessions auth.SessionStore
	active   ActiveFunc
	now      func() time.Time
}

func NewManager(secret string, ttl time.Duration, sessions auth.SessionStore) *Manager {
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		sessions: sessions,
		now:      time.Now,
	}
}

// WithActiveCheck se setea después de construir el servicio de usuarios.
func (m *Manager) WithActiveCheck(fn ActiveFunc) *Manager {
	m.active = fn
	return m
}

func (m *Manager) Issue(ctx context.Context, userID string) (users.Token, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return users.Token{}, fmt.Errorf("failed to sign token: %w", err)
	}
	if err := m.sessions.Save(ctx, claims.ID, userID, m.ttl); err != nil {
		return users.Token{}, err
	}
	return users.Token{
		Value:     signed,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	return m.sessions.Delete(ctx, sessionID)
}

// Verify valida firma y expiración, que la sesión exista y que el usuario siga activo.
func (m *Manager) Verify(ctx context.Context, token string) (auth.Claims, error) {
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	uid, err := m.sessions.Lookup(ctx, claims.ID)
	if errors.Is(err, auth.ErrSessionNotFound) {
		return auth.Claims{}, ErrSessionExpired
	}
	if err != nil {
		return auth.Claims{}, err
	}
	if uid != claims.Subject {
		return auth.Claims{}, ErrInvalidToken
	}

	if m.active != nil {
		ok, err := m.active(ctx, uid)
		if err != nil {
			return auth.Claims{}, err
		}
		if !ok {
			return auth.Claims{}, ErrUserInactive
		}
	}

	out := auth.Claims{UserID: uid, SessionID: claims.ID}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
