package auth

import "time"

// Claims representa la información extraída del token.
type Claims struct {
	UserID string

	// SessionID es el jti del token; vacío en modo dev o con verifiers remotos.
	SessionID string
	ExpiresAt time.Time
}
