package users

import "time"

// User es un dueño de perros registrado por teléfono.
type User struct {
	ID       string
	Nickname string
	Phone    string
	Avatar   string
	Active   bool

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// Token es el bearer emitido en login.
type Token struct {
	Value     string
	SessionID string
	ExpiresAt time.Time
}
