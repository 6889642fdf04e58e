package users

import "context"

type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByPhone(ctx context.Context, phone string) (User, error)
	// GetMany devuelve los usuarios existentes indexados por id (ids faltantes se omiten).
	GetMany(ctx context.Context, ids []string) (map[string]User, error)
	List(ctx context.Context, limit, offset int) ([]User, error)
}

// TokenIssuer emite y revoca sesiones.
type TokenIssuer interface {
	Issue(ctx context.Context, userID string) (Token, error)
	Revoke(ctx context.Context, sessionID string) error
}
