package posts

import (
	"context"
	"time"
)

type ListFilter struct {
	AuthorID string // opcional
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, p Post) error
	GetByID(ctx context.Context, id string) (Post, error)
	Delete(ctx context.Context, id string) error

	// List ordena por created_at desc.
	List(ctx context.Context, f ListFilter) ([]Post, error)

	// RecentLocated devuelve hasta limit posts con coordenadas, más recientes primero.
	// since cero => sin ventana de tiempo.
	RecentLocated(ctx context.Context, limit int, since time.Time) ([]Post, error)

	// LatestLocatedByAuthor devuelve el último post con coordenadas del autor o ErrNotFound.
	LatestLocatedByAuthor(ctx context.Context, authorID string) (Post, error)
}
