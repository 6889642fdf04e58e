package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Store guarda imágenes subidas, direccionadas por key.
type Store interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, key string) (Object, error)
	Ping(ctx context.Context) error
}
