// Package redis guarda las sesiones (jti -> user id) en Redis con TTL.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pawpals/internal/ports/auth"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type Config struct {
	Addr     string
	Password string
	DB       int
}

// commander es el subconjunto de *goredis.Client que usa el store.
type commander interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

type Store struct {
	client commander
}

// Connect crea el cliente y verifica conectividad.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", cfg.Addr, err)
	}
	return &Store{client: c}, nil
}

func NewStore(c *goredis.Client) *Store {
	return &Store{client: c}
}

func (s *Store) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+sessionID, userID, ttl).Err()
}

func (s *Store) Lookup(ctx context.Context, sessionID string) (string, error) {
	uid, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, goredis.Nil) {
		return "", auth.ErrSessionNotFound
	}
	return uid, err
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, keyPrefix+sessionID).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
