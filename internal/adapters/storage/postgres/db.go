// Package postgres implementa los repositorios sobre Postgres (driver pgx vía database/sql).
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// psql arma queries con placeholders $n.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
	ConnTimeout  time.Duration
}

// Open abre una conexión pool a Postgres y verifica conectividad.
func Open(dsn string, pc PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if pc.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pc.MaxOpenConns)
	}
	if pc.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pc.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(pc.MaxIdleTime)
	db.SetConnMaxLifetime(pc.MaxLifetime)

	timeout := pc.ConnTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// notFound traduce "sin filas" al sentinel del dominio.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
