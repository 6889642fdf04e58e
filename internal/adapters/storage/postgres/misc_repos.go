package postgres

import (
	"context"
	"database/sql"

	"pawpals/internal/domain/feedback"
	"pawpals/internal/ports/blob"

	"github.com/jmoiron/sqlx"
)

type FeedbackRepo struct {
	db *sqlx.DB
}

func NewFeedbackRepo(db *sqlx.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

func (r *FeedbackRepo) Create(ctx context.Context, e feedback.Entry) error {
	var userID sql.NullString
	if e.UserID != nil {
		userID = sql.NullString{String: *e.UserID, Valid: true}
	}
	query, args, err := psql.Insert("feedback").
		Columns("id", "user_id", "content", "contact", "created_at").
		Values(e.ID, userID, e.Content, e.Contact, e.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// BlobStore guarda las imágenes subidas en la tabla blobs (bytea).
type BlobStore struct {
	db *sqlx.DB
}

func NewBlobStore(db *sqlx.DB) *BlobStore {
	return &BlobStore{db: db}
}

func (b *BlobStore) Put(ctx context.Context, obj blob.Object) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO blobs (key, content_type, data) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data
	`, obj.Key, obj.ContentType, obj.Data)
	return err
}

func (b *BlobStore) Get(ctx context.Context, key string) (blob.Object, error) {
	var row struct {
		Key         string `db:"key"`
		ContentType string `db:"content_type"`
		Data        []byte `db:"data"`
	}
	err := b.db.GetContext(ctx, &row, `SELECT key, content_type, data FROM blobs WHERE key = $1`, key)
	if err != nil {
		return blob.Object{}, notFound(err, blob.ErrNotFound)
	}
	return blob.Object{Key: row.Key, ContentType: row.ContentType, Data: row.Data}, nil
}

func (b *BlobStore) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}
