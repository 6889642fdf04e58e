package postgres

import (
	"context"
	"database/sql"
	"time"

	"pawpals/internal/domain/greetings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var greetingColumns = []string{
	"id", "sender_id", "receiver_id", "message",
	"greeting_type", "post_id", "status", "created_at",
}

type greetingRow struct {
	ID         string         `db:"id"`
	SenderID   string         `db:"sender_id"`
	ReceiverID string         `db:"receiver_id"`
	Message    string         `db:"message"`
	Type       string         `db:"greeting_type"`
	PostID     sql.NullString `db:"post_id"`
	Status     string         `db:"status"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r greetingRow) toDomain() greetings.Greeting {
	g := greetings.Greeting{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Message:    r.Message,
		Type:       greetings.Type(r.Type),
		Status:     greetings.Status(r.Status),
		CreatedAt:  r.CreatedAt,
	}
	if r.PostID.Valid {
		id := r.PostID.String
		g.PostID = &id
	}
	return g
}

type GreetingsRepo struct {
	db *sqlx.DB
}

func NewGreetingsRepo(db *sqlx.DB) *GreetingsRepo {
	return &GreetingsRepo{db: db}
}

func (r *GreetingsRepo) LastSentAt(ctx context.Context, senderID, receiverID string) (time.Time, bool, error) {
	return lastSentAt(ctx, r.db, senderID, receiverID)
}

func lastSentAt(ctx context.Context, q sqlx.QueryerContext, senderID, receiverID string) (time.Time, bool, error) {
	var last sql.NullTime
	err := sqlx.GetContext(ctx, q, &last, `
		SELECT MAX(created_at) FROM greetings
		WHERE sender_id = $1 AND receiver_id = $2
	`, senderID, receiverID)
	if err != nil {
		return time.Time{}, false, err
	}
	return last.Time, last.Valid, nil
}

func (r *GreetingsRepo) HasResponded(ctx context.Context, senderID, postID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM greetings
			WHERE sender_id = $1 AND post_id = $2 AND greeting_type = 'respond'
		)
	`, senderID, postID)
	return exists, err
}

// Create serializa por par (sender, receiver) con un advisory lock de transacción
// y revalida el cooldown antes de insertar.
func (r *GreetingsRepo) Create(ctx context.Context, g greetings.Greeting, notBefore time.Time) error {
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock(hashtext($1))`, g.SenderID+":"+g.ReceiverID); err != nil {
			return err
		}
		last, ok, err := lastSentAt(ctx, tx, g.SenderID, g.ReceiverID)
		if err != nil {
			return err
		}
		if ok && last.After(notBefore) {
			return &greetings.CooldownError{LastSentAt: last}
		}
		return insertGreeting(ctx, tx, g)
	})
	if isUniqueViolation(err, "greetings_one_respond_key") {
		return greetings.ErrAlreadyResponded
	}
	return err
}

func insertGreeting(ctx context.Context, ex sqlx.ExecerContext, g greetings.Greeting) error {
	var postID sql.NullString
	if g.PostID != nil {
		postID = sql.NullString{String: *g.PostID, Valid: true}
	}
	query, args, err := psql.Insert("greetings").
		Columns(greetingColumns...).
		Values(g.ID, g.SenderID, g.ReceiverID, g.Message,
			string(g.Type), postID, string(g.Status), g.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, query, args...)
	return err
}

func (r *GreetingsRepo) GetByID(ctx context.Context, id string) (greetings.Greeting, error) {
	items, err := r.selectGreetings(ctx, psql.Select(greetingColumns...).
		From("greetings").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return greetings.Greeting{}, err
	}
	if len(items) == 0 {
		return greetings.Greeting{}, greetings.ErrNotFound
	}
	return items[0], nil
}

func (r *GreetingsRepo) ListResponses(ctx context.Context, postID string) ([]greetings.Greeting, error) {
	return r.selectGreetings(ctx, psql.Select(greetingColumns...).
		From("greetings").
		Where(sq.Eq{"post_id": postID, "greeting_type": string(greetings.TypeRespond)}).
		OrderBy("created_at DESC", "id DESC"))
}

func (r *GreetingsRepo) ListReceived(ctx context.Context, receiverID string, limit int) ([]greetings.Greeting, error) {
	q := psql.Select(greetingColumns...).
		From("greetings").
		Where(sq.Eq{"receiver_id": receiverID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.selectGreetings(ctx, q)
}

func (r *GreetingsRepo) HasSentHi(ctx context.Context, senderID string, receiverIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(receiverIDs))
	if len(receiverIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT receiver_id FROM greetings
		WHERE sender_id = $1 AND greeting_type = 'hi' AND receiver_id = ANY($2)
	`, senderID, pq.Array(receiverIDs))
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Accept corre las cuatro escrituras en una transacción. Las guardas de los UPDATE
// garantizan que solo una aceptación por post gana.
func (r *GreetingsRepo) Accept(ctx context.Context, postID, responseID string, confirm greetings.Greeting) error {
	return WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE posts SET meetup_status = 'matched'
			WHERE id = $1 AND post_type = 'meetup' AND meetup_status = 'open'
		`, postID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return greetings.ErrPostNotOpen
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE greetings SET status = 'accepted'
			WHERE id = $1 AND post_id = $2 AND greeting_type = 'respond' AND status = 'pending'
		`, responseID, postID)
		if isUniqueViolation(err, "greetings_one_accepted_key") {
			return greetings.ErrPostNotOpen
		}
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return greetings.ErrResponseNotPending
		}

		if err := insertGreeting(ctx, tx, confirm); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE greetings SET status = 'rejected'
			WHERE post_id = $1 AND greeting_type = 'respond' AND status = 'pending' AND id <> $2
		`, postID, responseID)
		return err
	})
}

func (r *GreetingsRepo) selectGreetings(ctx context.Context, q sq.SelectBuilder) ([]greetings.Greeting, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []greetingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]greetings.Greeting, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
