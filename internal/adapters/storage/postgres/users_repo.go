package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pawpals/internal/domain/users"
	"pawpals/internal/platform/apperr"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var ErrPhoneTaken = apperr.Conflict("phone already registered")

var userColumns = []string{
	"id", "nickname", "phone", "avatar", "is_active",
	"created_at", "updated_at", "last_login_at",
}

type userRow struct {
	ID          string         `db:"id"`
	Nickname    string         `db:"nickname"`
	Phone       sql.NullString `db:"phone"`
	Avatar      string         `db:"avatar"`
	Active      bool           `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	LastLoginAt sql.NullTime   `db:"last_login_at"`
}

func (r userRow) toDomain() users.User {
	return users.User{
		ID:          r.ID,
		Nickname:    r.Nickname,
		Phone:       r.Phone.String,
		Avatar:      r.Avatar,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		LastLoginAt: timePtr(r.LastLoginAt),
	}
}

type UsersRepo struct {
	db *sqlx.DB
}

func NewUsersRepo(db *sqlx.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	query, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Nickname, nullString(u.Phone), u.Avatar, u.Active,
			u.CreatedAt, u.UpdatedAt, nullTime(u.LastLoginAt)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "users_phone_key") {
			return ErrPhoneTaken
		}
		return err
	}
	return nil
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	query, args, err := psql.Update("users").
		Set("nickname", u.Nickname).
		Set("phone", nullString(u.Phone)).
		Set("avatar", u.Avatar).
		Set("is_active", u.Active).
		Set("updated_at", u.UpdatedAt).
		Set("last_login_at", nullTime(u.LastLoginAt)).
		Where(sq.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) getOne(ctx context.Context, where sq.Eq) (users.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return users.User{}, err
	}
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return users.User{}, notFound(err, users.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	if strings.TrimSpace(id) == "" {
		return users.User{}, users.ErrNotFound
	}
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *UsersRepo) GetByPhone(ctx context.Context, phone string) (users.User, error) {
	return r.getOne(ctx, sq.Eq{"phone": phone})
}

func (r *UsersRepo) GetMany(ctx context.Context, ids []string) (map[string]users.User, error) {
	out := make(map[string]users.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	// sq.Eq con slice genera IN (...)
	query, args, err := psql.Select(userColumns...).From("users").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.toDomain()
	}
	return out, nil
}

func (r *UsersRepo) List(ctx context.Context, limit, offset int) ([]users.User, error) {
	q := psql.Select(userColumns...).From("users").OrderBy("created_at ASC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]users.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
