package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pawpals/internal/domain/posts"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var postColumns = []string{
	"id", "author_id", "content", "location",
	"latitude", "longitude", "images", "post_type",
	"target_location", "duration_minutes", "start_time", "meetup_status",
	"created_at",
}

type postRow struct {
	ID              string          `db:"id"`
	AuthorID        string          `db:"author_id"`
	Content         string          `db:"content"`
	Location        string          `db:"location"`
	Latitude        sql.NullFloat64 `db:"latitude"`
	Longitude       sql.NullFloat64 `db:"longitude"`
	Images          pq.StringArray  `db:"images"`
	Type            string          `db:"post_type"`
	TargetLocation  sql.NullString  `db:"target_location"`
	DurationMinutes sql.NullInt64   `db:"duration_minutes"`
	StartTime       sql.NullTime    `db:"start_time"`
	MeetupStatus    sql.NullString  `db:"meetup_status"`
	CreatedAt       time.Time       `db:"created_at"`
}

func (r postRow) toDomain() posts.Post {
	p := posts.Post{
		ID:        r.ID,
		AuthorID:  r.AuthorID,
		Content:   r.Content,
		Location:  r.Location,
		Latitude:  floatPtr(r.Latitude),
		Longitude: floatPtr(r.Longitude),
		Images:    []string(r.Images),
		Type:      posts.PostType(r.Type),
		CreatedAt: r.CreatedAt,
	}
	if p.Type == posts.TypeMeetup && r.MeetupStatus.Valid {
		p.Meetup = &posts.Meetup{
			TargetLocation:  r.TargetLocation.String,
			DurationMinutes: int(r.DurationMinutes.Int64),
			StartTime:       r.StartTime.Time,
			Status:          posts.MeetupStatus(r.MeetupStatus.String),
		}
	}
	return p
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

type PostsRepo struct {
	db *sqlx.DB
}

func NewPostsRepo(db *sqlx.DB) *PostsRepo {
	return &PostsRepo{db: db}
}

func (r *PostsRepo) Create(ctx context.Context, p posts.Post) error {
	var (
		target   sql.NullString
		duration sql.NullInt64
		start    sql.NullTime
		status   sql.NullString
	)
	if m := p.Meetup; m != nil {
		target = sql.NullString{String: m.TargetLocation, Valid: true}
		duration = sql.NullInt64{Int64: int64(m.DurationMinutes), Valid: true}
		start = sql.NullTime{Time: m.StartTime, Valid: !m.StartTime.IsZero()}
		status = sql.NullString{String: string(m.Status), Valid: true}
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}

	query, args, err := psql.Insert("posts").
		Columns(postColumns...).
		Values(
			p.ID, p.AuthorID, p.Content, p.Location,
			p.Latitude, p.Longitude, pq.Array(images), string(p.Type),
			target, duration, start, status,
			p.CreatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *PostsRepo) GetByID(ctx context.Context, id string) (posts.Post, error) {
	if strings.TrimSpace(id) == "" {
		return posts.Post{}, posts.ErrNotFound
	}
	query, args, err := psql.Select(postColumns...).From("posts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return posts.Post{}, err
	}
	var row postRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return posts.Post{}, notFound(err, posts.ErrNotFound)
	}
	return row.toDomain(), nil
}

// Delete: los saludos del post caen por ON DELETE CASCADE.
func (r *PostsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return posts.ErrNotFound
	}
	return nil
}

func (r *PostsRepo) List(ctx context.Context, f posts.ListFilter) ([]posts.Post, error) {
	q := psql.Select(postColumns...).From("posts").OrderBy("created_at DESC", "id DESC")
	if f.AuthorID != "" {
		q = q.Where(sq.Eq{"author_id": f.AuthorID})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return r.selectPosts(ctx, q)
}

func located() sq.Sqlizer {
	return sq.And{sq.NotEq{"latitude": nil}, sq.NotEq{"longitude": nil}}
}

func (r *PostsRepo) RecentLocated(ctx context.Context, limit int, since time.Time) ([]posts.Post, error) {
	q := psql.Select(postColumns...).
		From("posts").
		Where(located()).
		OrderBy("created_at DESC", "id DESC")
	if !since.IsZero() {
		q = q.Where(sq.Gt{"created_at": since})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.selectPosts(ctx, q)
}

func (r *PostsRepo) LatestLocatedByAuthor(ctx context.Context, authorID string) (posts.Post, error) {
	q := psql.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"author_id": authorID}).
		Where(located()).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)
	items, err := r.selectPosts(ctx, q)
	if err != nil {
		return posts.Post{}, err
	}
	if len(items) == 0 {
		return posts.Post{}, posts.ErrNotFound
	}
	return items[0], nil
}

func (r *PostsRepo) selectPosts(ctx context.Context, q sq.SelectBuilder) ([]posts.Post, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]posts.Post, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
