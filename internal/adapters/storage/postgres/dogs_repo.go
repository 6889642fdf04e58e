package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pawpals/internal/domain/dogs"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var dogColumns = []string{
	"id", "owner_user_id",
	"name", "breed", "gender", "birthday", "is_sterilized", "weight_kg",
	"personality", "vaccination_status", "avatar", "notes",
	"created_at", "updated_at",
}

type dogRow struct {
	ID                string          `db:"id"`
	OwnerUserID       string          `db:"owner_user_id"`
	Name              string          `db:"name"`
	Breed             string          `db:"breed"`
	Gender            string          `db:"gender"`
	Birthday          sql.NullTime    `db:"birthday"`
	Sterilized        sql.NullBool    `db:"is_sterilized"`
	WeightKg          sql.NullFloat64 `db:"weight_kg"`
	Personality       string          `db:"personality"`
	VaccinationStatus string          `db:"vaccination_status"`
	Avatar            string          `db:"avatar"`
	Notes             string          `db:"notes"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r dogRow) toDomain() dogs.Dog {
	d := dogs.Dog{
		ID:                r.ID,
		OwnerUserID:       r.OwnerUserID,
		Name:              r.Name,
		Breed:             r.Breed,
		Gender:            dogs.Gender(r.Gender),
		Birthday:          timePtr(r.Birthday),
		Personality:       r.Personality,
		VaccinationStatus: r.VaccinationStatus,
		Avatar:            r.Avatar,
		Notes:             r.Notes,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.Sterilized.Valid {
		v := r.Sterilized.Bool
		d.Sterilized = &v
	}
	if r.WeightKg.Valid {
		v := r.WeightKg.Float64
		d.WeightKg = &v
	}
	return d
}

type DogsRepo struct {
	db *sqlx.DB
}

func NewDogsRepo(db *sqlx.DB) *DogsRepo {
	return &DogsRepo{db: db}
}

func (r *DogsRepo) Create(ctx context.Context, d dogs.Dog) error {
	query, args, err := psql.Insert("dogs").
		Columns(dogColumns...).
		Values(
			d.ID, d.OwnerUserID,
			d.Name, d.Breed, string(d.Gender), nullTime(d.Birthday), d.Sterilized, d.WeightKg,
			d.Personality, d.VaccinationStatus, d.Avatar, d.Notes,
			d.CreatedAt, d.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *DogsRepo) Update(ctx context.Context, d dogs.Dog) error {
	query, args, err := psql.Update("dogs").
		SetMap(map[string]any{
			"name":               d.Name,
			"breed":              d.Breed,
			"gender":             string(d.Gender),
			"birthday":           nullTime(d.Birthday),
			"is_sterilized":      d.Sterilized,
			"weight_kg":          d.WeightKg,
			"personality":        d.Personality,
			"vaccination_status": d.VaccinationStatus,
			"avatar":             d.Avatar,
			"notes":              d.Notes,
			"updated_at":         d.UpdatedAt,
		}).
		Where(sq.Eq{"id": d.ID}).
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
		return dogs.ErrNotFound
	}
	return nil
}

// Delete: los recordatorios caen por ON DELETE CASCADE.
func (r *DogsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dogs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return dogs.ErrNotFound
	}
	return nil
}

func (r *DogsRepo) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	if strings.TrimSpace(id) == "" {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	query, args, err := psql.Select(dogColumns...).From("dogs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return dogs.Dog{}, err
	}
	var row dogRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return dogs.Dog{}, notFound(err, dogs.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *DogsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]dogs.Dog, error) {
	return r.list(ctx, []string{ownerUserID}, "created_at DESC")
}

func (r *DogsRepo) ListByOwners(ctx context.Context, ownerUserIDs []string) ([]dogs.Dog, error) {
	if len(ownerUserIDs) == 0 {
		return []dogs.Dog{}, nil
	}
	return r.list(ctx, ownerUserIDs, "created_at ASC")
}

func (r *DogsRepo) list(ctx context.Context, owners []string, order string) ([]dogs.Dog, error) {
	query, args, err := psql.Select(dogColumns...).
		From("dogs").
		Where(sq.Eq{"owner_user_id": owners}).
		OrderBy(order, "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []dogRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]dogs.Dog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
