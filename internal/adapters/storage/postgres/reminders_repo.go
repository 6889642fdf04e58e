package postgres

import (
	"context"
	"database/sql"
	"time"

	"pawpals/internal/domain/reminders"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var reminderColumns = []string{
	"id", "dog_id", "reminder_type",
	"last_date", "next_date", "cycle_days",
	"notes", "is_enabled", "created_at", "updated_at",
}

type reminderRow struct {
	ID        string       `db:"id"`
	DogID     string       `db:"dog_id"`
	Type      string       `db:"reminder_type"`
	LastDate  sql.NullTime `db:"last_date"`
	NextDate  sql.NullTime `db:"next_date"`
	CycleDays int          `db:"cycle_days"`
	Notes     string       `db:"notes"`
	Enabled   bool         `db:"is_enabled"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func (r reminderRow) toDomain() reminders.Reminder {
	return reminders.Reminder{
		ID:        r.ID,
		DogID:     r.DogID,
		Type:      reminders.Type(r.Type),
		LastDate:  datePtr(r.LastDate),
		NextDate:  datePtr(r.NextDate),
		CycleDays: r.CycleDays,
		Notes:     r.Notes,
		Enabled:   r.Enabled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// datePtr: DATE llega como medianoche; se normaliza a UTC.
func datePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	d := reminders.DateOnly(t.Time)
	return &d
}

type RemindersRepo struct {
	db *sqlx.DB
}

func NewRemindersRepo(db *sqlx.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

// reminderUpsertSuffix: en conflicto solo pisa fechas, ciclo y notas; is_enabled queda como estaba.
const reminderUpsertSuffix = `ON CONFLICT ON CONSTRAINT reminders_dog_type_key DO UPDATE SET
	last_date = EXCLUDED.last_date,
	next_date = EXCLUDED.next_date,
	cycle_days = EXCLUDED.cycle_days,
	notes = EXCLUDED.notes,
	updated_at = EXCLUDED.updated_at
	RETURNING id, dog_id, reminder_type, last_date, next_date, cycle_days,
		notes, is_enabled, created_at, updated_at, (xmax = 0) AS inserted`

// Upsert usa la constraint (dog_id, reminder_type); xmax = 0 distingue insert de update.
func (r *RemindersRepo) Upsert(ctx context.Context, rem reminders.Reminder) (reminders.Reminder, bool, error) {
	query, args, err := psql.Insert("reminders").
		Columns(reminderColumns...).
		Values(
			rem.ID, rem.DogID, string(rem.Type),
			nullTime(rem.LastDate), nullTime(rem.NextDate), rem.CycleDays,
			rem.Notes, rem.Enabled, rem.CreatedAt, rem.UpdatedAt,
		).
		Suffix(reminderUpsertSuffix).
		ToSql()
	if err != nil {
		return reminders.Reminder{}, false, err
	}

	var out struct {
		reminderRow
		Inserted bool `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		return reminders.Reminder{}, false, err
	}
	return out.reminderRow.toDomain(), out.Inserted, nil
}

func (r *RemindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	query, args, err := psql.Update("reminders").
		Set("last_date", nullTime(rem.LastDate)).
		Set("next_date", nullTime(rem.NextDate)).
		Set("cycle_days", rem.CycleDays).
		Set("notes", rem.Notes).
		Set("is_enabled", rem.Enabled).
		Set("updated_at", rem.UpdatedAt).
		Where(sq.Eq{"id": rem.ID, "dog_id": rem.DogID}).
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
		return reminders.ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) GetByID(ctx context.Context, dogID, id string) (reminders.Reminder, error) {
	query, args, err := psql.Select(reminderColumns...).
		From("reminders").
		Where(sq.Eq{"id": id, "dog_id": dogID}).
		ToSql()
	if err != nil {
		return reminders.Reminder{}, err
	}
	var row reminderRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return reminders.Reminder{}, notFound(err, reminders.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *RemindersRepo) ListByDog(ctx context.Context, dogID string) ([]reminders.Reminder, error) {
	query, args, err := psql.Select(reminderColumns...).
		From("reminders").
		Where(sq.Eq{"dog_id": dogID}).
		OrderBy("reminder_type ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []reminderRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]reminders.Reminder, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RemindersRepo) Delete(ctx context.Context, dogID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1 AND dog_id = $2`, id, dogID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reminders.ErrNotFound
	}
	return nil
}
