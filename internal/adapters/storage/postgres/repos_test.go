package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"pawpals/internal/domain/greetings"
	"pawpals/internal/domain/reminders"
	"pawpals/internal/domain/users"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("GetByID not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WithArgs("u1").
			WillReturnError(sql.ErrNoRows)

		_, err := NewUsersRepo(db).GetByID(ctx, "u1")
		assert.ErrorIs(t, err, users.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Create maps duplicate phone", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"})

		err := NewUsersRepo(db).Create(ctx, users.User{ID: "u1", Phone: "5551234", CreatedAt: t0, UpdatedAt: t0})
		assert.ErrorIs(t, err, ErrPhoneTaken)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetMany", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM users WHERE id IN \(\$1,\$2\)`).
			WithArgs("a", "b").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow("a", "Ana", "5551234", "", true, t0, t0, nil))

		got, err := NewUsersRepo(db).GetMany(ctx, []string{"a", "b"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Ana", got["a"].Nickname)
		assert.Nil(t, got["a"].LastLoginAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRemindersRepo_Upsert(t *testing.T) {
	db, mock := newMock(t)
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	cols := append(append([]string{}, reminderColumns...), "inserted")
	mock.ExpectQuery(`INSERT INTO reminders .* ON CONFLICT ON CONSTRAINT reminders_dog_type_key DO UPDATE`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("r-old", "d1", "bath", last, next, 30, "", false, t0, t0, false))

	got, created, err := NewRemindersRepo(db).Upsert(context.Background(), reminders.Reminder{
		ID: "r-new", DogID: "d1", Type: reminders.TypeBath,
		LastDate: &last, NextDate: &next, CycleDays: 30, Enabled: true,
		CreatedAt: t0, UpdatedAt: t0,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "r-old", got.ID)
	require.NotNil(t, got.NextDate)
	assert.Equal(t, next, *got.NextDate)
	assert.False(t, got.Enabled, "stored flag wins over the incoming one")
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NotContains(t, reminderUpsertSuffix, "is_enabled =")
	assert.Contains(t, reminderUpsertSuffix, "notes = EXCLUDED.notes")
}

func TestGreetingsRepo_Create(t *testing.T) {
	ctx := context.Background()
	hi := greetings.Greeting{
		ID: "g1", SenderID: "a", ReceiverID: "b",
		Message: "Hi", Type: greetings.TypeHi, Status: greetings.StatusPending, CreatedAt: t0,
	}

	t.Run("cooldown rechecked under lock", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WithArgs("a:b").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT MAX\(created_at\) FROM greetings`).
			WithArgs("a", "b").
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(t0.Add(-time.Minute)))
		mock.ExpectRollback()

		err := NewGreetingsRepo(db).Create(ctx, hi, t0.Add(-3*time.Minute))
		var cd *greetings.CooldownError
		require.ErrorAs(t, err, &cd)
		assert.Equal(t, t0.Add(-time.Minute), cd.LastSentAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts when window elapsed", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT MAX\(created_at\) FROM greetings`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
		mock.ExpectExec(`INSERT INTO greetings`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewGreetingsRepo(db).Create(ctx, hi, t0.Add(-3*time.Minute)))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate respond", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT MAX\(created_at\) FROM greetings`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
		mock.ExpectExec(`INSERT INTO greetings`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "greetings_one_respond_key"})
		mock.ExpectRollback()

		err := NewGreetingsRepo(db).Create(ctx, hi, t0)
		assert.ErrorIs(t, err, greetings.ErrAlreadyResponded)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGreetingsRepo_Accept(t *testing.T) {
	ctx := context.Background()
	pid := "p1"
	confirm := greetings.Greeting{
		ID: "c1", SenderID: "author", ReceiverID: "a", Message: greetings.AcceptMessage,
		Type: greetings.TypeAccept, PostID: &pid, Status: greetings.StatusAccepted, CreatedAt: t0,
	}

	t.Run("all writes in one transaction", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE posts SET meetup_status = 'matched'`).
			WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE greetings SET status = 'accepted'`).
			WithArgs("r1", "p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO greetings`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE greetings SET status = 'rejected'`).
			WithArgs("p1", "r1").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		require.NoError(t, NewGreetingsRepo(db).Accept(ctx, "p1", "r1", confirm))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("post no longer open", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE posts SET meetup_status = 'matched'`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := NewGreetingsRepo(db).Accept(ctx, "p1", "r1", confirm)
		assert.ErrorIs(t, err, greetings.ErrPostNotOpen)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("response not pending", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE posts SET meetup_status = 'matched'`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE greetings SET status = 'accepted'`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := NewGreetingsRepo(db).Accept(ctx, "p1", "r1", confirm)
		assert.ErrorIs(t, err, greetings.ErrResponseNotPending)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second accepted response on the post", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE posts SET meetup_status = 'matched'`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE greetings SET status = 'accepted'`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "greetings_one_accepted_key"})
		mock.ExpectRollback()

		err := NewGreetingsRepo(db).Accept(ctx, "p1", "r1", confirm)
		assert.ErrorIs(t, err, greetings.ErrPostNotOpen)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGreetingsRepo_HasSentHi(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT DISTINCT receiver_id FROM greetings`).
		WithArgs("me", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"receiver_id"}).AddRow("b"))

	got, err := NewGreetingsRepo(db).HasSentHi(context.Background(), "me", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"b": true}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_UniqueBackstops(t *testing.T) {
	for _, name := range []string{"reminders_dog_type_key", "greetings_one_respond_key", "greetings_one_accepted_key", "users_phone_key"} {
		assert.Contains(t, schema, name)
	}

	db, mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
