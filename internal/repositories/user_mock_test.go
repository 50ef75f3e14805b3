package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func userRows(userID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"user_id", "email", "username", "password_hash",
		"is_active", "is_verified", "role",
		"created_at", "updated_at", "last_login_at",
	}).AddRow(userID, "a@b.c", "alice", "hash", true, false, "user", now, now, nil)
}

func TestUserReadRepository_GetByEmail_NoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserReadRepository_GetByEmail_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	userID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("a@b.c").
		WillReturnRows(userRows(userID))

	user, err := repo.GetByEmail(context.Background(), "a@b.c")
	assert.NoError(t, err)
	assert.Equal(t, userID, user.UserID)
	assert.Equal(t, "alice", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Insert_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a@b.c", "alice", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	user, err := repo.Insert(context.Background(), "a@b.c", "alice", "hash")
	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Update_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db)

	userID := uuid.New()
	mock.ExpectQuery("UPDATE users SET email").
		WithArgs("taken@b.c", "taken", userID).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	user, err := repo.Update(context.Background(), userID, "taken@b.c", "taken")
	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db)

	userID := uuid.New()

	mock.ExpectExec("DELETE FROM users").
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(context.Background(), userID)
	assert.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec("DELETE FROM users").
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.Delete(context.Background(), userID)
	assert.NoError(t, err)
	assert.False(t, deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}
