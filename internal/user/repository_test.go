// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/perkhub/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "ada@example.com", "hash", "Ada", false, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u := &User{ID: repo.NewID(), Email: "Ada@Example.com", PasswordHash: "hash", Name: "Ada"}
	require.NoError(t, repo.Create(context.Background(), u))

	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_key"})

	err := repo.Create(context.Background(), &User{ID: repo.NewID(), Email: "a@b.c"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepositoryGetByIDRejectsMalformedID(t *testing.T) {
	repo, mock := newMockRepo(t)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1)")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositorySetVerified(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := repo.NewID()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "name", "is_verified", "role",
		"created_at", "updated_at",
	}).AddRow(id, "ada@example.com", "hash", "Ada", true, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(id, true).
		WillReturnRows(rows)

	u, err := repo.SetVerified(context.Background(), id, true)
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.False(t, u.IsAdmin())
}

func TestRepositoryUpdatePasswordMissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), repo.NewID(), "hash")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
