// AngelaMos | 2026
// repository_test.go

package deal

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/perkhub/internal/core"
)

var dealRowColumns = []string{
	"id", "title", "slug", "description", "partner_name", "partner_url",
	"category", "access_level", "is_active", "eligibility", "cta_text", "cta_url",
	"created_at", "updated_at",
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func addDealRow(rows *sqlmock.Rows, id, slug string, level AccessLevel) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "Title "+slug, slug, "desc", "Partner", "", "cloud",
		string(level), true, "", "Claim", "https://example.com", now, now)
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(Filter{})
	assert.Equal(t, "WHERE is_active", where)
	assert.Empty(t, args)

	where, args = buildWhere(Filter{Category: "cloud", AccessLevel: AccessLocked, Search: "50%_off"})
	assert.Equal(t,
		"WHERE is_active AND category = $1 AND access_level = $2 AND "+
			"(title ILIKE $3 OR description ILIKE $3 OR partner_name ILIKE $3)",
		where)
	assert.Equal(t, []any{"cloud", "locked", `%50\%\_off%`}, args)
}

func TestRepositoryFind(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(dealRowColumns)
	addDealRow(rows, "8d7a1f0e-3b55-4c8e-9f49-1b2a3c4d5e6f", "gcp-credits", AccessLocked)

	mock.ExpectQuery(regexp.QuoteMeta("FROM deals WHERE is_active AND category = $1")).
		WithArgs("cloud", 10, 5).
		WillReturnRows(rows)

	deals, err := repo.Find(context.Background(), Filter{Category: "cloud"}, 10, 5)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, AccessLocked, deals[0].AccessLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM deals WHERE is_active AND access_level = $1")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.Count(context.Background(), Filter{AccessLevel: AccessPublic})
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestRepositoryGetActiveByIDSkipsMalformed(t *testing.T) {
	repo, mock := newMockRepo(t)

	_, err := repo.GetActiveByID(context.Background(), "aws-cloud-credits")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetActiveBySlugNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(slug) = LOWER($1) AND is_active")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(dealRowColumns))

	_, err := repo.GetActiveBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryGetByIDsExpandsPlaceholders(t *testing.T) {
	repo, mock := newMockRepo(t)
	a := "8d7a1f0e-3b55-4c8e-9f49-1b2a3c4d5e6f"
	b := "0f0e0d0c-0b0a-4908-8706-050403020100"

	rows := sqlmock.NewRows(dealRowColumns)
	addDealRow(rows, a, "a", AccessPublic)
	addDealRow(rows, b, "b", AccessPublic)

	mock.ExpectQuery(regexp.QuoteMeta("FROM deals WHERE id IN ($1, $2)")).
		WithArgs(a, b).
		WillReturnRows(rows)

	got, err := repo.GetByIDs(context.Background(), []string{a, "bogus", b})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "b", got[b].Slug)
}

func TestRepositoryGetByIDsEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	got, err := repo.GetByIDs(context.Background(), []string{"bogus"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	existing := "8d7a1f0e-3b55-4c8e-9f49-1b2a3c4d5e6f"
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT ((LOWER(slug))) DO UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "created_at", "updated_at"}).
			AddRow(existing, "aws-cloud-credits", now, now))

	d := &Deal{Title: "AWS", Slug: "AWS-Cloud-Credits", AccessLevel: AccessPublic, IsActive: true}
	require.NoError(t, repo.Upsert(context.Background(), d))
	assert.Equal(t, existing, d.ID)
	assert.Equal(t, "aws-cloud-credits", d.Slug)
}
