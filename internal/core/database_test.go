// AngelaMos | 2026
// database_test.go

package core

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaStatementsDeclareUniqueness(t *testing.T) {
	stmts := SchemaStatements()
	require.NotEmpty(t, stmts)

	joined := strings.Join(stmts, "\n")
	assert.Contains(t, joined, "UNIQUE (user_id, deal_id)")
	assert.Contains(t, joined, "users_email_key")
	assert.Contains(t, joined, "deals_slug_key")

	for _, stmt := range stmts {
		assert.NotContains(t, stmt, ";")
	}
}

func TestApplySchemaExecutesEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	for _, stmt := range SchemaStatements() {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	d := &Database{DB: sqlx.NewDb(db, "sqlmock")}
	require.NoError(t, d.ApplySchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySchemaStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(".*").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	d := &Database{DB: sqlx.NewDb(db, "sqlmock")}
	err = d.ApplySchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("boom")
	err = InTx(context.Background(), sqlx.NewDb(db, "sqlmock"), func(*sqlx.Tx) error {
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
