package kv_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*kv.Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return kv.NewPostgresWithDB(db), mock
}

func TestPostgresGet(t *testing.T) {
	ctx := context.Background()
	p, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key = $1`)).
		WithArgs("registered_users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	v, err := p.Get(ctx, "registered_users")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(v))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = p.Get(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetAndDelete(t *testing.T) {
	ctx := context.Background()
	p, mock := newMockPostgres(t)

	mock.ExpectExec(`INSERT INTO kv_entries`).
		WithArgs("stations", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, p.Set(ctx, "stations", []byte(`[]`)))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_entries WHERE key = $1`)).
		WithArgs("stations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, p.Delete(ctx, "stations"))

	mock.ExpectExec(`INSERT INTO kv_entries`).
		WillReturnError(errors.New("connection reset"))
	err := p.Set(ctx, "stations", []byte(`[]`))
	require.ErrorContains(t, err, "connection reset")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKeysEscapesPrefix(t *testing.T) {
	ctx := context.Background()
	p, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT key FROM kv_entries WHERE key LIKE`).
		WithArgs(`auth\_user/%`).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("auth_user/a").AddRow("auth_user/b"))

	keys, err := p.Keys(ctx, "auth_user/")
	require.NoError(t, err)
	require.Equal(t, []string{"auth_user/a", "auth_user/b"}, keys)
	require.NoError(t, mock.ExpectationsWereMet())
}
