package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ storage.Store = (*Store)(nil)

const (
	selectQ = `(?s)^\s*SELECT\s+value\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1\s*$`
	upsertQ = `(?s)^\s*INSERT\s+INTO\s+kv\s*\(key,\s*value,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*now\(\)\)\s*ON\s+CONFLICT\s*\(key\)\s*DO\s+UPDATE.*$`
	deleteQ = `(?s)^\s*DELETE\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1\s*$`
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

func TestGet_Found(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(selectQ).
		WithArgs("secure_users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{}`)))

	v, ok, err := s.Get(context.Background(), "secure_users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{}`), v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(selectQ).WithArgs("absent").WillReturnError(sql.ErrNoRows)

	v, ok, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestGet_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(selectQ).WithArgs("k").WillReturnError(errors.New("db down"))

	_, _, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestSet_Upsert(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(upsertQ).
		WithArgs("theme", []byte("dark")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "theme", []byte("dark")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSet_NilBecomesEmpty(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(upsertQ).
		WithArgs("k", []byte{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "k", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSet_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(upsertQ).WillReturnError(errors.New("disk full"))

	err := s.Set(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestDelete(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(deleteQ).WithArgs("k").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.Delete(context.Background(), "k"))

	mock.ExpectExec(deleteQ).WithArgs("k").WillReturnError(errors.New("boom"))
	err := s.Delete(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestRunMigrations_UsesGoose(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	called := false
	gooseUpContext = func(ctx context.Context, gotDB *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		called = true
		assert.Same(t, db, gotDB)
		assert.Equal(t, ".", dir)
		return nil
	}

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.True(t, called)

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("migrate fail")
	}
	assert.EqualError(t, RunMigrations(context.Background(), db), "migrate fail")
}
