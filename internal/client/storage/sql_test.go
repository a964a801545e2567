package storage

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T, driver string) (*SQLStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv").WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQLStore(context.Background(), db, driver)
	require.NoError(t, err)
	return s, mock
}

func TestNewSQLStore_SchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv").WillReturnError(errors.New("no permission"))
	_, err = NewSQLStore(context.Background(), db, DriverPostgres)
	assert.ErrorContains(t, err, "create schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenSQL_Errors(t *testing.T) {
	_, err := OpenSQL(context.Background(), "mysql", "x")
	assert.ErrorContains(t, err, "unsupported sql driver")

	_, err = OpenSQL(context.Background(), DriverPostgres, "some=random")
	assert.ErrorContains(t, err, "ping postgres")
}

func TestSQLStore_GetPostgres(t *testing.T) {
	s, mock := setupMock(t, DriverPostgres)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = $1`)).
		WithArgs(KeyToken).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc"))

	v, ok, err := s.Get(context.Background(), KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetMissingSQLite(t *testing.T) {
	s, mock := setupMock(t, DriverSQLite)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = ?`)).
		WithArgs(KeyUser).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, ok, err := s.Get(context.Background(), KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetError(t *testing.T) {
	s, mock := setupMock(t, DriverPostgres)

	mock.ExpectQuery("SELECT value FROM kv").WillReturnError(errors.New("conn reset"))
	_, _, err := s.Get(context.Background(), KeyToken)
	assert.ErrorContains(t, err, "conn reset")
}

func TestSQLStore_Set(t *testing.T) {
	s, mock := setupMock(t, DriverPostgres)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv (key, value) VALUES ($1, $2)`)).
		WithArgs(KeyToken, "abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), KeyToken, "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_DeletePostgres(t *testing.T) {
	s, mock := setupMock(t, DriverPostgres)
	keys := []string{KeyToken, KeyUser}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key = ANY($1)`)).
		WithArgs(pq.Array(keys)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, s.Delete(context.Background(), keys...))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_DeleteSQLite(t *testing.T) {
	s, mock := setupMock(t, DriverSQLite)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key = ?`)).WithArgs(KeyToken).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key = ?`)).WithArgs(KeyUser).WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	err := s.Delete(context.Background(), KeyToken, KeyUser)
	assert.ErrorContains(t, err, "locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Rebind(t *testing.T) {
	s := &SQLStore{driver: DriverSQLite}
	assert.Equal(t, "a = ? AND b = ? AND c = '$'", s.rebind("a = $1 AND b = $12 AND c = '$'"))

	pg := &SQLStore{driver: DriverPostgres}
	assert.Equal(t, "a = $1", pg.rebind("a = $1"))
}

func TestSQLStore_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "session.db")

	s, err := OpenSQL(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, KeyToken, "first"))
	require.NoError(t, s.Set(ctx, KeyToken, "second"))
	require.NoError(t, s.Set(ctx, KeyUser, `{"id":7}`))

	v, ok, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	require.NoError(t, s.Delete(ctx, KeyToken, KeyUser))
	_, ok, err = s.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}
