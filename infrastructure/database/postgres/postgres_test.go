package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockConnection(t *testing.T) (*Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Connection{DB: db}, mock
}

func TestConnection_Bootstrap(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS forecast_snapshots`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, conn.Bootstrap(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_BootstrapError(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permissão negada"))

	err := conn.Bootstrap(context.Background())
	assert.ErrorContains(t, err, "permissão negada")
}

func TestConnection_RunInTransaction(t *testing.T) {
	t.Run("Confirma quando a função termina sem erro", func(t *testing.T) {
		conn, mock := newMockConnection(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM x`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := conn.RunInTransaction(context.Background(), func(tx *sql.Tx) error {
			_, err := tx.Exec("DELETE FROM x")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Desfaz quando a função falha", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		boom := errors.New("falhou")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := conn.RunInTransaction(context.Background(), func(*sql.Tx) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
