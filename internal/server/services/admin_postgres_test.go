package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/datingapp/internal/logging"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapBlobs struct {
	deleted []string
	fail    map[string]error
}

func (m *mapBlobs) DeleteObject(_ context.Context, publicID string) error {
	if err := m.fail[publicID]; err != nil {
		return err
	}
	m.deleted = append(m.deleted, publicID)
	return nil
}

// Runs the whole deletion through the postgres repositories so the
// statement order hitting the database is checked end to end.
func TestDeleteAccount_PostgresStatementOrder(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	blobs := &mapBlobs{fail: map[string]error{"users/7/b.jpg": errors.New("503")}}
	mgr, err := repomanager.NewPostgresRepositoryManager(blobs)
	require.NoError(t, err)
	svc := NewAdminService(db, mgr, logging.Nop{}, nil)

	mock.ExpectQuery(`FROM users\s+WHERE username = \$1`).WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "known_as", "created_at"}).
			AddRow(int64(7), "bob", "Bob", time.Now()))
	mock.ExpectQuery(`SELECT r\.name FROM user_roles`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Member"))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM likes`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`DELETE FROM likes`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM messages`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM photos\s+WHERE user_id = \$1`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "url", "public_id", "is_main"}).
			AddRow(int64(1), int64(7), "https://cdn/a.jpg", "users/7/a.jpg", true).
			AddRow(int64(2), int64(7), "https://cdn/b.jpg", "users/7/b.jpg", false))
	mock.ExpectExec(`DELETE FROM photos WHERE id = \$1`).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM photos WHERE id = \$1`).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM user_logins`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"login_provider", "provider_key"}).AddRow("google", "g-1"))
	mock.ExpectExec(`DELETE FROM user_logins`).WithArgs(int64(7), "google", "g-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT r\.name FROM user_roles`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Member"))
	mock.ExpectExec(`DELETE FROM user_roles`).WithArgs(int64(7), "Member").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteAccount(context.Background(), 1, "bob"))
	assert.Equal(t, []string{"users/7/a.jpg"}, blobs.deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A failure after the photo step rolls back every row change while the
// already deleted photo objects stay deleted.
func TestDeleteAccount_PostgresRollbackKeepsBlobDeletes(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	blobs := &mapBlobs{}
	mgr, _ := repomanager.NewPostgresRepositoryManager(blobs)
	svc := NewAdminService(db, mgr, logging.Nop{}, nil)

	mock.ExpectQuery(`FROM users\s+WHERE username = \$1`).WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "known_as", "created_at"}).
			AddRow(int64(7), "bob", "Bob", time.Now()))
	mock.ExpectQuery(`SELECT r\.name FROM user_roles`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM likes`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM messages`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM photos\s+WHERE user_id = \$1`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "url", "public_id", "is_main"}).
			AddRow(int64(1), int64(7), "https://cdn/a.jpg", "users/7/a.jpg", true))
	mock.ExpectExec(`DELETE FROM photos WHERE id = \$1`).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM user_logins`).WithArgs(int64(7)).WillReturnError(errors.New("conn lost"))
	mock.ExpectRollback()

	err = svc.DeleteAccount(context.Background(), 1, "bob")

	requireStep(t, err, StepLogins)
	assert.Equal(t, []string{"users/7/a.jpg"}, blobs.deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
