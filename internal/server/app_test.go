package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/datingapp/internal/logging"
	"github.com/dmitrijs2005/datingapp/internal/server/blobstore"
	"github.com/dmitrijs2005/datingapp/internal/server/config"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopBlobs struct{}

func (nopBlobs) DeleteObject(context.Context, string) error { return nil }

type stubManager struct {
	repomanager.RepositoryManager
	migrateErr error
	migrated   bool
}

func (m *stubManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}

func swapSeams(t *testing.T, db *sql.DB, blobErr error, m *stubManager) {
	t.Helper()
	oldOpen, oldBlobs, oldManager := openDB, newBlobStore, newRepositoryManager
	t.Cleanup(func() {
		openDB, newBlobStore, newRepositoryManager = oldOpen, oldBlobs, oldManager
	})

	openDB = func(string) (*sql.DB, error) { return db, nil }
	newBlobStore = func(context.Context, *config.Config) (blobstore.Deleter, error) {
		if blobErr != nil {
			return nil, blobErr
		}
		return nopBlobs{}, nil
	}
	newRepositoryManager = func(blobs blobstore.Deleter) (repomanager.RepositoryManager, error) {
		inner, err := oldManager(blobs)
		if err != nil {
			return nil, err
		}
		m.RepositoryManager = inner
		return m, nil
	}
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

func TestNewApp_WiresRouter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := &stubManager{}
	swapSeams(t, db, nil, m)

	app, err := newApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)
	assert.True(t, m.migrated)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "presence_online_users")

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users-with-roles", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenCore_MigrationErrorClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	m := &stubManager{migrateErr: errors.New("boom")}
	swapSeams(t, db, nil, m)

	_, err = OpenCore(context.Background(), testConfig(), logging.Nop{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenCore_BlobStoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	m := &stubManager{}
	swapSeams(t, db, errors.New("no s3"), m)

	_, err = OpenCore(context.Background(), testConfig(), logging.Nop{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob store init error")
	assert.False(t, m.migrated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenCore_OpenError(t *testing.T) {
	old := openDB
	defer func() { openDB = old }()
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

	_, err := OpenCore(context.Background(), testConfig(), logging.Nop{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}
