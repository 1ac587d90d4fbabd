package httpapi

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/datingapp/internal/logging"
	"github.com/dmitrijs2005/datingapp/internal/server/auth"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
	"github.com/dmitrijs2005/datingapp/internal/server/presence"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func tokenFor(t *testing.T, id int64, username string, roles ...models.RoleName) string {
	t.Helper()
	tok, err := auth.GenerateToken(id, username, roles, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

type fakeAdmin struct {
	users      []*models.UserWithRoles
	listErr    error
	editRoles  []models.RoleName
	editErr    error
	deleteErr  error
	gotRequest int64
	gotTarget  string
	gotRoles   string
}

func (f *fakeAdmin) UsersWithRoles(context.Context) ([]*models.UserWithRoles, error) {
	return f.users, f.listErr
}

func (f *fakeAdmin) EditRoles(_ context.Context, target string, roles string) ([]models.RoleName, error) {
	f.gotTarget, f.gotRoles = target, roles
	return f.editRoles, f.editErr
}

func (f *fakeAdmin) DeleteAccount(_ context.Context, requesterID int64, target string) error {
	f.gotRequest, f.gotTarget = requesterID, target
	return f.deleteErr
}

func newTestRouter(admin AdminService, registry *presence.Registry) (*RouterDeps, *Hub) {
	hub := NewHub(registry, logging.Nop{}, []string{"http://localhost:4200"})
	return &RouterDeps{
		Logger:    logging.Nop{},
		SecretKey: testSecret,
		Admin:     admin,
		Presence:  registry,
		Hub:       hub,
	}, hub
}
