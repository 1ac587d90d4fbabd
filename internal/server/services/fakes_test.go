package services

import (
	"context"
	"database/sql"
	"sort"

	"github.com/dmitrijs2005/datingapp/internal/common"
	"github.com/dmitrijs2005/datingapp/internal/dbx"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/likes"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/messages"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/photos"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/users"
)

type callLog struct{ calls []string }

func (c *callLog) add(name string) { c.calls = append(c.calls, name) }

type fakeManager struct {
	users    *fakeUsers
	likes    *fakeLikes
	messages *fakeMessages
	photos   *fakePhotos
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeManager) Likes(dbx.DBTX) likes.Repository              { return m.likes }
func (m *fakeManager) Messages(dbx.DBTX) messages.Repository        { return m.messages }
func (m *fakeManager) Photos(dbx.DBTX) photos.Repository            { return m.photos }

type fakeUsers struct {
	log    *callLog
	byName map[string]*models.User
	roles  map[int64][]models.RoleName
	logins map[int64][]models.Login

	getErr, rolesErr, addErr, removeRolesErr, removeLoginErr, deleteErr error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.byName[u.UserName] = u
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, name string) (*models.User, error) {
	f.log.add("users.GetByUsername")
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListWithRoles(context.Context) ([]*models.UserWithRoles, error) {
	var out []*models.UserWithRoles
	for _, u := range f.byName {
		out = append(out, &models.UserWithRoles{ID: u.ID, UserName: u.UserName, Roles: f.roles[u.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

func (f *fakeUsers) GetRoles(_ context.Context, id int64) ([]models.RoleName, error) {
	f.log.add("users.GetRoles")
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	roles := append([]models.RoleName{}, f.roles[id]...)
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles, nil
}

func (f *fakeUsers) AddRoles(_ context.Context, id int64, roles []models.RoleName) error {
	f.log.add("users.AddRoles")
	if f.addErr != nil {
		return f.addErr
	}
	f.roles[id] = append(f.roles[id], roles...)
	return nil
}

func (f *fakeUsers) RemoveRoles(_ context.Context, id int64, roles []models.RoleName) error {
	f.log.add("users.RemoveRoles")
	if f.removeRolesErr != nil {
		return f.removeRolesErr
	}
	drop := make(map[models.RoleName]bool)
	for _, r := range roles {
		drop[r] = true
	}
	var kept []models.RoleName
	for _, r := range f.roles[id] {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	f.roles[id] = kept
	return nil
}

func (f *fakeUsers) ListLogins(_ context.Context, id int64) ([]models.Login, error) {
	f.log.add("users.ListLogins")
	return f.logins[id], nil
}

func (f *fakeUsers) RemoveLogin(_ context.Context, id int64, provider, key string) error {
	f.log.add("users.RemoveLogin")
	return f.removeLoginErr
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.log.add("users.Delete")
	return f.deleteErr
}

type fakeLikes struct {
	log    *callLog
	staged int
	err    error
}

func (f *fakeLikes) Add(context.Context, models.Like) (bool, error) { return true, nil }
func (f *fakeLikes) Exists(context.Context, int64, int64) (bool, error) {
	return false, nil
}

func (f *fakeLikes) DeleteForUser(_ context.Context, uow dbx.Tracker, userID int64) (int, error) {
	f.log.add("likes.DeleteForUser")
	if f.err != nil {
		return 0, f.err
	}
	if f.staged > 0 {
		uow.Stage("DELETE FROM likes WHERE user = $1", userID)
	}
	return f.staged, nil
}

type fakeMessages struct {
	log    *callLog
	staged int
	err    error
}

func (f *fakeMessages) Create(_ context.Context, m *models.Message) (*models.Message, error) {
	return m, nil
}

func (f *fakeMessages) DeleteForUser(_ context.Context, uow dbx.Tracker, userID int64) (int, error) {
	f.log.add("messages.DeleteForUser")
	if f.err != nil {
		return 0, f.err
	}
	if f.staged > 0 {
		uow.Stage("DELETE FROM messages WHERE user = $1", userID)
	}
	return f.staged, nil
}

type fakePhotos struct {
	log    *callLog
	report *photos.DeleteReport
	err    error
}

func (f *fakePhotos) Add(_ context.Context, p *models.Photo) (*models.Photo, error) { return p, nil }
func (f *fakePhotos) ListForUser(context.Context, int64) ([]*models.Photo, error) {
	return nil, nil
}

func (f *fakePhotos) DeleteForUser(_ context.Context, uow dbx.Tracker, userID int64) (*photos.DeleteReport, error) {
	f.log.add("photos.DeleteForUser")
	if f.err != nil {
		return nil, f.err
	}
	if f.report == nil {
		return &photos.DeleteReport{}, nil
	}
	for i := 0; i < f.report.Staged; i++ {
		uow.Stage("DELETE FROM photos WHERE user = $1", userID)
	}
	return f.report, nil
}

type countingRecorder struct {
	outcomes map[string]int
	orphans  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: make(map[string]int)}
}

func (c *countingRecorder) RecordDeletion(outcome string) { c.outcomes[outcome]++ }
func (c *countingRecorder) RecordOrphanedBlob()           { c.orphans++ }
func (c *countingRecorder) SetPresence(int, int)          {}
