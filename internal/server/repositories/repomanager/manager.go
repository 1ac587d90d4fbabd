// Package repomanager vends repositories bound to an explicit database
// handle, either the pool or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/datingapp/internal/dbx"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/likes"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/messages"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/photos"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Likes(db dbx.DBTX) likes.Repository
	Messages(db dbx.DBTX) messages.Repository
	Photos(db dbx.DBTX) photos.Repository
}
