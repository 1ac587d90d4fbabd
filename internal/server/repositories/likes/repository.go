package likes

import (
	"context"

	"github.com/dmitrijs2005/datingapp/internal/dbx"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
)

type Repository interface {
	// Add records the like edge. It reports false when the edge already exists.
	Add(ctx context.Context, like models.Like) (bool, error)
	Exists(ctx context.Context, sourceUserID, likedUserID int64) (bool, error)
	// DeleteForUser stages removal of every like the user gave or received
	// into uow and returns how many edges were staged.
	DeleteForUser(ctx context.Context, uow dbx.Tracker, userID int64) (int, error)
}
