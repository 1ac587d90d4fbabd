package photos

import (
	"context"

	"github.com/dmitrijs2005/datingapp/internal/dbx"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
)

// Orphan is a photo whose row is being removed while its remote object
// could not be deleted.
type Orphan struct {
	PhotoID  int64
	PublicID string
	Err      error
}

// DeleteReport describes what DeleteForUser did.
type DeleteReport struct {
	// Staged is the number of photo rows queued for removal.
	Staged int
	// Removed holds public ids deleted from the photo store.
	Removed  []string
	Orphaned []Orphan
}

type Repository interface {
	Add(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Photo, error)
	// DeleteForUser deletes remote objects of the user's photos and stages
	// removal of every photo row into uow. A failed remote delete is
	// reported in DeleteReport.Orphaned and never fails the call.
	DeleteForUser(ctx context.Context, uow dbx.Tracker, userID int64) (*DeleteReport, error)
}
