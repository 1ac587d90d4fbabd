package messages

import (
	"context"

	"github.com/dmitrijs2005/datingapp/internal/dbx"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	// DeleteForUser stages removal of every message the user sent or
	// received, whatever its per-side deleted flags, and returns how many
	// messages were staged.
	DeleteForUser(ctx context.Context, uow dbx.Tracker, userID int64) (int, error)
}
