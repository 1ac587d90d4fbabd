package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/datingapp/internal/dbx"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query :=
		`INSERT INTO messages (sender_id, recipient_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, sent_at
		 `

	err := r.db.QueryRowContext(ctx, query, msg.SenderID, msg.RecipientID, msg.Content).Scan(&msg.ID, &msg.SentAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, uow dbx.Tracker, userID int64) (int, error) {
	count :=
		`SELECT COUNT(*) FROM messages
		 WHERE sender_id = $1 OR recipient_id = $1
		 `

	var n int
	if err := uow.QueryRowContext(ctx, count, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	uow.Stage(`DELETE FROM messages WHERE sender_id = $1 OR recipient_id = $1`, userID)

	return n, nil
}
