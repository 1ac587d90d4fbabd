package likes

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

func (r *PostgresRepository) Add(ctx context.Context, like models.Like) (bool, error) {
	query :=
		`INSERT INTO likes (source_user_id, liked_user_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, like.SourceUserID, like.LikedUserID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n > 0, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, sourceUserID, likedUserID int64) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM likes WHERE source_user_id = $1 AND liked_user_id = $2
		 )
		 `

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, sourceUserID, likedUserID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return ok, nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, uow dbx.Tracker, userID int64) (int, error) {
	count :=
		`SELECT COUNT(*) FROM likes
		 WHERE source_user_id = $1 OR liked_user_id = $1
		 `

	var n int
	if err := uow.QueryRowContext(ctx, count, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	uow.Stage(`DELETE FROM likes WHERE source_user_id = $1 OR liked_user_id = $1`, userID)

	return n, nil
}
