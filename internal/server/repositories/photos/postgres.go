package photos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/datingapp/internal/dbx"
	"github.com/dmitrijs2005/datingapp/internal/server/blobstore"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
)

type PostgresRepository struct {
	db    dbx.DBTX
	blobs blobstore.Deleter
}

func NewPostgresRepository(db dbx.DBTX, blobs blobstore.Deleter) *PostgresRepository {
	return &PostgresRepository{db: db, blobs: blobs}
}

func (r *PostgresRepository) Add(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	query :=
		`INSERT INTO photos (user_id, url, public_id, is_main)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	var publicID sql.NullString
	if photo.PublicID != nil {
		publicID = sql.NullString{String: *photo.PublicID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, photo.UserID, photo.URL, publicID, photo.IsMain).Scan(&photo.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return photo, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Photo, error) {
	return listForUser(ctx, r.db, userID)
}

func listForUser(ctx context.Context, db dbx.DBTX, userID int64) ([]*models.Photo, error) {
	query :=
		`SELECT id, user_id, url, public_id, is_main FROM photos
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Photo
	for rows.Next() {
		p := &models.Photo{}
		var publicID sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.URL, &publicID, &p.IsMain); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if publicID.Valid {
			p.PublicID = &publicID.String
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// DeleteForUser removes remote objects before staging the row deletes, so a
// later rollback leaves rows pointing at objects that are already gone.
func (r *PostgresRepository) DeleteForUser(ctx context.Context, uow dbx.Tracker, userID int64) (*DeleteReport, error) {
	photos, err := listForUser(ctx, uow, userID)
	if err != nil {
		return nil, err
	}

	report := &DeleteReport{}
	for _, p := range photos {
		if p.HasRemoteObject() {
			if err := r.blobs.DeleteObject(ctx, *p.PublicID); err != nil {
				report.Orphaned = append(report.Orphaned, Orphan{PhotoID: p.ID, PublicID: *p.PublicID, Err: err})
			} else {
				report.Removed = append(report.Removed, *p.PublicID)
			}
		}
		uow.Stage(`DELETE FROM photos WHERE id = $1`, p.ID)
		report.Staged++
	}

	return report, nil
}
