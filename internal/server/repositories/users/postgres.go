package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/datingapp/internal/common"
	"github.com/dmitrijs2005/datingapp/internal/dbx"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, known_as)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, user.UserName, user.KnownAs).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT id, username, known_as, created_at FROM users
		 WHERE username = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userName).Scan(&user.ID, &user.UserName, &user.KnownAs, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// ListWithRoles returns every user ordered by username. Users without any
// role assignment are listed with an empty role set.
func (r *PostgresRepository) ListWithRoles(ctx context.Context) ([]*models.UserWithRoles, error) {
	query :=
		`SELECT u.id, u.username, r.name
		 FROM users u
		 LEFT JOIN user_roles ur ON ur.user_id = u.id
		 LEFT JOIN roles r ON r.id = ur.role_id
		 ORDER BY u.username, r.name
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var (
		result []*models.UserWithRoles
		cur    *models.UserWithRoles
	)

	for rows.Next() {
		var (
			id   int64
			name string
			role sql.NullString
		)
		if err := rows.Scan(&id, &name, &role); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if cur == nil || cur.ID != id {
			cur = &models.UserWithRoles{ID: id, UserName: name, Roles: []models.RoleName{}}
			result = append(result, cur)
		}
		if role.Valid {
			cur.Roles = append(cur.Roles, models.RoleName(role.String))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetRoles(ctx context.Context, userID int64) ([]models.RoleName, error) {
	query :=
		`SELECT r.name FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = $1
		 ORDER BY r.name
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	roles := []models.RoleName{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		roles = append(roles, models.RoleName(name))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return roles, nil
}

// AddRoles assigns roles to the user. A role missing from the roles table
// fails with common.ErrUnknownRole.
func (r *PostgresRepository) AddRoles(ctx context.Context, userID int64, roles []models.RoleName) error {
	query :=
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT $1, id FROM roles WHERE name = $2
		 `

	for _, role := range roles {
		res, err := r.db.ExecContext(ctx, query, userID, string(role))
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", common.ErrUnknownRole, role)
		}
	}

	return nil
}

func (r *PostgresRepository) RemoveRoles(ctx context.Context, userID int64, roles []models.RoleName) error {
	query :=
		`DELETE FROM user_roles
		 WHERE user_id = $1 AND role_id = (SELECT id FROM roles WHERE name = $2)
		 `

	for _, role := range roles {
		res, err := r.db.ExecContext(ctx, query, userID, string(role))
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("role %s not assigned: %w", role, common.ErrorNotFound)
		}
	}

	return nil
}

func (r *PostgresRepository) ListLogins(ctx context.Context, userID int64) ([]models.Login, error) {
	query :=
		`SELECT login_provider, provider_key FROM user_logins
		 WHERE user_id = $1
		 ORDER BY login_provider, provider_key
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var logins []models.Login
	for rows.Next() {
		var l models.Login
		if err := rows.Scan(&l.Provider, &l.ProviderKey); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		logins = append(logins, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return logins, nil
}

func (r *PostgresRepository) RemoveLogin(ctx context.Context, userID int64, provider, key string) error {
	query :=
		`DELETE FROM user_logins
		 WHERE user_id = $1 AND login_provider = $2 AND provider_key = $3
		 `

	res, err := r.db.ExecContext(ctx, query, userID, provider, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID int64) error {
	query := `DELETE FROM users WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
