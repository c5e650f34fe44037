package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promoflow/promoflow/internal/rbac"
)

// Repository persists users in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, role, manager_id, permissions, created_at, updated_at
FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, role, manager_id, permissions, created_at, updated_at
FROM users WHERE id=$1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *Repository) Create(ctx context.Context, user User) (User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (name, role, manager_id, permissions)
VALUES ($1, $2, $3, $4)
RETURNING id, name, role, manager_id, permissions, created_at, updated_at`,
		user.Name, string(user.Role), user.ManagerID, permissionStrings(user.Permissions))
	return scanUser(row)
}

func (r *Repository) Update(ctx context.Context, user User) (User, error) {
	row := r.pool.QueryRow(ctx, `UPDATE users
SET name=$2, role=$3, manager_id=$4, permissions=$5, updated_at=NOW()
WHERE id=$1
RETURNING id, name, role, manager_id, permissions, created_at, updated_at`,
		user.ID, user.Name, string(user.Role), user.ManagerID, permissionStrings(user.Permissions))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func permissionStrings(perms []rbac.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u     User
		role  string
		perms []string
	)
	if err := row.Scan(&u.ID, &u.Name, &role, &u.ManagerID, &perms, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	u.Role = rbac.Role(role)
	for _, p := range perms {
		u.Permissions = append(u.Permissions, rbac.Permission(p))
	}
	return u, nil
}
