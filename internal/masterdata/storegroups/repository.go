package storegroups

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promoflow/promoflow/internal/platform/httpx"
)

// Repository persists store groups in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context) ([]StoreGroup, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, stores, created_at, updated_at FROM store_groups ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StoreGroup
	for rows.Next() {
		var g StoreGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Stores, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (StoreGroup, error) {
	var g StoreGroup
	err := r.pool.QueryRow(ctx, `SELECT id, name, stores, created_at, updated_at FROM store_groups WHERE id=$1`, id).
		Scan(&g.ID, &g.Name, &g.Stores, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoreGroup{}, httpx.ErrNotFound
		}
		return StoreGroup{}, err
	}
	return g, nil
}

func (r *Repository) Create(ctx context.Context, group StoreGroup) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO store_groups (id, name, stores) VALUES ($1, $2, $3)`,
		group.ID, group.Name, group.Stores)
	return mapDuplicate(err)
}

func (r *Repository) Update(ctx context.Context, group StoreGroup) error {
	tag, err := r.pool.Exec(ctx, `UPDATE store_groups SET name=$2, stores=$3, updated_at=NOW() WHERE id=$1`,
		group.ID, group.Name, group.Stores)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM store_groups WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// IDs returns the set of existing group ids for row validation.
func (r *Repository) IDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM store_groups`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return err
}
