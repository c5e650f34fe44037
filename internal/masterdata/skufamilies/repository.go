package skufamilies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promoflow/promoflow/internal/platform/httpx"
)

// Repository persists SKU families in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context) ([]SKUFamily, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, skus, created_at, updated_at FROM sku_families ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SKUFamily
	for rows.Next() {
		var f SKUFamily
		if err := rows.Scan(&f.ID, &f.Name, &f.SKUs, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (SKUFamily, error) {
	var f SKUFamily
	err := r.pool.QueryRow(ctx, `SELECT id, name, skus, created_at, updated_at FROM sku_families WHERE id=$1`, id).
		Scan(&f.ID, &f.Name, &f.SKUs, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SKUFamily{}, httpx.ErrNotFound
		}
		return SKUFamily{}, err
	}
	return f, nil
}

func (r *Repository) Create(ctx context.Context, family SKUFamily) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sku_families (id, name, skus) VALUES ($1, $2, $3)`,
		family.ID, family.Name, family.SKUs)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return err
}

func (r *Repository) Update(ctx context.Context, family SKUFamily) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sku_families SET name=$2, skus=$3, updated_at=NOW() WHERE id=$1`,
		family.ID, family.Name, family.SKUs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sku_families WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
