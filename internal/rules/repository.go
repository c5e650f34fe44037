package rules

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the rules singleton as a single keyed row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Get(ctx context.Context) (Rules, bool, error) {
	var out Rules
	err := r.pool.QueryRow(ctx, `SELECT max_discount_pct, min_hours_between_requests, daily_volume_limit
FROM business_rules WHERE id=1`).Scan(&out.MaxDiscountPercentage, &out.MinTimeBetweenRequests, &out.DailyVolumeLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rules{}, false, nil
		}
		return Rules{}, false, err
	}
	return out, true, nil
}

func (r *Repository) Save(ctx context.Context, rules Rules) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO business_rules (id, max_discount_pct, min_hours_between_requests, daily_volume_limit)
VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
	max_discount_pct = EXCLUDED.max_discount_pct,
	min_hours_between_requests = EXCLUDED.min_hours_between_requests,
	daily_volume_limit = EXCLUDED.daily_volume_limit,
	updated_at = NOW()`, rules.MaxDiscountPercentage, rules.MinTimeBetweenRequests, rules.DailyVolumeLimit)
	return err
}
