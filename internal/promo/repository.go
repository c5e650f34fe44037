package promo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores requests in the promotion_requests table. The
// audit log travels with its request as a jsonb column; ordering is
// the slice order, never reindexed by the database.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const loadRequestsQuery = `
SELECT id, sku, description, price_from, price_to, start_date, end_date,
       status, requester_id, created_at, approver_name, approval_date,
       rejection_reason, store_group_id, has_rebate, rebate_value,
       commercial_observation, sap_action_number, audit_log
FROM promotion_requests
ORDER BY created_at`

func (r *Repository) Load(ctx context.Context) ([]Request, error) {
	rows, err := r.pool.Query(ctx, loadRequestsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var (
			req      Request
			status   string
			auditRaw []byte
		)
		err := rows.Scan(
			&req.ID, &req.SKU, &req.Description, &req.PriceFrom, &req.PriceTo,
			&req.StartDate, &req.EndDate, &status, &req.RequesterID, &req.CreatedAt,
			&req.ApproverName, &req.ApprovalDate, &req.RejectionReason,
			&req.StoreGroupID, &req.HasRebate, &req.RebateValue,
			&req.CommercialObservation, &req.SAPActionNumber, &auditRaw,
		)
		if err != nil {
			return nil, err
		}
		req.Status = Status(status)
		if len(auditRaw) > 0 {
			if err := json.Unmarshal(auditRaw, &req.AuditLog); err != nil {
				return nil, fmt.Errorf("decode audit log for %s: %w", req.ID, err)
			}
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

const upsertRequestQuery = `
INSERT INTO promotion_requests (
	id, sku, description, price_from, price_to, start_date, end_date,
	status, requester_id, created_at, approver_name, approval_date,
	rejection_reason, store_group_id, has_rebate, rebate_value,
	commercial_observation, sap_action_number, audit_log
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
ON CONFLICT (id) DO UPDATE SET
	sku = EXCLUDED.sku,
	description = EXCLUDED.description,
	price_from = EXCLUDED.price_from,
	price_to = EXCLUDED.price_to,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	status = EXCLUDED.status,
	approver_name = EXCLUDED.approver_name,
	approval_date = EXCLUDED.approval_date,
	rejection_reason = EXCLUDED.rejection_reason,
	store_group_id = EXCLUDED.store_group_id,
	has_rebate = EXCLUDED.has_rebate,
	rebate_value = EXCLUDED.rebate_value,
	commercial_observation = EXCLUDED.commercial_observation,
	sap_action_number = EXCLUDED.sap_action_number,
	audit_log = EXCLUDED.audit_log`

// UpsertAll writes every record in one transaction. A command's batch
// lands whole or not at all, so a reload after a failed bulk command
// never resurrects part of it.
func (r *Repository) UpsertAll(ctx context.Context, reqs []Request) error {
	if len(reqs) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, req := range reqs {
		auditRaw, err := json.Marshal(req.AuditLog)
		if err != nil {
			return fmt.Errorf("encode audit log for %s: %w", req.ID, err)
		}
		_, err = tx.Exec(ctx, upsertRequestQuery,
			req.ID, req.SKU, req.Description, req.PriceFrom, req.PriceTo,
			req.StartDate, req.EndDate, string(req.Status), req.RequesterID, req.CreatedAt,
			req.ApproverName, req.ApprovalDate, req.RejectionReason,
			req.StoreGroupID, req.HasRebate, req.RebateValue,
			req.CommercialObservation, req.SAPActionNumber, auditRaw,
		)
		if err != nil {
			return fmt.Errorf("upsert request %s: %w", req.ID, err)
		}
	}
	return tx.Commit(ctx)
}
