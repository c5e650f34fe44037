// Package promo implements the promotion-request lifecycle: the state
// machine owning each request's status, the bulk import/validation
// pipelines and the pending-decisions export.
package promo

import (
	"time"

	"github.com/promoflow/promoflow/internal/rbac"
)

// Status enumerates request lifecycle statuses. ATIVA and FINALIZADA
// are derived at read time and never stored.
type Status string

const (
	StatusPendente   Status = "PENDENTE"
	StatusAprovada   Status = "APROVADA"
	StatusReprovada  Status = "REPROVADA"
	StatusCancelada  Status = "CANCELADA"
	StatusAtiva      Status = "ATIVA"
	StatusFinalizada Status = "FINALIZADA"
)

// DateLayout is the calendar-date wire format for start/end dates.
const DateLayout = "2006-01-02"

// AuditLogEntry is one immutable line of a request's history.
type AuditLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Role      rbac.Role `json:"role"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
}

// Request is a single promotion proposal. Start/End dates are calendar
// dates held at UTC midnight. The audit log is append-only; entries are
// never reordered or truncated.
type Request struct {
	ID                    string          `json:"id"`
	SKU                   string          `json:"sku"`
	Description           string          `json:"description"`
	PriceFrom             float64         `json:"priceFrom"`
	PriceTo               float64         `json:"priceTo"`
	StartDate             time.Time       `json:"startDate"`
	EndDate               time.Time       `json:"endDate"`
	Status                Status          `json:"status"`
	RequesterID           int64           `json:"requesterId"`
	CreatedAt             time.Time       `json:"createdAt"`
	ApproverName          string          `json:"approverName,omitempty"`
	ApprovalDate          *time.Time      `json:"approvalDate,omitempty"`
	RejectionReason       string          `json:"rejectionReason,omitempty"`
	StoreGroupID          string          `json:"storeGroupId,omitempty"`
	HasRebate             bool            `json:"hasRebate,omitempty"`
	RebateValue           float64         `json:"rebateValue,omitempty"`
	CommercialObservation string          `json:"commercialObservation,omitempty"`
	SAPActionNumber       string          `json:"sapActionNumber,omitempty"`
	AuditLog              []AuditLogEntry `json:"auditLog"`
}

// EffectiveStatus derives the status a reader perceives from the
// stored status plus the current date. An approved promotion whose
// window has passed reads FINALIZADA; one inside its window reads
// ATIVA. The derivation is recomputed on every call, never cached.
func (r Request) EffectiveStatus(now time.Time) Status {
	if r.Status != StatusAprovada {
		return r.Status
	}
	today := DateOnly(now)
	if today.After(r.EndDate) {
		return StatusFinalizada
	}
	if !today.Before(r.StartDate) {
		return StatusAtiva
	}
	return r.Status
}

// Clone returns a deep copy, so callers can hand requests out of the
// owned snapshot without sharing the audit slice.
func (r Request) Clone() Request {
	out := r
	out.AuditLog = append([]AuditLogEntry(nil), r.AuditLog...)
	if r.ApprovalDate != nil {
		d := *r.ApprovalDate
		out.ApprovalDate = &d
	}
	return out
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Actor identifies who performs a command.
type Actor struct {
	ID   int64
	Name string
	Role rbac.Role
}

func newAuditEntry(actor Actor, action, details string, at time.Time) AuditLogEntry {
	return AuditLogEntry{
		Timestamp: at,
		User:      actor.Name,
		Role:      actor.Role,
		Action:    action,
		Details:   details,
	}
}

// Audit action labels. The bulk variants mark entries produced by the
// mass import flows.
const (
	actionCreate      = "Criação da Solicitação"
	actionBulkCreate  = "Criação da Solicitação (Em Massa)"
	actionEdit        = "Edição da Solicitação"
	actionModify      = "Solicitação de Modificação"
	actionApprove     = "Aprovada"
	actionReject      = "Reprovada"
	actionBulkApprove = "Aprovada (Em Massa)"
	actionBulkReject  = "Reprovada (Em Massa)"
	actionCancel      = "Cancelamento"
)
