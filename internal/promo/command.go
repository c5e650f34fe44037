package promo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine errors.
var (
	ErrNotFound     = errors.New("promo: request not found")
	ErrValidation   = errors.New("promo: validation failed")
	ErrInvalidState = errors.New("promo: invalid state transition")
)

// State is the full request collection owned by the dispatcher. Apply
// treats it as immutable input and returns a fresh snapshot; untouched
// requests are shared structurally between snapshots.
type State struct {
	Requests []Request
}

// Find returns the request with the given id.
func (s State) Find(id string) (Request, bool) {
	for _, r := range s.Requests {
		if r.ID == id {
			return r, true
		}
	}
	return Request{}, false
}

// Draft carries the commercial fields of a request before it enters
// the lifecycle. Only a validated draft ever becomes a Request;
// workflow fields (status, requester, audit log) are owned by the
// engine and cannot be supplied.
type Draft struct {
	SKU                   string
	Description           string
	PriceFrom             float64
	PriceTo               float64
	StartDate             time.Time
	EndDate               time.Time
	StoreGroupID          string
	HasRebate             bool
	RebateValue           float64
	CommercialObservation string
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.SKU) == "" || strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: sku and description are required", ErrValidation)
	}
	if d.PriceFrom <= 0 || d.PriceTo <= 0 {
		return fmt.Errorf("%w: prices must be positive", ErrValidation)
	}
	if d.PriceTo >= d.PriceFrom {
		return fmt.Errorf("%w: priceTo must be strictly lower than priceFrom", ErrValidation)
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if d.EndDate.Before(d.StartDate) {
		return fmt.Errorf("%w: end date cannot precede start date", ErrValidation)
	}
	if d.HasRebate && d.RebateValue <= 0 {
		return fmt.Errorf("%w: rebate value must be positive when rebate is set", ErrValidation)
	}
	return nil
}

// Decision is one validated approve/reject verdict bound for
// BulkDecide.
type Decision struct {
	ID              string `json:"id"`
	Status          Status `json:"status"`
	Reason          string `json:"reason,omitempty"`
	SAPActionNumber string `json:"sapActionNumber,omitempty"`
}

// Command is the closed set of state transitions. Each variant carries
// its own payload; dispatch is by exhaustive type switch.
type Command interface{ isCommand() }

// CreateCommand submits a new request in status PENDENTE.
type CreateCommand struct {
	Draft Draft
	Actor Actor
}

// BulkCreateCommand applies Create semantics to a validated batch.
type BulkCreateCommand struct {
	Drafts []Draft
	Actor  Actor
}

// EditCommand replaces a request's commercial fields without touching
// its status.
type EditCommand struct {
	ID    string
	Draft Draft
	Actor Actor
}

// RequestModificationCommand edits an approved/active request and
// forces it back to PENDENTE, restarting the approval cycle.
type RequestModificationCommand struct {
	ID    string
	Draft Draft
	Actor Actor
}

// DecideCommand approves or rejects one pending request.
type DecideCommand struct {
	ID     string
	Target Status
	Reason string
	Actor  Actor
}

// BulkDecideCommand applies a validated batch of decisions with a
// single approver.
type BulkDecideCommand struct {
	Decisions []Decision
	Actor     Actor
}

// CancelCommand cancels a request with a mandatory reason.
type CancelCommand struct {
	ID     string
	Reason string
	Actor  Actor
}

func (CreateCommand) isCommand()              {}
func (BulkCreateCommand) isCommand()          {}
func (EditCommand) isCommand()                {}
func (RequestModificationCommand) isCommand() {}
func (DecideCommand) isCommand()              {}
func (BulkDecideCommand) isCommand()          {}
func (CancelCommand) isCommand()              {}

// Apply performs one command against the snapshot and returns the next
// snapshot plus the requests it wrote, in input order. It never
// mutates its arguments, performs no I/O, and refuses inconsistent
// commands without touching state. An unknown command kind is a no-op
// returning the snapshot unchanged.
func Apply(state State, cmd Command, now time.Time) (State, []Request, error) {
	switch c := cmd.(type) {
	case CreateCommand:
		return applyCreate(state, c, now)
	case BulkCreateCommand:
		return applyBulkCreate(state, c, now)
	case EditCommand:
		return applyEdit(state, c.ID, c.Draft, c.Actor, now, false)
	case RequestModificationCommand:
		return applyEdit(state, c.ID, c.Draft, c.Actor, now, true)
	case DecideCommand:
		return applyDecide(state, c, now)
	case BulkDecideCommand:
		return applyBulkDecide(state, c, now)
	case CancelCommand:
		return applyCancel(state, c, now)
	default:
		return state, nil, nil
	}
}

func newRequest(draft Draft, actor Actor, action string, now time.Time) Request {
	return Request{
		ID:                    "req-" + uuid.NewString(),
		SKU:                   draft.SKU,
		Description:           draft.Description,
		PriceFrom:             draft.PriceFrom,
		PriceTo:               draft.PriceTo,
		StartDate:             DateOnly(draft.StartDate),
		EndDate:               DateOnly(draft.EndDate),
		Status:                StatusPendente,
		RequesterID:           actor.ID,
		CreatedAt:             now,
		StoreGroupID:          draft.StoreGroupID,
		HasRebate:             draft.HasRebate,
		RebateValue:           draft.RebateValue,
		CommercialObservation: draft.CommercialObservation,
		AuditLog:              []AuditLogEntry{newAuditEntry(actor, action, "", now)},
	}
}

func applyCreate(state State, cmd CreateCommand, now time.Time) (State, []Request, error) {
	if err := cmd.Draft.validate(); err != nil {
		return state, nil, err
	}
	created := newRequest(cmd.Draft, cmd.Actor, actionCreate, now)
	next := State{Requests: append(append([]Request(nil), state.Requests...), created)}
	return next, []Request{created}, nil
}

func applyBulkCreate(state State, cmd BulkCreateCommand, now time.Time) (State, []Request, error) {
	for _, draft := range cmd.Drafts {
		if err := draft.validate(); err != nil {
			return state, nil, err
		}
	}
	created := make([]Request, 0, len(cmd.Drafts))
	for _, draft := range cmd.Drafts {
		created = append(created, newRequest(draft, cmd.Actor, actionBulkCreate, now))
	}
	next := State{Requests: append(append([]Request(nil), state.Requests...), created...)}
	return next, created, nil
}

func applyEdit(state State, id string, draft Draft, actor Actor, now time.Time, modification bool) (State, []Request, error) {
	if err := draft.validate(); err != nil {
		return state, nil, err
	}
	idx := -1
	for i, r := range state.Requests {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state, nil, ErrNotFound
	}

	updated := state.Requests[idx].Clone()
	updated.SKU = draft.SKU
	updated.Description = draft.Description
	updated.PriceFrom = draft.PriceFrom
	updated.PriceTo = draft.PriceTo
	updated.StartDate = DateOnly(draft.StartDate)
	updated.EndDate = DateOnly(draft.EndDate)
	updated.StoreGroupID = draft.StoreGroupID
	updated.HasRebate = draft.HasRebate
	updated.RebateValue = draft.RebateValue
	updated.CommercialObservation = draft.CommercialObservation

	if modification {
		updated.Status = StatusPendente
		updated.AuditLog = append(updated.AuditLog, newAuditEntry(actor, actionModify, "", now))
	} else {
		updated.AuditLog = append(updated.AuditLog, newAuditEntry(actor, actionEdit, "", now))
	}

	next := replaceAt(state, idx, updated)
	return next, []Request{updated}, nil
}

func applyDecide(state State, cmd DecideCommand, now time.Time) (State, []Request, error) {
	if cmd.Target != StatusAprovada && cmd.Target != StatusReprovada {
		return state, nil, fmt.Errorf("%w: decision status must be APROVADA or REPROVADA", ErrValidation)
	}
	if cmd.Target == StatusReprovada && strings.TrimSpace(cmd.Reason) == "" {
		return state, nil, fmt.Errorf("%w: rejection requires a reason", ErrValidation)
	}
	idx := -1
	for i, r := range state.Requests {
		if r.ID == cmd.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state, nil, ErrNotFound
	}
	if state.Requests[idx].Status != StatusPendente {
		return state, nil, fmt.Errorf("%w: request is %s", ErrInvalidState, state.Requests[idx].Status)
	}

	updated := state.Requests[idx].Clone()
	updated.Status = cmd.Target
	updated.ApproverName = cmd.Actor.Name
	if cmd.Target == StatusAprovada {
		at := now
		updated.ApprovalDate = &at
		updated.RejectionReason = ""
		updated.AuditLog = append(updated.AuditLog, newAuditEntry(cmd.Actor, actionApprove, cmd.Reason, now))
	} else {
		updated.RejectionReason = cmd.Reason
		updated.AuditLog = append(updated.AuditLog, newAuditEntry(cmd.Actor, actionReject, cmd.Reason, now))
	}

	next := replaceAt(state, idx, updated)
	return next, []Request{updated}, nil
}

func applyBulkDecide(state State, cmd BulkDecideCommand, now time.Time) (State, []Request, error) {
	index := make(map[string]int, len(state.Requests))
	for i, r := range state.Requests {
		index[r.ID] = i
	}

	next := State{Requests: append([]Request(nil), state.Requests...)}
	changed := make([]Request, 0, len(cmd.Decisions))
	for _, decision := range cmd.Decisions {
		idx, ok := index[decision.ID]
		if !ok {
			// Unmatched ids were filtered during validation; stragglers
			// are ignored rather than failing the batch.
			continue
		}
		current := next.Requests[idx]
		if current.Status != StatusPendente {
			continue
		}
		if decision.Status != StatusAprovada && decision.Status != StatusReprovada {
			continue
		}
		if decision.Status == StatusReprovada && strings.TrimSpace(decision.Reason) == "" {
			continue
		}

		updated := current.Clone()
		updated.Status = decision.Status
		updated.ApproverName = cmd.Actor.Name
		at := now
		updated.ApprovalDate = &at
		if decision.Status == StatusAprovada {
			updated.RejectionReason = ""
			updated.SAPActionNumber = decision.SAPActionNumber
			sap := decision.SAPActionNumber
			if sap == "" {
				sap = "N/A"
			}
			updated.AuditLog = append(updated.AuditLog, newAuditEntry(cmd.Actor, actionBulkApprove, "Num. Ação SAP: "+sap, now))
		} else {
			updated.RejectionReason = decision.Reason
			updated.SAPActionNumber = ""
			updated.AuditLog = append(updated.AuditLog, newAuditEntry(cmd.Actor, actionBulkReject, decision.Reason, now))
		}
		next.Requests[idx] = updated
		changed = append(changed, updated)
	}
	if len(changed) == 0 {
		return state, nil, nil
	}
	return next, changed, nil
}

func applyCancel(state State, cmd CancelCommand, now time.Time) (State, []Request, error) {
	if strings.TrimSpace(cmd.Reason) == "" {
		return state, nil, fmt.Errorf("%w: cancellation requires a reason", ErrValidation)
	}
	idx := -1
	for i, r := range state.Requests {
		if r.ID == cmd.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state, nil, ErrNotFound
	}
	switch state.Requests[idx].Status {
	case StatusReprovada, StatusCancelada:
		return state, nil, fmt.Errorf("%w: request is %s", ErrInvalidState, state.Requests[idx].Status)
	}

	updated := state.Requests[idx].Clone()
	updated.Status = StatusCancelada
	updated.AuditLog = append(updated.AuditLog, newAuditEntry(cmd.Actor, actionCancel, cmd.Reason, now))

	next := replaceAt(state, idx, updated)
	return next, []Request{updated}, nil
}

func replaceAt(state State, idx int, updated Request) State {
	requests := append([]Request(nil), state.Requests...)
	requests[idx] = updated
	return State{Requests: requests}
}
