package promo

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/promoflow/promoflow/internal/rbac"
	"github.com/promoflow/promoflow/internal/shared"
	"github.com/promoflow/promoflow/internal/tabular"
	"github.com/promoflow/promoflow/internal/users"
)

// RepositoryPort persists request records. Load hydrates the full
// collection at startup; UpsertAll writes a command's changed records
// atomically.
type RepositoryPort interface {
	Load(ctx context.Context) ([]Request, error)
	UpsertAll(ctx context.Context, rs []Request) error
}

// UsersPort is the slice of the users module the lifecycle needs:
// requester display names for the export and team scoping for
// managers.
type UsersPort interface {
	List(ctx context.Context) ([]users.User, error)
	DirectReports(ctx context.Context, managerID int64) ([]int64, error)
}

// GroupsPort exposes the store-group id set consulted during import
// validation.
type GroupsPort interface {
	IDs(ctx context.Context) (map[string]struct{}, error)
}

// AuditPort records cross-module audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// RequestView is a request with its derived effective status, computed
// at read time and never stored.
type RequestView struct {
	Request
	EffectiveStatus Status `json:"effectiveStatus"`
}

// ListFilter narrows the request listing.
type ListFilter struct {
	Status Status
	Search string
}

// Service owns the request collection and serializes every command
// against it. Commands run through the pure Apply engine; the service
// persists the changed records, swaps the published snapshot, and
// records audit entries. Reads never block on persistence.
type Service struct {
	repo   RepositoryPort
	users  UsersPort
	groups GroupsPort
	audit  AuditPort
	log    *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	state State
}

func NewService(repo RepositoryPort, usersPort UsersPort, groups GroupsPort, audit AuditPort, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  usersPort,
		groups: groups,
		audit:  audit,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Start hydrates the in-memory collection from the repository. Must be
// called once before serving.
func (s *Service) Start(ctx context.Context) error {
	requests, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load promotion requests: %w", err)
	}
	s.mu.Lock()
	s.state = State{Requests: requests}
	s.mu.Unlock()
	s.log.Info("promotion requests loaded", "count", len(requests))
	return nil
}

// Dispatch runs one command against the current snapshot. The new
// snapshot is published only after every changed record persisted, so
// readers never observe state the database does not have.
func (s *Service) Dispatch(ctx context.Context, cmd Command) ([]Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := Apply(s.state, cmd, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertAll(ctx, changed); err != nil {
		return nil, fmt.Errorf("persist command batch: %w", err)
	}
	s.state = next

	actor := commandActor(cmd)
	for _, r := range changed {
		entry := r.AuditLog[len(r.AuditLog)-1]
		var meta map[string]any
		if entry.Details != "" {
			meta = map[string]any{"details": entry.Details}
		}
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:   actor.ID,
			ActorName: actor.Name,
			ActorRole: string(actor.Role),
			Action:    entry.Action,
			Entity:    "promotion_request",
			EntityID:  r.ID,
			Meta:      meta,
		}); err != nil {
			s.log.Warn("audit record failed", "request", r.ID, "err", err)
		}
	}
	return changed, nil
}

// List returns requests visible to the actor, newest first, with
// effective status derived against the current date. Commercial
// analysts see their own requests, commercial managers their direct
// reports', everyone else the full set. The status filter matches the
// derived status, so ATIVA and FINALIZADA are valid filters.
func (s *Service) List(ctx context.Context, actor rbac.Actor, filter ListFilter) ([]RequestView, error) {
	snapshot := s.Snapshot()

	var visible func(Request) bool
	switch actor.Role {
	case rbac.RoleAnalistaComercial:
		visible = func(r Request) bool { return r.RequesterID == actor.ID }
	case rbac.RoleGestorComercial:
		reports, err := s.users.DirectReports(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve direct reports: %w", err)
		}
		team := make(map[int64]struct{}, len(reports))
		for _, id := range reports {
			team[id] = struct{}{}
		}
		visible = func(r Request) bool {
			_, ok := team[r.RequesterID]
			return ok
		}
	default:
		visible = func(Request) bool { return true }
	}

	now := s.now()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	views := make([]RequestView, 0, len(snapshot.Requests))
	for _, r := range snapshot.Requests {
		if !visible(r) {
			continue
		}
		effective := r.EffectiveStatus(now)
		if filter.Status != "" && effective != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.SKU), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		views = append(views, RequestView{Request: r, EffectiveStatus: effective})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

// Get returns one request with its derived status.
func (s *Service) Get(ctx context.Context, id string) (RequestView, error) {
	snapshot := s.Snapshot()
	r, ok := snapshot.Find(id)
	if !ok {
		return RequestView{}, ErrNotFound
	}
	return RequestView{Request: r, EffectiveStatus: r.EffectiveStatus(s.now())}, nil
}

// Pending returns the requests awaiting a decision.
func (s *Service) Pending() []Request {
	snapshot := s.Snapshot()
	pending := make([]Request, 0)
	for _, r := range snapshot.Requests {
		if r.Status == StatusPendente {
			pending = append(pending, r)
		}
	}
	return pending
}

// Snapshot returns the current published state. The slice is copied;
// requests share structure and must be treated as read-only.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Requests: append([]Request(nil), s.state.Requests...)}
}

// PreviewImport validates raw CSV text without mutating anything.
func (s *Service) PreviewImport(ctx context.Context, text string) (ImportResult, error) {
	groupIDs, err := s.groups.IDs(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("load store groups: %w", err)
	}
	return ParseRequestCSV(text, groupIDs)
}

// CommitImport re-validates the CSV and creates the valid subset in
// one bulk command. Invalid rows are returned untouched so the caller
// can surface them next to the created count.
func (s *Service) CommitImport(ctx context.Context, text string, actor Actor) ([]Request, []RowError, error) {
	result, err := s.PreviewImport(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Drafts) == 0 {
		return nil, result.Errors, nil
	}
	created, err := s.Dispatch(ctx, BulkCreateCommand{Drafts: result.Drafts, Actor: actor})
	if err != nil {
		return nil, nil, err
	}
	return created, result.Errors, nil
}

// PreviewDecisions validates a decision workbook against the current
// request set without mutating anything.
func (s *Service) PreviewDecisions(sheet tabular.Sheet) (DecisionResult, error) {
	snapshot := s.Snapshot()
	byID := make(map[string]Request, len(snapshot.Requests))
	for _, r := range snapshot.Requests {
		byID[r.ID] = r
	}
	return ValidateDecisionSheet(sheet, byID)
}

// CommitDecisions re-validates the workbook and applies the valid
// verdicts in one bulk command.
func (s *Service) CommitDecisions(ctx context.Context, sheet tabular.Sheet, actor Actor) ([]Request, []DecisionError, error) {
	result, err := s.PreviewDecisions(sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Decisions) == 0 {
		return nil, result.Errors, nil
	}
	changed, err := s.Dispatch(ctx, BulkDecideCommand{Decisions: result.Decisions, Actor: actor})
	if err != nil {
		return nil, nil, err
	}
	return changed, result.Errors, nil
}

// ExportPending renders the offline decision workbook for the current
// pending set.
func (s *Service) ExportPending(ctx context.Context) ([]byte, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	names := make(map[int64]string, len(all))
	for _, u := range all {
		names[u.ID] = u.Name
	}
	return BuildPendingExport(s.Pending(), names)
}

func commandActor(cmd Command) Actor {
	switch c := cmd.(type) {
	case CreateCommand:
		return c.Actor
	case BulkCreateCommand:
		return c.Actor
	case EditCommand:
		return c.Actor
	case RequestModificationCommand:
		return c.Actor
	case DecideCommand:
		return c.Actor
	case BulkDecideCommand:
		return c.Actor
	case CancelCommand:
		return c.Actor
	default:
		return Actor{}
	}
}
