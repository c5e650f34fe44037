package promo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promoflow/promoflow/internal/rbac"
	"github.com/promoflow/promoflow/internal/shared"
	"github.com/promoflow/promoflow/internal/users"
)

type memoryRequestRepo struct {
	mu   sync.Mutex
	byID map[string]Request
	// failAt fails the batch while writing the n-th record (1-based),
	// leaving nothing behind, the way the transactional repository does.
	failAt int
}

func newMemoryRequestRepo() *memoryRequestRepo {
	return &memoryRequestRepo{byID: map[string]Request{}}
}

func (m *memoryRequestRepo) Load(context.Context) ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRequestRepo) UpsertAll(_ context.Context, rs []Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := make(map[string]Request, len(rs))
	for i, r := range rs {
		if m.failAt > 0 && i+1 == m.failAt {
			return errors.New("storage down")
		}
		staged[r.ID] = r
	}
	for id, r := range staged {
		m.byID[id] = r
	}
	return nil
}

type fakeUsers struct {
	list    []users.User
	reports map[int64][]int64
}

func (f *fakeUsers) List(context.Context) ([]users.User, error) { return f.list, nil }

func (f *fakeUsers) DirectReports(_ context.Context, managerID int64) ([]int64, error) {
	return f.reports[managerID], nil
}

type fakeGroups struct{ ids map[string]struct{} }

func (f *fakeGroups) IDs(context.Context) (map[string]struct{}, error) { return f.ids, nil }

type fakeAudit struct {
	mu   sync.Mutex
	logs []shared.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, log shared.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, log)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRequestRepo, *fakeAudit) {
	t.Helper()
	repo := newMemoryRequestRepo()
	audit := &fakeAudit{}
	svc := NewService(repo, &fakeUsers{
		list:    []users.User{{ID: 1, Name: "Ana Silva"}, {ID: 2, Name: "Bruno Costa"}, {ID: 3, Name: "Carla Dias"}},
		reports: map[int64][]int64{10: {1}},
	}, &fakeGroups{ids: map[string]struct{}{"grp-1": {}}}, audit, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return testNow }
	require.NoError(t, svc.Start(context.Background()))
	return svc, repo, audit
}

func TestServiceDispatchPersistsAndPublishes(t *testing.T) {
	svc, repo, audit := newTestService(t)

	changed, err := svc.Dispatch(context.Background(), CreateCommand{Draft: testDraft(), Actor: testAnalyst})
	require.NoError(t, err)
	require.Len(t, changed, 1)

	stored, ok := repo.byID[changed[0].ID]
	require.True(t, ok)
	require.Equal(t, StatusPendente, stored.Status)

	view, err := svc.Get(context.Background(), changed[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusPendente, view.Status)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "promotion_request", audit.logs[0].Entity)
	require.Equal(t, "Criação da Solicitação", audit.logs[0].Action)
	require.Equal(t, testAnalyst.Name, audit.logs[0].ActorName)
}

func TestServiceDispatchPersistFailureKeepsOldState(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.failAt = 1

	_, err := svc.Dispatch(context.Background(), CreateCommand{Draft: testDraft(), Actor: testAnalyst})
	require.Error(t, err)
	require.Empty(t, svc.Snapshot().Requests)
}

func TestServiceDispatchFailedBulkLeavesNoPartialBatch(t *testing.T) {
	svc, repo, audit := newTestService(t)
	repo.failAt = 2

	_, err := svc.Dispatch(context.Background(), BulkCreateCommand{
		Drafts: []Draft{testDraft(), testDraft()},
		Actor:  testAnalyst,
	})
	require.Error(t, err)

	// Neither record may survive, or a restart would resurrect half
	// the batch the caller was told failed.
	require.Empty(t, repo.byID)
	require.Empty(t, svc.Snapshot().Requests)
	require.Empty(t, audit.logs)

	repo.failAt = 0
	require.NoError(t, svc.Start(context.Background()))
	require.Empty(t, svc.Snapshot().Requests)
}

func TestServiceListScopesByRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Dispatch(ctx, CreateCommand{Draft: testDraft(), Actor: Actor{ID: 1, Name: "Ana Silva", Role: rbac.RoleAnalistaComercial}})
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, CreateCommand{Draft: testDraft(), Actor: Actor{ID: 3, Name: "Carla Dias", Role: rbac.RoleAnalistaComercial}})
	require.NoError(t, err)

	analyst, err := svc.List(ctx, rbac.Actor{ID: 1, Role: rbac.RoleAnalistaComercial}, ListFilter{})
	require.NoError(t, err)
	require.Len(t, analyst, 1)
	require.Equal(t, int64(1), analyst[0].RequesterID)

	// Manager 10 only sees their direct report (user 1).
	manager, err := svc.List(ctx, rbac.Actor{ID: 10, Role: rbac.RoleGestorComercial}, ListFilter{})
	require.NoError(t, err)
	require.Len(t, manager, 1)
	require.Equal(t, int64(1), manager[0].RequesterID)

	admin, err := svc.List(ctx, rbac.Actor{ID: 99, Role: rbac.RoleAdministrador}, ListFilter{})
	require.NoError(t, err)
	require.Len(t, admin, 2)
}

func TestServiceListFiltersByEffectiveStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	draft := testDraft()
	draft.StartDate = DateOnly(testNow).AddDate(0, 0, -5)
	draft.EndDate = DateOnly(testNow).AddDate(0, 0, 5)
	changed, err := svc.Dispatch(ctx, CreateCommand{Draft: draft, Actor: testAnalyst})
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, DecideCommand{ID: changed[0].ID, Target: StatusAprovada, Actor: testApprover})
	require.NoError(t, err)

	active, err := svc.List(ctx, rbac.Actor{ID: 99, Role: rbac.RoleAdministrador}, ListFilter{Status: StatusAtiva})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, StatusAtiva, active[0].EffectiveStatus)
	require.Equal(t, StatusAprovada, active[0].Status)

	approvedOutside, err := svc.List(ctx, rbac.Actor{ID: 99, Role: rbac.RoleAdministrador}, ListFilter{Status: StatusPendente})
	require.NoError(t, err)
	require.Empty(t, approvedOutside)
}

func TestServiceCommitImportCreatesValidSubset(t *testing.T) {
	svc, _, _ := newTestService(t)

	text := "sku,description,priceFrom,priceTo,startDate,endDate,storeGroupId\n" +
		"SKU1,Promo A,100,90,01/06/2025,10/06/2025,grp-1\n" +
		"SKU2,Promo B,100,110,01/06/2025,10/06/2025,"
	created, rowErrors, err := svc.CommitImport(context.Background(), text, testAnalyst)
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Len(t, rowErrors, 1)
	require.Equal(t, "SKU1", created[0].SKU)
	require.Equal(t, "Criação da Solicitação (Em Massa)", created[0].AuditLog[0].Action)
	require.Len(t, svc.Snapshot().Requests, 1)
}

func TestServiceCommitDecisions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	changed, err := svc.Dispatch(ctx, CreateCommand{Draft: testDraft(), Actor: testAnalyst})
	require.NoError(t, err)

	sheet := decisionSheet(map[string]string{
		"promotionRequestId": changed[0].ID,
		"statusDaDecisao":    "APROVADA",
		"numeroAcaoSAP":      "SAP-1",
	})
	updated, rowErrors, err := svc.CommitDecisions(ctx, sheet, testApprover)
	require.NoError(t, err)
	require.Empty(t, rowErrors)
	require.Len(t, updated, 1)
	require.Equal(t, StatusAprovada, updated[0].Status)

	view, err := svc.Get(ctx, changed[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusAprovada, view.Status)
	require.Equal(t, "SAP-1", view.SAPActionNumber)
}

func TestServiceExportPending(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Dispatch(ctx, CreateCommand{Draft: testDraft(), Actor: testAnalyst})
	require.NoError(t, err)

	data, err := svc.ExportPending(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}
