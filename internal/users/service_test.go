package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promoflow/promoflow/internal/rbac"
)

type memoryUserRepo struct {
	users  map[int64]User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[int64]User{}, nextID: 1}
}

func (r *memoryUserRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryUserRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user User) (User, error) {
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, user User) (User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return User{}, ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

func TestCreateValidatesRoleAndName(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, User{Name: "  ", Role: rbac.RoleAnalistaComercial})
	require.Error(t, err)

	_, err = svc.Create(ctx, User{Name: "Ana", Role: rbac.Role("Estagiário")})
	require.Error(t, err)

	_, err = svc.Create(ctx, User{Name: "Ana", Role: rbac.RoleAnalistaComercial, Permissions: []rbac.Permission{"FLY"}})
	require.Error(t, err)

	created, err := svc.Create(ctx, User{Name: "Ana", Role: rbac.RoleAnalistaComercial})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
}

func TestActorCarriesOverrides(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, User{
		Name:        "Bruno",
		Role:        rbac.RoleGestorComercial,
		Permissions: []rbac.Permission{rbac.PermApproveRequests},
	})
	require.NoError(t, err)

	actor, err := svc.Actor(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Name, actor.Name)
	require.True(t, rbac.HasPermission(actor, rbac.PermApproveRequests))
	require.False(t, rbac.HasPermission(actor, rbac.PermManageUsers))
}

func TestDirectReportsFollowsManagerBackReference(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	manager, err := svc.Create(ctx, User{Name: "Gestora", Role: rbac.RoleGestorComercial})
	require.NoError(t, err)
	report, err := svc.Create(ctx, User{Name: "Analista", Role: rbac.RoleAnalistaComercial, ManagerID: &manager.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, User{Name: "Outro", Role: rbac.RoleAnalistaPricing})
	require.NoError(t, err)

	ids, err := svc.DirectReports(ctx, manager.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{report.ID}, ids)

	ids, err = svc.DirectReports(ctx, report.ID)
	require.NoError(t, err)
	require.Empty(t, ids)
}
