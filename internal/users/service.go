package users

import (
	"context"
	"errors"
	"strings"

	"github.com/promoflow/promoflow/internal/rbac"
)

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("users: not found")

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
}

// Service handles user management. Users are never deleted; role and
// permission edits are the only mutations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get fetches one user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create registers a new user.
func (s *Service) Create(ctx context.Context, user User) (User, error) {
	if err := validate(user); err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, user)
}

// Update replaces a user's name, role, manager and permission overrides.
func (s *Service) Update(ctx context.Context, user User) (User, error) {
	if user.ID <= 0 {
		return User{}, ErrNotFound
	}
	if err := validate(user); err != nil {
		return User{}, err
	}
	return s.repo.Update(ctx, user)
}

// Actor implements rbac.ActorSource.
func (s *Service) Actor(ctx context.Context, id int64) (rbac.Actor, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return rbac.Actor{}, err
	}
	return user.Actor(), nil
}

// DirectReports lists the ids of users managed by managerID.
func (s *Service) DirectReports(ctx context.Context, managerID int64) ([]int64, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, u := range all {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func validate(user User) error {
	if strings.TrimSpace(user.Name) == "" {
		return errors.New("users: name is required")
	}
	if !rbac.ValidRole(user.Role) {
		return errors.New("users: unknown role")
	}
	for _, perm := range user.Permissions {
		if !rbac.ValidPermission(perm) {
			return errors.New("users: unknown permission " + string(perm))
		}
	}
	return nil
}
