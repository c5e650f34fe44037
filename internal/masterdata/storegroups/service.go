package storegroups

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/promoflow/promoflow/internal/platform/httpx"
)

// RepositoryPort describes storage operations used by Service.
type RepositoryPort interface {
	List(ctx context.Context) ([]StoreGroup, error)
	Get(ctx context.Context, id string) (StoreGroup, error)
	Create(ctx context.Context, group StoreGroup) error
	Update(ctx context.Context, group StoreGroup) error
	Delete(ctx context.Context, id string) error
	IDs(ctx context.Context) (map[string]struct{}, error)
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]StoreGroup, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (StoreGroup, error) {
	if strings.TrimSpace(id) == "" {
		return StoreGroup{}, httpx.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, group StoreGroup) (StoreGroup, error) {
	if err := validate(group); err != nil {
		return StoreGroup{}, err
	}
	if strings.TrimSpace(group.ID) == "" {
		group.ID = "grp-" + uuid.NewString()
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return StoreGroup{}, err
	}
	return group, nil
}

func (s *Service) Update(ctx context.Context, group StoreGroup) error {
	if strings.TrimSpace(group.ID) == "" {
		return httpx.ErrNotFound
	}
	if err := validate(group); err != nil {
		return err
	}
	return s.repo.Update(ctx, group)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// IDs exposes the existing group ids for bulk-row validation.
func (s *Service) IDs(ctx context.Context) (map[string]struct{}, error) {
	return s.repo.IDs(ctx)
}

func validate(group StoreGroup) error {
	if strings.TrimSpace(group.Name) == "" {
		return fmt.Errorf("%w: group name is required", httpx.ErrValidation)
	}
	return nil
}
