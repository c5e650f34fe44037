package skufamilies

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/promoflow/promoflow/internal/platform/httpx"
)

// RepositoryPort describes storage operations used by Service.
type RepositoryPort interface {
	List(ctx context.Context) ([]SKUFamily, error)
	Get(ctx context.Context, id string) (SKUFamily, error)
	Create(ctx context.Context, family SKUFamily) error
	Update(ctx context.Context, family SKUFamily) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]SKUFamily, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (SKUFamily, error) {
	if strings.TrimSpace(id) == "" {
		return SKUFamily{}, httpx.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, family SKUFamily) (SKUFamily, error) {
	if strings.TrimSpace(family.Name) == "" {
		return SKUFamily{}, fmt.Errorf("%w: family name is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(family.ID) == "" {
		family.ID = "fam-" + uuid.NewString()
	}
	if err := s.repo.Create(ctx, family); err != nil {
		return SKUFamily{}, err
	}
	return family, nil
}

func (s *Service) Update(ctx context.Context, family SKUFamily) error {
	if strings.TrimSpace(family.ID) == "" {
		return httpx.ErrNotFound
	}
	if strings.TrimSpace(family.Name) == "" {
		return fmt.Errorf("%w: family name is required", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, family)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
