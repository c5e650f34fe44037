package rules

import (
	"context"
	"errors"
)

// RepositoryPort defines persistence for the rules singleton.
type RepositoryPort interface {
	Get(ctx context.Context) (Rules, bool, error)
	Save(ctx context.Context, rules Rules) error
}

// Service reads and updates business rules.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Current returns the stored rules, falling back to defaults when the
// singleton has never been written.
func (s *Service) Current(ctx context.Context) (Rules, error) {
	stored, ok, err := s.repo.Get(ctx)
	if err != nil {
		return Rules{}, err
	}
	if !ok {
		return Defaults(), nil
	}
	return stored, nil
}

// Update replaces the rules wholesale after bounds validation.
func (s *Service) Update(ctx context.Context, next Rules) (Rules, error) {
	if next.MaxDiscountPercentage < 0 || next.MaxDiscountPercentage > 100 {
		return Rules{}, errors.New("rules: maxDiscountPercentage must be between 0 and 100")
	}
	if next.MinTimeBetweenRequests < 0 {
		return Rules{}, errors.New("rules: minTimeBetweenRequests must be >= 0")
	}
	if next.DailyVolumeLimit < 0 {
		return Rules{}, errors.New("rules: dailyVolumeLimit must be >= 0")
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return Rules{}, err
	}
	return next, nil
}
