package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRulesRepo struct {
	stored *Rules
}

func (r *memoryRulesRepo) Get(ctx context.Context) (Rules, bool, error) {
	if r.stored == nil {
		return Rules{}, false, nil
	}
	return *r.stored, true, nil
}

func (r *memoryRulesRepo) Save(ctx context.Context, rules Rules) error {
	r.stored = &rules
	return nil
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	svc := NewService(&memoryRulesRepo{})
	got, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, Defaults(), got)
}

func TestUpdateReplacesWholesale(t *testing.T) {
	repo := &memoryRulesRepo{}
	svc := NewService(repo)

	next := Rules{MaxDiscountPercentage: 30, MinTimeBetweenRequests: 12, DailyVolumeLimit: 5}
	updated, err := svc.Update(context.Background(), next)
	require.NoError(t, err)
	require.Equal(t, next, updated)

	got, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, next, got)
}

func TestUpdateRejectsOutOfBounds(t *testing.T) {
	svc := NewService(&memoryRulesRepo{})

	_, err := svc.Update(context.Background(), Rules{MaxDiscountPercentage: 120})
	require.Error(t, err)

	_, err = svc.Update(context.Background(), Rules{MaxDiscountPercentage: 10, MinTimeBetweenRequests: -1})
	require.Error(t, err)

	_, err = svc.Update(context.Background(), Rules{MaxDiscountPercentage: 10, DailyVolumeLimit: -2})
	require.Error(t, err)
}
