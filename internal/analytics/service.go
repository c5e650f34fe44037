// Package analytics aggregates request data into dashboard KPIs and
// tracks the diffusion-volume data freshness marker.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/promoflow/promoflow/internal/promo"
	"github.com/promoflow/promoflow/internal/rules"
)

const volumeUploadKey = "promo:volume:last_upload"

// RequestsSource supplies the current request snapshot.
type RequestsSource interface {
	Snapshot() promo.State
}

// RulesSource supplies the current business-rule thresholds.
type RulesSource interface {
	Current(ctx context.Context) (rules.Rules, error)
}

// WeekdayVolume counts promotions starting on one weekday, Sunday
// first. AboveLimit flags weekdays whose count exceeds the
// dailyVolumeLimit threshold.
type WeekdayVolume struct {
	Weekday    string `json:"weekday"`
	Promotions int    `json:"promotions"`
	AboveLimit bool   `json:"aboveLimit"`
}

// Summary is the dashboard KPI set. Averages cover approved requests
// only; rejected counts cover the current calendar month.
type Summary struct {
	ActiveToday               int             `json:"activeToday"`
	Pending                   int             `json:"pending"`
	RejectedThisMonth         int             `json:"rejectedThisMonth"`
	AverageDiscountValue      float64         `json:"averageDiscountValue"`
	AverageDiscountPercentage float64         `json:"averageDiscountPercentage"`
	DailyVolumeLimit          int             `json:"dailyVolumeLimit"`
	DailyVolume               []WeekdayVolume `json:"dailyVolume"`
}

// VolumeFreshness reports when the diffusion-volume dataset was last
// loaded, classified against today's date.
type VolumeFreshness struct {
	LastUpload *time.Time `json:"lastUpload,omitempty"`
	Status     string     `json:"status"`
}

// Freshness classifications.
const (
	FreshnessNone      = "NENHUMA_CARGA"
	FreshnessToday     = "ATUALIZADO_HOJE"
	FreshnessYesterday = "ATUALIZADO_ONTEM"
	FreshnessStale     = "DESATUALIZADO"
)

var weekdays = []string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

// Service coordinates KPI computation with the cache layer. Concurrent
// summary requests for the same key collapse into one computation.
type Service struct {
	requests RequestsSource
	rules    RulesSource
	cache    *Cache
	redis    *redis.Client
	group    singleflight.Group
	now      func() time.Time
}

// NewService wires the request snapshot and rules sources with the
// cache helper. The redis client backs the volume-upload marker and
// may be nil.
func NewService(requests RequestsSource, rulesSrc RulesSource, cache *Cache, client *redis.Client) *Service {
	return &Service{
		requests: requests,
		rules:    rulesSrc,
		cache:    cache,
		redis:    client,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Summary returns the dashboard KPIs, cached per calendar date.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	day := promo.DateOnly(s.now()).Format(promo.DateLayout)
	key, err := s.cache.BuildKey(ctx, "promo", "analytics", "summary", day)
	if err != nil {
		return Summary{}, err
	}
	result, err, _ := s.group.Do(key, func() (any, error) {
		var out Summary
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return s.compute(ctx)
		})
		return out, err
	})
	if err != nil {
		return Summary{}, err
	}
	return result.(Summary), nil
}

func (s *Service) compute(ctx context.Context) (Summary, error) {
	now := s.now()
	today := promo.DateOnly(now)
	snapshot := s.requests.Snapshot()
	thresholds, err := s.rules.Current(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load rules: %w", err)
	}

	out := Summary{
		DailyVolumeLimit: thresholds.DailyVolumeLimit,
		DailyVolume:      make([]WeekdayVolume, 7),
	}
	for i, name := range weekdays {
		out.DailyVolume[i] = WeekdayVolume{Weekday: name}
	}

	var approved int
	var totalDiscount, totalOriginal float64
	for _, r := range snapshot.Requests {
		if !r.StartDate.IsZero() {
			out.DailyVolume[int(r.StartDate.Weekday())].Promotions++
		}
		switch r.Status {
		case promo.StatusPendente:
			out.Pending++
		case promo.StatusAprovada:
			approved++
			totalDiscount += r.PriceFrom - r.PriceTo
			totalOriginal += r.PriceFrom
			if !today.Before(r.StartDate) && !today.After(r.EndDate) {
				out.ActiveToday++
			}
		case promo.StatusReprovada:
			if r.CreatedAt.Year() == now.Year() && r.CreatedAt.Month() == now.Month() {
				out.RejectedThisMonth++
			}
		}
	}
	if approved > 0 {
		out.AverageDiscountValue = totalDiscount / float64(approved)
	}
	if totalOriginal > 0 {
		out.AverageDiscountPercentage = totalDiscount / totalOriginal * 100
	}
	for i := range out.DailyVolume {
		out.DailyVolume[i].AboveLimit = out.DailyVolume[i].Promotions > thresholds.DailyVolumeLimit
	}
	return out, nil
}

// RecordVolumeUpload marks a diffusion-volume data load as completed
// now and invalidates cached summaries.
func (s *Service) RecordVolumeUpload(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Set(ctx, volumeUploadKey, s.now().Format(time.RFC3339), 0).Err(); err != nil {
			return err
		}
	}
	return s.cache.Bump(ctx)
}

// VolumeFreshness classifies the last diffusion-volume load against
// today's date.
func (s *Service) VolumeFreshness(ctx context.Context) (VolumeFreshness, error) {
	if s.redis == nil {
		return VolumeFreshness{Status: FreshnessNone}, nil
	}
	raw, err := s.redis.Get(ctx, volumeUploadKey).Result()
	if err == redis.Nil {
		return VolumeFreshness{Status: FreshnessNone}, nil
	}
	if err != nil {
		return VolumeFreshness{}, err
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return VolumeFreshness{Status: FreshnessNone}, nil
	}

	today := promo.DateOnly(s.now())
	uploaded := promo.DateOnly(last)
	status := FreshnessStale
	switch {
	case uploaded.Equal(today):
		status = FreshnessToday
	case uploaded.Equal(today.AddDate(0, 0, -1)):
		status = FreshnessYesterday
	}
	return VolumeFreshness{LastUpload: &last, Status: status}, nil
}
