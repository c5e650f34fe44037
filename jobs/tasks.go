// Package jobs holds the background task definitions and the Asynq
// worker that runs them.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/promoflow/promoflow/internal/analytics"
	"github.com/promoflow/promoflow/internal/promo"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPendingReminder nudges approvers about requests sitting in
	// PENDENTE past the configured age.
	TaskPendingReminder = "promo:pending_reminder"
	// TaskAnalyticsWarmup precomputes the dashboard summary so the
	// first morning request hits a warm cache.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// PendingReminderPayload configures one reminder scan.
type PendingReminderPayload struct {
	OlderThan time.Duration `json:"olderThan"`
}

// NewPendingReminderTask constructs an Asynq task.
func NewPendingReminderTask(payload PendingReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPendingReminder, data), nil
}

// PendingSource exposes the requests awaiting a decision.
type PendingSource interface {
	Pending() []promo.Request
}

// PendingReminderJob scans for stale pending requests.
type PendingReminderJob struct {
	requests PendingSource
	logger   *slog.Logger
	now      func() time.Time
}

func NewPendingReminderJob(requests PendingSource, logger *slog.Logger) *PendingReminderJob {
	return &PendingReminderJob{
		requests: requests,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes TaskPendingReminder tasks.
func (j *PendingReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload PendingReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OlderThan <= 0 {
		payload.OlderThan = 48 * time.Hour
	}

	cutoff := j.now().Add(-payload.OlderThan)
	var stale []string
	for _, r := range j.requests.Pending() {
		if r.CreatedAt.Before(cutoff) {
			stale = append(stale, r.ID)
		}
	}
	if len(stale) == 0 {
		j.logger.Info("pending reminder scan clean", "older_than", payload.OlderThan.String())
		return nil
	}
	// Placeholder: deliver through the notification channel once one exists.
	j.logger.Warn("pending requests awaiting decision",
		"count", len(stale),
		"older_than", payload.OlderThan.String(),
		"requests", stale,
	)
	return nil
}

// NewAnalyticsWarmupTask constructs an Asynq task.
func NewAnalyticsWarmupTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskAnalyticsWarmup, nil), nil
}

// AnalyticsWarmupJob precomputes the dashboard summary.
type AnalyticsWarmupJob struct {
	service *analytics.Service
	logger  *slog.Logger
}

func NewAnalyticsWarmupJob(service *analytics.Service, logger *slog.Logger) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{service: service, logger: logger}
}

// Handle processes TaskAnalyticsWarmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	summary, err := j.service.Summary(ctx)
	if err != nil {
		return err
	}
	j.logger.Info("analytics summary warmed",
		"pending", summary.Pending,
		"active_today", summary.ActiveToday,
	)
	return nil
}
