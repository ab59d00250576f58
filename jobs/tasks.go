// Package jobs runs background maintenance for the dashboard.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/activity"
	jobmetrics "github.com/umarbinmusa/ERP-CLIENT-sub000/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskActivityPurge trims the local activity log to its retention window.
	TaskActivityPurge = "activity:purge"
)

// ActivityPurgePayload carries the retention window for a purge run.
type ActivityPurgePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewActivityPurgeTask constructs an Asynq task.
func NewActivityPurgeTask(payload ActivityPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskActivityPurge, data), nil
}

// ActivityPurgeHandler returns the handler for TaskActivityPurge tasks.
// metrics may be nil.
func ActivityPurgeHandler(svc *activity.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ActivityPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track(TaskActivityPurge)
		started := time.Now()
		removed, err := svc.Purge(ctx, payload.RetentionDays)
		if err != nil {
			return tracker.End(err)
		}
		if logger != nil {
			logger.Info("activity log purged",
				slog.Int64("removed", removed),
				slog.Int("retention_days", payload.RetentionDays),
				slog.Duration("took", time.Since(started)),
			)
		}
		return tracker.End(nil)
	}
}
