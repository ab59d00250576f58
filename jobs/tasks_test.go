package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/activity"
)

type stubRepo struct {
	cutoff  time.Time
	removed int64
}

func (s *stubRepo) Insert(ctx context.Context, e activity.Entry) error { return nil }

func (s *stubRepo) Timeline(ctx context.Context, f activity.Filters, limit, offset int) ([]activity.Entry, error) {
	return nil, nil
}

func (s *stubRepo) Purge(ctx context.Context, before time.Time) (int64, error) {
	s.cutoff = before
	return s.removed, nil
}

func TestActivityPurgeHandlerUsesPayloadRetention(t *testing.T) {
	repo := &stubRepo{removed: 42}
	handler := ActivityPurgeHandler(activity.NewService(repo, nil), nil, nil)

	task, err := NewActivityPurgeTask(ActivityPurgePayload{RetentionDays: 30})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	wantCutoff := time.Now().UTC().AddDate(0, 0, -30)
	assert.WithinDuration(t, wantCutoff, repo.cutoff, time.Minute)
}

func TestActivityPurgeHandlerSkipsRetryOnBadPayload(t *testing.T) {
	repo := &stubRepo{}
	handler := ActivityPurgeHandler(activity.NewService(repo, nil), nil, nil)

	err := handler(context.Background(), asynq.NewTask(TaskActivityPurge, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
