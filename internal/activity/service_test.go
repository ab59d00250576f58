package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	entries     []Entry
	insertErr   error
	timelineErr error
	purged      time.Time
	lastLimit   int
}

func (m *mockRepo) Insert(ctx context.Context, e Entry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepo) Timeline(ctx context.Context, f Filters, limit, offset int) ([]Entry, error) {
	m.lastLimit = limit
	if m.timelineErr != nil {
		return nil, m.timelineErr
	}
	if offset >= len(m.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.entries) {
		end = len(m.entries)
	}
	return m.entries[offset:end], nil
}

func (m *mockRepo) Purge(ctx context.Context, before time.Time) (int64, error) {
	m.purged = before
	return 3, nil
}

func TestRecordStampsTime(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil)
	svc.Record(context.Background(), Entry{Actor: "bursar", Action: ActionLogin})
	require.Len(t, repo.entries, 1)
	assert.False(t, repo.entries[0].OccurredAt.IsZero())
}

func TestRecordSwallowsRepositoryErrors(t *testing.T) {
	repo := &mockRepo{insertErr: errors.New("db down")}
	svc := NewService(repo, nil)
	// Must not panic or surface the error.
	svc.Record(context.Background(), Entry{Actor: "bursar", Action: ActionLogout})
}

func TestTimelinePaging(t *testing.T) {
	repo := &mockRepo{}
	for i := 0; i < 25; i++ {
		repo.entries = append(repo.entries, Entry{ID: int64(i + 1), Action: ActionLogin})
	}
	svc := NewService(repo, nil)

	res, err := svc.Timeline(context.Background(), Filters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 20)
	assert.True(t, res.Paging.HasNext)
	assert.Equal(t, 2, res.Paging.NextPage)

	res, err = svc.Timeline(context.Background(), Filters{Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 5)
	assert.False(t, res.Paging.HasNext)
	assert.Equal(t, 1, res.Paging.PrevPage)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil)
	res, err := svc.Timeline(context.Background(), Filters{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Paging.PageSize)
}

func TestPurgeCutoff(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil)
	n, err := svc.Purge(context.Background(), 30)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -30), repo.purged, time.Minute)
}
