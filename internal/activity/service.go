package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service coordinates activity log reads and writes.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an entry. Failures are logged and swallowed: recording
// activity must never fail the operation being recorded.
func (s *Service) Record(ctx context.Context, e Entry) {
	if s == nil || s.repo == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, e); err != nil && s.logger != nil {
		s.logger.Warn("record activity", slog.String("action", e.Action), slog.Any("error", err))
	}
}

// Timeline fetches a page of entries with paging metadata.
func (s *Service) Timeline(ctx context.Context, f Filters) (Result, error) {
	if s == nil || s.repo == nil {
		return Result{}, fmt.Errorf("activity: repository not configured")
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.Timeline(ctx, f, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Purge removes entries older than retention days.
func (s *Service) Purge(ctx context.Context, retentionDays int) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, fmt.Errorf("activity: repository not configured")
	}
	if retentionDays <= 0 {
		retentionDays = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return s.repo.Purge(ctx, cutoff)
}
