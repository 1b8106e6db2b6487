package service

import (
	"context"
	"fmt"
	"time"

	"clinical-intel/internal/models"

	"go.uber.org/zap"
)

const (
	defaultActivityDays = 30
	maxActivityDays     = 365
	topDiagnosesLimit   = 10
)

type AnalyticsService struct {
	store  AnalyticsStore
	now    func() time.Time
	logger *zap.Logger
}

func NewAnalyticsService(store AnalyticsStore, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

func (s *AnalyticsService) Overview(ctx context.Context) (*models.Overview, error) {
	o, err := s.store.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load overview: %w", err)
	}
	return o, nil
}

func (s *AnalyticsService) Departments(ctx context.Context) ([]models.DepartmentStat, error) {
	stats, err := s.store.Departments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load department stats: %w", err)
	}
	return nonNil(stats), nil
}

func (s *AnalyticsService) TopDiagnoses(ctx context.Context) ([]models.DiagnosisCount, error) {
	dx, err := s.store.TopDiagnoses(ctx, topDiagnosesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load diagnoses: %w", err)
	}
	return nonNil(dx), nil
}

func (s *AnalyticsService) AgeDistribution(ctx context.Context) ([]models.AgeBucket, error) {
	ages, err := s.store.AgeDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load age distribution: %w", err)
	}
	return nonNil(ages), nil
}

// NoteActivity returns daily note counts for the last days days (default 30).
// Days without notes are filled with zero counts.
func (s *AnalyticsService) NoteActivity(ctx context.Context, days int) ([]models.DailyActivity, error) {
	if days <= 0 {
		days = defaultActivityDays
	}
	if days > maxActivityDays {
		days = maxActivityDays
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	rows, err := s.store.NoteActivity(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load note activity: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Date.UTC().Format(time.DateOnly)] += r.NoteCount
	}

	out := make([]models.DailyActivity, 0, days)
	for d := since; !d.After(today); d = d.AddDate(0, 0, 1) {
		out = append(out, models.DailyActivity{Date: d, NoteCount: counts[d.Format(time.DateOnly)]})
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
