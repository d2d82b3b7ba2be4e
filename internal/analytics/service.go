package analytics

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// EventSource reads order events from the event log
type EventSource interface {
	ListOrderEventsSince(ctx context.Context, since time.Time) ([]models.OrderEvent, error)
}

// Service loads a window of events and aggregates it
type Service struct {
	source EventSource
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates an analytics service computing windows in loc
func NewService(source EventSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		source: source,
		loc:    loc,
		now:    time.Now,
		logger: util.GetLogger(),
	}
}

// Report aggregates the events of the given period
func (s *Service) Report(ctx context.Context, period Period) (*Report, error) {
	ctx, span := util.StartSpan(ctx, "AnalyticsService.Report")
	defer span.End()

	since := WindowStart(period, s.now().In(s.loc))

	events, err := s.source.ListOrderEventsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load order events: %w", err)
	}

	report := Aggregate(events, s.loc)
	s.logger.Debug("Analytics computed",
		zap.String("period", string(period)),
		zap.Time("since", since),
		zap.Int("events", len(events)),
		zap.Int("orders", report.TotalOrders))
	return &report, nil
}
