package events

import (
	"context"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Log is an append-only sink for order events
type Log interface {
	AppendOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

// Connectivity reports whether the primary event log is reachable
type Connectivity interface {
	Online(ctx context.Context) bool
}

// Recorder appends analytics events without ever failing the caller
type Recorder struct {
	primary  Log
	fallback Log
	probe    Connectivity
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewRecorder creates a recorder. fallback receives offline events and may be nil.
func NewRecorder(primary, fallback Log, probe Connectivity, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		primary:  primary,
		fallback: fallback,
		probe:    probe,
		timeout:  timeout,
		now:      time.Now,
		logger:   util.GetLogger(),
	}
}

// Record merges the type, a timestamp and the payload into one event and
// appends it. Online events are stamped by the store; offline events carry
// the local clock and the offline marker.
func (r *Recorder) Record(ctx context.Context, eventType string, payload models.OrderEventPayload) *models.OrderEvent {
	ctx, span := util.StartSpan(ctx, "Recorder.Record")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	event := &models.OrderEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		BranchID:   payload.BranchID,
		BranchName: payload.BranchName,
		Language:   payload.Language,
		ItemCount:  payload.ItemCount,
		Items:      payload.Items,
		Total:      payload.Total,
		Notes:      payload.Notes,
		Timestamp:  models.ServerTimestamp(),
	}

	sink := r.primary
	if !r.probe.Online(ctx) {
		event.Timestamp = models.NativeTimestamp(r.now())
		event.Offline = true
		if r.fallback != nil {
			sink = r.fallback
		}
	}

	if err := sink.AppendOrderEvent(ctx, event); err != nil {
		util.EventsFailedTotal.WithLabelValues(eventType).Inc()
		r.logger.Error("Failed to record order event",
			zap.String("event_id", event.ID),
			zap.String("type", eventType),
			zap.Bool("offline", event.Offline),
			zap.Error(err))
		return event
	}

	util.EventsRecordedTotal.WithLabelValues(eventType).Inc()
	return event
}
