package worker

import (
	"context"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// EventLog persists consumed order events
type EventLog interface {
	AppendOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

// Refresher reloads a catalog snapshot
type Refresher interface {
	Refresh(ctx context.Context) error
}

// EventWorker drains the order event topic into the event store
type EventWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewEventWorker creates a new event worker
func NewEventWorker(consumer *broker.Consumer, log EventLog) *EventWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderEvent(persistOrderEvent(log))

	return &EventWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

func persistOrderEvent(log EventLog) func(context.Context, *models.OrderEvent) error {
	return func(ctx context.Context, event *models.OrderEvent) error {
		ctx, span := util.StartSpan(ctx, "EventWorker.persist")
		defer span.End()
		return log.AppendOrderEvent(ctx, event)
	}
}

// Start starts the worker
func (w *EventWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting event worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *EventWorker) Stop() error {
	w.logger.Info("Stopping event worker")
	return w.consumer.Close()
}

// CatalogWorker refreshes the catalog cache on change notifications and
// on a fixed interval as a safety net for missed notifications
type CatalogWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	refresher    Refresher
	interval     time.Duration
	logger       *zap.Logger
}

// NewCatalogWorker creates a new catalog worker. interval <= 0 disables
// periodic refreshes.
func NewCatalogWorker(consumer *broker.Consumer, refresher Refresher, interval time.Duration) *CatalogWorker {
	w := &CatalogWorker{
		consumer:  consumer,
		refresher: refresher,
		interval:  interval,
		logger:    util.GetLogger(),
	}

	w.eventHandler = broker.NewEventHandler()
	w.eventHandler.OnCatalogChange(w.handleChange)
	return w
}

func (w *CatalogWorker) handleChange(ctx context.Context, change *models.CatalogChange) error {
	w.logger.Info("Catalog changed",
		zap.String("collection", change.Collection),
		zap.String("action", change.Action),
		zap.String("id", change.ID))

	// A failed refresh keeps the old snapshot; the message is still committed
	// because the periodic refresh will catch up.
	if err := w.refresher.Refresh(ctx); err != nil {
		w.logger.Error("Catalog refresh after change failed", zap.Error(err))
	}
	return nil
}

// Start starts the worker
func (w *CatalogWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting catalog worker", zap.Duration("interval", w.interval))
	if w.interval > 0 {
		go w.refreshLoop(ctx)
	}
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

func (w *CatalogWorker) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.refresher.Refresh(ctx); err != nil {
				w.logger.Error("Periodic catalog refresh failed", zap.Error(err))
			}
		}
	}
}

// Stop stops the worker
func (w *CatalogWorker) Stop() error {
	w.logger.Info("Stopping catalog worker")
	return w.consumer.Close()
}
