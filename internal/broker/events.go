package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing order events and catalog changes
type EventPublisher struct {
	orders  *Producer
	catalog *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(orders, catalog *Producer) *EventPublisher {
	return &EventPublisher{orders: orders, catalog: catalog}
}

// AppendOrderEvent publishes an order event to the event log topic
func (ep *EventPublisher) AppendOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	return ep.orders.PublishEvent(ctx, event.ID, event)
}

// PublishCatalogChange tells every storefront that a collection changed
func (ep *EventPublisher) PublishCatalogChange(ctx context.Context, change models.CatalogChange) error {
	key := fmt.Sprintf("%s-%s", change.Collection, change.ID)
	return ep.catalog.PublishEvent(ctx, key, change)
}

// envelope holds the fields used to tell message kinds apart
type envelope struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
}

// EventHandler handles incoming events
type EventHandler struct {
	onOrderEvent    func(context.Context, *models.OrderEvent) error
	onCatalogChange func(context.Context, *models.CatalogChange) error
	logger          *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderEvent registers a handler for order events
func (eh *EventHandler) OnOrderEvent(handler func(context.Context, *models.OrderEvent) error) {
	eh.onOrderEvent = handler
}

// OnCatalogChange registers a handler for catalog change notifications
func (eh *EventHandler) OnCatalogChange(handler func(context.Context, *models.CatalogChange) error) {
	eh.onCatalogChange = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	switch {
	case env.Type == models.EventTypeOrderClicked || env.Type == models.EventTypeOrderSubmitted:
		if eh.onOrderEvent != nil {
			var event models.OrderEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal order event: %w", err)
			}
			return eh.onOrderEvent(ctx, &event)
		}

	case env.Collection != "":
		if eh.onCatalogChange != nil {
			var change models.CatalogChange
			if err := json.Unmarshal(msg.Value, &change); err != nil {
				return fmt.Errorf("failed to unmarshal catalog change: %w", err)
			}
			return eh.onCatalogChange(ctx, &change)
		}

	default:
		eh.logger.Warn("Unhandled event", zap.String("type", env.Type), zap.ByteString("key", msg.Key))
	}

	return nil
}
