package admin

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mutation actions carried by catalog change notifications
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

var (
	// ErrInvalidPrice is returned when a price is not a non-negative number
	ErrInvalidPrice = errors.New("price must be a non-negative number")
	// ErrConfirmationRequired is returned by deletes that were not confirmed
	ErrConfirmationRequired = errors.New("delete must be confirmed")
	// ErrNameRequired is returned when a name is blank after trimming
	ErrNameRequired = errors.New("name must not be empty")
)

// ChangePublisher announces catalog mutations to every storefront
type ChangePublisher interface {
	PublishCatalogChange(ctx context.Context, change models.CatalogChange) error
}

// Refresher reloads the local catalog snapshot
type Refresher interface {
	Refresh(ctx context.Context) error
}

// PriceInput accepts a price sent either as a JSON number or a string
type PriceInput string

// UnmarshalJSON implements json.Unmarshaler
func (p *PriceInput) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*p = PriceInput(str)
		return nil
	}
	if s == "null" {
		*p = ""
		return nil
	}
	*p = PriceInput(s)
	return nil
}

// ParsePrice converts a price input into a non-negative decimal
func ParsePrice(p PriceInput) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(string(p)))
	if err != nil || price.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return price, nil
}

// notifier publishes catalog changes, refreshing the local cache directly
// when the broker cannot be reached
type notifier struct {
	publisher ChangePublisher
	refresher Refresher
	logger    *zap.Logger
}

func (n notifier) notify(ctx context.Context, collection, action, id string) {
	util.AdminMutationsTotal.WithLabelValues(collection, action).Inc()

	change := models.CatalogChange{Collection: collection, Action: action, ID: id}
	err := errors.New("no publisher configured")
	if n.publisher != nil {
		err = n.publisher.PublishCatalogChange(ctx, change)
	}
	if err == nil {
		return
	}

	n.logger.Warn("Failed to publish catalog change, refreshing locally",
		zap.String("collection", collection),
		zap.String("action", action),
		zap.String("id", id),
		zap.Error(err))
	if n.refresher != nil {
		if err := n.refresher.Refresh(ctx); err != nil {
			n.logger.Error("Local catalog refresh failed", zap.Error(err))
		}
	}
}
