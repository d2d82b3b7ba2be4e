package store

import (
	"context"
	"time"

	"storefront/internal/models"
)

// AppendOrderEvent inserts an analytics event. Events without a client
// timestamp are stamped with the database clock. Replays of the same event
// ID are ignored.
func (s *Store) AppendOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	query := `
		INSERT INTO order_events
			(id, type, branch_id, branch_name, language, item_count, items, total, notes, timestamp, offline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::timestamptz, NOW()), $11)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.Type, event.BranchID, event.BranchName, event.Language,
		event.ItemCount, event.Items, event.Total, event.Notes, event.Timestamp, event.Offline)
	return err
}

// ListOrderEventsSince retrieves events at or after since, oldest first
func (s *Store) ListOrderEventsSince(ctx context.Context, since time.Time) ([]models.OrderEvent, error) {
	events := []models.OrderEvent{}
	err := s.db.SelectContext(ctx, &events,
		"SELECT * FROM order_events WHERE timestamp >= $1 ORDER BY timestamp, id", since)
	return events, err
}
