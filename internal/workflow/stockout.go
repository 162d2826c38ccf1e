package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"
)

// commitStockOutLocked removes the selected quantity from stock. The store
// applies the decrement and the activity record under one lock, so the
// mutation is all-or-nothing; the re-derived status is visible to readers
// the moment the commit lands.
func (s *Session) commitStockOutLocked(ctx context.Context) error {
	if s.quantity < 1 || s.quantity > s.item.Quantity {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidQuantity, s.quantity, s.item.Quantity)
	}

	updated, err := s.store.StockOut(s.item.ID, s.quantity)
	if err != nil {
		return fmt.Errorf("stock out %s: %w", s.item.ID, err)
	}

	delta := -s.quantity
	s.item = updated

	util.StockOutUnitsTotal.Add(float64(s.quantity))
	s.logger.Info("stock out committed",
		zap.String("session_id", s.id),
		zap.String("item_id", updated.ID),
		zap.Int("quantity", s.quantity),
		zap.Int("remaining", updated.Quantity),
		zap.String("status", string(updated.Status())))

	s.events.PublishStockAdjusted(ctx, updated, delta)
	if updated.Quantity <= updated.MinStock {
		s.events.PublishAlertRaised(ctx, models.Alert{
			ItemName:     updated.Name,
			CurrentStock: updated.Quantity,
			MinStock:     updated.MinStock,
			Severity:     models.DeriveAlertSeverity(updated.Quantity, updated.MinStock),
			CreatedAt:    updated.LastUpdated,
		})
	}

	if entries := s.store.RecentActivity(1); len(entries) == 1 {
		s.redis.PushActivity(ctx, entries[0])
	}
	return nil
}
