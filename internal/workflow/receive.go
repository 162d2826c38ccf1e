package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// commitReceiveLocked marks the resolved order as received. Receiving an
// order that is already received commits cleanly with no state change and
// no duplicate activity, so re-scanning a processed delivery is harmless.
func (s *Session) commitReceiveLocked(ctx context.Context) error {
	order, changed, err := s.store.MarkOrderReceived(s.order.ID)
	if err != nil {
		return fmt.Errorf("receive order %s: %w", s.order.OrderNumber, err)
	}

	s.order = order
	if !changed {
		s.logger.Info("order already received",
			zap.String("session_id", s.id),
			zap.String("order_number", order.OrderNumber))
		return nil
	}

	s.logger.Info("order received",
		zap.String("session_id", s.id),
		zap.String("order_number", order.OrderNumber),
		zap.String("supplier", order.Supplier))

	s.events.PublishOrderReceived(ctx, order)
	if entries := s.store.RecentActivity(1); len(entries) == 1 {
		s.redis.PushActivity(ctx, entries[0])
	}
	return nil
}
