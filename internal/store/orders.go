package store

import (
	"fmt"
	"strings"

	"warehouse-service/internal/models"
)

// OrderFilter defines search and filter parameters for order listings.
type OrderFilter struct {
	Search string
	Status models.OrderStatus
}

// ListOrders returns orders in insertion order, narrowed by the filter.
// Search matches order number or supplier, case-insensitively.
func (s *Store) ListOrders(filter OrderFilter) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := make([]models.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		order := s.orders[id]
		if search != "" &&
			!strings.Contains(strings.ToLower(order.OrderNumber), search) &&
			!strings.Contains(strings.ToLower(order.Supplier), search) {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		out = append(out, order)
	}
	return out
}

// OrderCandidates returns all orders in their deterministic candidate order.
func (s *Store) OrderCandidates() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ordersLocked()
}

// GetOrderByID retrieves an order by ID.
func (s *Store) GetOrderByID(id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return order, nil
}

// OrderStatusCounts returns the per-status tallies shown on the orders page.
func (s *Store) OrderStatusCounts() map[models.OrderStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.OrderStatus]int)
	for _, id := range s.orderIDs {
		counts[s.orders[id].Status]++
	}
	return counts
}

// UpdateOrderStatus moves an order to a new status, enforcing the forward-
// only transition rules.
func (s *Store) UpdateOrderStatus(id string, to models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if !models.CanTransition(order.Status, to) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, order.Status, to)
	}

	order.Status = to
	s.orders[id] = order
	return order, nil
}

// MarkOrderReceived confirms a delivery. Receiving an already-received
// order is idempotent: no state change and no duplicate activity entry.
// The returned bool reports whether anything changed.
func (s *Store) MarkOrderReceived(id string) (models.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, false, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if order.Status == models.OrderStatusReceived {
		return order, false, nil
	}
	if !models.CanTransition(order.Status, models.OrderStatusReceived) {
		return models.Order{}, false, fmt.Errorf("%w: %s -> %s",
			models.ErrInvalidTransition, order.Status, models.OrderStatusReceived)
	}

	order.Status = models.OrderStatusReceived
	s.orders[id] = order

	s.appendActivityLocked(models.ActivityOrderReceived,
		fmt.Sprintf("%s from %s", order.OrderNumber, order.Supplier))
	return order, true, nil
}

// putOrder inserts a pre-built order, used by Seed.
func (s *Store) putOrder(order models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
	s.orderIDs = append(s.orderIDs, order.ID)
}
