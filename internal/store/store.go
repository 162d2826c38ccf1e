package store

import (
	"errors"
	"sync"
	"time"

	"warehouse-service/internal/models"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// activityCap bounds the in-memory activity feed.
const activityCap = 200

// Store owns the canonical Item and Order state. All mutation goes through
// its methods under a single writer lock; statuses and alerts are derived on
// read and never stored.
type Store struct {
	mu sync.RWMutex

	items    map[string]models.Item
	itemIDs  []string // insertion order, also the deterministic candidate order
	orders   map[string]models.Order
	orderIDs []string
	activity []models.Activity // most recent first
	now      func() time.Time
}

func (s *Store) newID() string {
	return uuid.New().String()
}

// NewStore creates an empty store. Call Seed to load the demo data set.
func NewStore() *Store {
	return &Store{
		items:  make(map[string]models.Item),
		orders: make(map[string]models.Order),
		now:    time.Now,
	}
}

// AppendActivity records an audit entry at the head of the feed.
func (s *Store) AppendActivity(action, description string) models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendActivityLocked(action, description)
}

func (s *Store) appendActivityLocked(action, description string) models.Activity {
	entry := models.Activity{
		ID:          s.newID(),
		Action:      action,
		Description: description,
		Timestamp:   s.now(),
	}
	s.activity = append([]models.Activity{entry}, s.activity...)
	if len(s.activity) > activityCap {
		s.activity = s.activity[:activityCap]
	}
	return entry
}

// RecentActivity returns up to limit entries, most recent first.
func (s *Store) RecentActivity(limit int) []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.activity) {
		limit = len(s.activity)
	}
	out := make([]models.Activity, limit)
	copy(out, s.activity[:limit])
	return out
}

// Alerts regenerates the alert set from current item quantities.
func (s *Store) Alerts() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.DeriveAlerts(s.itemsLocked(), s.now())
}

// Summary is the dashboard roll-up.
type Summary struct {
	TotalItems    int `json:"total_items"`
	InStock       int `json:"in_stock"`
	PendingOrders int `json:"pending_orders"`
	AlertCount    int `json:"alert_count"`
}

// DashboardSummary computes the headline counts for the dashboard.
func (s *Store) DashboardSummary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{TotalItems: len(s.itemIDs)}
	for _, id := range s.itemIDs {
		if s.items[id].Status() == models.StatusInStock {
			sum.InStock++
		}
	}
	for _, id := range s.orderIDs {
		switch s.orders[id].Status {
		case models.OrderStatusPending, models.OrderStatusInTransit:
			sum.PendingOrders++
		}
	}
	sum.AlertCount = len(models.DeriveAlerts(s.itemsLocked(), s.now()))
	return sum
}

func (s *Store) itemsLocked() []models.Item {
	items := make([]models.Item, 0, len(s.itemIDs))
	for _, id := range s.itemIDs {
		items = append(items, s.items[id])
	}
	return items
}

func (s *Store) ordersLocked() []models.Order {
	orders := make([]models.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		orders = append(orders, s.orders[id])
	}
	return orders
}
