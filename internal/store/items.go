package store

import (
	"fmt"
	"strings"

	"warehouse-service/internal/models"
)

// ItemFilter defines search and filter parameters for item listings.
type ItemFilter struct {
	Search   string
	Category string
	Status   models.ItemStatus
}

// ListItems returns items in insertion order, narrowed by the filter.
func (s *Store) ListItems(filter ItemFilter) []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := make([]models.Item, 0, len(s.itemIDs))
	for _, id := range s.itemIDs {
		item := s.items[id]
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Status != "" && item.Status() != filter.Status {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ItemCandidates returns all items in their deterministic candidate order.
func (s *Store) ItemCandidates() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemsLocked()
}

// AttentionItems returns the items that are not fully stocked, for the
// dashboard attention list.
func (s *Store) AttentionItems() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, 0)
	for _, id := range s.itemIDs {
		if item := s.items[id]; item.Status() != models.StatusInStock {
			out = append(out, item)
		}
	}
	return out
}

// GetItemByID retrieves an item by ID.
func (s *Store) GetItemByID(id string) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return models.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// Categories returns the distinct item categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, id := range s.itemIDs {
		cat := s.items[id].Category
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

// CreateItem validates and adds a new item to the catalog, recording an
// activity entry.
func (s *Store) CreateItem(name, category string, quantity, minStock int, price float64) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := models.NewItem(s.newID(), name, category, quantity, minStock, price, s.now())
	if err != nil {
		return models.Item{}, err
	}

	s.items[item.ID] = item
	s.itemIDs = append(s.itemIDs, item.ID)
	s.appendActivityLocked(models.ActivityItemAdded,
		fmt.Sprintf("%s added to inventory (%d on hand)", item.Name, item.Quantity))
	return item, nil
}

// putItem inserts a pre-built item, used by Seed.
func (s *Store) putItem(item models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	s.itemIDs = append(s.itemIDs, item.ID)
}

// StockOut atomically decrements an item's quantity and records the
// activity entry. The whole commit happens under one lock so a partially
// applied mutation is never observable. Quantity bounds are the caller's
// contract; a delta that would push stock negative is rejected.
func (s *Store) StockOut(id string, quantity int) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return models.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if quantity <= 0 {
		return models.Item{}, fmt.Errorf("stock out quantity must be > 0, got %d", quantity)
	}
	if quantity > item.Quantity {
		return models.Item{}, fmt.Errorf("%w: have %d, requested %d", ErrInsufficientStock, item.Quantity, quantity)
	}

	item.Quantity -= quantity
	item.LastUpdated = s.now()
	s.items[id] = item

	s.appendActivityLocked(models.ActivityStockOut,
		fmt.Sprintf("Stocked out %dx %s (%d remaining)", quantity, item.Name, item.Quantity))
	return item, nil
}
