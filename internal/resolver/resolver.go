// Package resolver maps decoded scan payloads to domain entities.
//
// The lookup is an ordered rule table. The trailing "demo" rules make the
// cascade deliberately lenient — a non-empty candidate set always resolves
// to something, which is what the hardware-scanning demo flows rely on. Use
// NewStrict to drop those rules in environments where a miss should fail.
package resolver

import (
	"errors"
	"strings"

	"warehouse-service/internal/models"
)

// ErrNoCandidates is returned when the candidate set is empty. It is the
// only way resolution fails: any non-empty set resolves via the fallbacks.
var ErrNoCandidates = errors.New("no candidates to resolve against")

type itemRule func(code string, candidates []models.Item) (models.Item, bool)

type orderRule func(code string, candidates []models.Order) (models.Order, bool)

// Resolver applies its rule tables in order and returns the first match.
type Resolver struct {
	itemRules  []itemRule
	orderRules []orderRule
}

// New builds the full demo cascade:
//
//	items:  exact ID match -> name substring match -> first candidate
//	orders: exact order number match -> first in-transit -> first candidate
func New() *Resolver {
	return &Resolver{
		itemRules:  []itemRule{itemByID, itemByNameSubstring, firstItem},
		orderRules: []orderRule{orderByNumber, firstInTransitOrder, firstOrder},
	}
}

// NewStrict matches on strong identifiers only.
func NewStrict() *Resolver {
	return &Resolver{
		itemRules:  []itemRule{itemByID},
		orderRules: []orderRule{orderByNumber},
	}
}

// ResolveItem maps a decoded code to an item.
func (r *Resolver) ResolveItem(code string, candidates []models.Item) (models.Item, error) {
	if len(candidates) == 0 {
		return models.Item{}, ErrNoCandidates
	}
	for _, rule := range r.itemRules {
		if item, ok := rule(code, candidates); ok {
			return item, nil
		}
	}
	return models.Item{}, errors.New("unresolved item code: " + code)
}

// ResolveOrder maps a decoded code to an order.
func (r *Resolver) ResolveOrder(code string, candidates []models.Order) (models.Order, error) {
	if len(candidates) == 0 {
		return models.Order{}, ErrNoCandidates
	}
	for _, rule := range r.orderRules {
		if order, ok := rule(code, candidates); ok {
			return order, nil
		}
	}
	return models.Order{}, errors.New("unresolved order code: " + code)
}

func itemByID(code string, candidates []models.Item) (models.Item, bool) {
	for _, item := range candidates {
		if strings.EqualFold(item.ID, code) {
			return item, true
		}
	}
	return models.Item{}, false
}

func itemByNameSubstring(code string, candidates []models.Item) (models.Item, bool) {
	needle := strings.ToLower(code)
	for _, item := range candidates {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return item, true
		}
	}
	return models.Item{}, false
}

func firstItem(_ string, candidates []models.Item) (models.Item, bool) {
	return candidates[0], true
}

func orderByNumber(code string, candidates []models.Order) (models.Order, bool) {
	for _, order := range candidates {
		if strings.EqualFold(order.OrderNumber, code) {
			return order, true
		}
	}
	return models.Order{}, false
}

func firstInTransitOrder(_ string, candidates []models.Order) (models.Order, bool) {
	for _, order := range candidates {
		if order.Status == models.OrderStatusInTransit {
			return order, true
		}
	}
	return models.Order{}, false
}

func firstOrder(_ string, candidates []models.Order) (models.Order, bool) {
	return candidates[0], true
}
