package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Item represents a trackable inventory product.
//
// Status is intentionally absent from the struct: it is always derived from
// (Quantity, MinStock) via DeriveItemStatus so it can never drift from the
// raw quantities.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	MinStock    int       `json:"min_stock"`
	Price       float64   `json:"price"`
	LastUpdated time.Time `json:"last_updated"`
}

// OrderLine represents a single line item on a purchase order.
type OrderLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order represents a purchase order from a supplier.
type Order struct {
	ID               string      `json:"id"`
	OrderNumber      string      `json:"order_number"`
	Supplier         string      `json:"supplier"`
	Items            []OrderLine `json:"items"`
	TotalAmount      float64     `json:"total_amount"`
	OrderDate        time.Time   `json:"order_date"`
	ExpectedDelivery time.Time   `json:"expected_delivery"`
	Status           OrderStatus `json:"status"`
}

// Alert is a derived view over an Item whose quantity is at or below its
// minimum threshold. Alerts are regenerated from the item set on every read
// and carry no independent lifecycle.
type Alert struct {
	ItemName     string    `json:"item_name"`
	CurrentStock int       `json:"current_stock"`
	MinStock     int       `json:"min_stock"`
	Severity     Severity  `json:"severity"`
	CreatedAt    time.Time `json:"created_at"`
}

// Activity is an append-only audit record of a stock mutation.
type Activity struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Activity actions
const (
	ActivityStockOut      = "Stock Out"
	ActivityStockUpdated  = "Stock Updated"
	ActivityOrderReceived = "Order Received"
	ActivityItemAdded     = "Item Added"
)

// Order statuses. Transitions only move forward: pending -> in-transit ->
// received, or any non-terminal state -> cancelled.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusInTransit OrderStatus = "in-transit"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var (
	ErrInvalidItem       = errors.New("invalid item")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// NewItem validates and constructs an Item. Negative quantities and
// thresholds are rejected here so the derivation functions stay total.
func NewItem(id, name, category string, quantity, minStock int, price float64, now time.Time) (Item, error) {
	if strings.TrimSpace(name) == "" {
		return Item{}, fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if quantity < 0 {
		return Item{}, fmt.Errorf("%w: quantity must be >= 0, got %d", ErrInvalidItem, quantity)
	}
	if minStock < 0 {
		return Item{}, fmt.Errorf("%w: min stock must be >= 0, got %d", ErrInvalidItem, minStock)
	}
	if price < 0 {
		return Item{}, fmt.Errorf("%w: price must be >= 0, got %.2f", ErrInvalidItem, price)
	}

	return Item{
		ID:          id,
		Name:        name,
		Category:    category,
		Quantity:    quantity,
		MinStock:    minStock,
		Price:       price,
		LastUpdated: now,
	}, nil
}

// Status derives the current stock status of the item.
func (i Item) Status() ItemStatus {
	return DeriveItemStatus(i.Quantity, i.MinStock)
}

// NewOrder validates and constructs an Order. The authored total must match
// the sum of line subtotals to the cent; the original data set allowed the
// two to drift silently.
func NewOrder(id, orderNumber, supplier string, lines []OrderLine, totalAmount float64, orderDate, expectedDelivery time.Time, status OrderStatus) (Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return Order{}, fmt.Errorf("%w: order number is required", ErrInvalidOrder)
	}
	if len(lines) == 0 {
		return Order{}, fmt.Errorf("%w: at least one line item is required", ErrInvalidOrder)
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Order{}, fmt.Errorf("%w: line %q quantity must be > 0", ErrInvalidOrder, line.Name)
		}
		if line.Price < 0 {
			return Order{}, fmt.Errorf("%w: line %q price must be >= 0", ErrInvalidOrder, line.Name)
		}
	}

	if cents(totalAmount) != cents(LinesTotal(lines)) {
		return Order{}, fmt.Errorf("%w: total %.2f does not match line subtotals %.2f",
			ErrInvalidOrder, totalAmount, LinesTotal(lines))
	}

	switch status {
	case OrderStatusPending, OrderStatusInTransit, OrderStatusReceived, OrderStatusCancelled:
	default:
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, status)
	}

	return Order{
		ID:               id,
		OrderNumber:      orderNumber,
		Supplier:         supplier,
		Items:            lines,
		TotalAmount:      totalAmount,
		OrderDate:        orderDate,
		ExpectedDelivery: expectedDelivery,
		Status:           status,
	}, nil
}

// LinesTotal sums line subtotals.
func LinesTotal(lines []OrderLine) float64 {
	var total float64
	for _, line := range lines {
		total += float64(line.Quantity) * line.Price
	}
	return total
}

// CanTransition reports whether an order may move from one status to
// another. Only forward moves are allowed; cancelled and received are
// terminal (except that receiving a received order is a no-op handled by
// the caller, not a transition).
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusInTransit || to == OrderStatusReceived || to == OrderStatusCancelled
	case OrderStatusInTransit:
		return to == OrderStatusReceived || to == OrderStatusCancelled
	default:
		return false
	}
}

func cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
