package models

import "time"

// Event types
const (
	EventTypeItemCreated   = "ITEM_CREATED"
	EventTypeStockAdjusted = "STOCK_ADJUSTED"
	EventTypeOrderReceived = "ORDER_RECEIVED"
	EventTypeAlertRaised   = "ALERT_RAISED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ItemCreatedEvent published when a new item enters the catalog
type ItemCreatedEvent struct {
	BaseEvent
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"min_stock"`
}

// StockAdjustedEvent published when an item quantity changes
type StockAdjustedEvent struct {
	BaseEvent
	ItemID   string     `json:"item_id"`
	ItemName string     `json:"item_name"`
	Delta    int        `json:"delta"`
	Quantity int        `json:"quantity"`
	Status   ItemStatus `json:"status"`
}

// OrderReceivedEvent published when a delivery is confirmed
type OrderReceivedEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Supplier    string `json:"supplier"`
}

// AlertRaisedEvent published when a stock adjustment pushes an item to or
// below its threshold
type AlertRaisedEvent struct {
	BaseEvent
	ItemName     string   `json:"item_name"`
	CurrentStock int      `json:"current_stock"`
	MinStock     int      `json:"min_stock"`
	Severity     Severity `json:"severity"`
}
