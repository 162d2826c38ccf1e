package models

import "time"

// ItemStatus is the derived stock state of an item.
type ItemStatus string

const (
	StatusInStock    ItemStatus = "in-stock"
	StatusLowStock   ItemStatus = "low-stock"
	StatusOutOfStock ItemStatus = "out-of-stock"
)

// Severity is the derived urgency of a stock alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// DeriveItemStatus computes the stock status from raw quantities. Pure and
// total for all quantity >= 0, minStock >= 0: a zero threshold means any
// positive quantity is in stock.
func DeriveItemStatus(quantity, minStock int) ItemStatus {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity < minStock:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// DeriveAlertSeverity computes the urgency of an alert for the given stock
// level. Info covers the boundary case (stock exactly at threshold) and is
// otherwise reserved for non-quantity-driven alerts.
func DeriveAlertSeverity(currentStock, minStock int) Severity {
	switch {
	case currentStock == 0:
		return SeverityCritical
	case currentStock < minStock:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// DeriveAlerts regenerates the alert set from the current items: exactly one
// alert per item whose quantity is at or below its minimum threshold.
// Callers get a fresh slice; alerts are never stored or mutated.
func DeriveAlerts(items []Item, now time.Time) []Alert {
	alerts := make([]Alert, 0)
	for _, item := range items {
		if item.Quantity > item.MinStock {
			continue
		}
		alerts = append(alerts, Alert{
			ItemName:     item.Name,
			CurrentStock: item.Quantity,
			MinStock:     item.MinStock,
			Severity:     DeriveAlertSeverity(item.Quantity, item.MinStock),
			CreatedAt:    now,
		})
	}
	return alerts
}

// StockFillPercent returns the 0-100 gauge value used by inventory displays:
// full at twice the minimum threshold. The denominator is clamped to at
// least 1 so a zero threshold never divides by zero.
func StockFillPercent(quantity, minStock int) float64 {
	denom := minStock * 2
	if denom < 1 {
		denom = 1
	}
	pct := float64(quantity) / float64(denom) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
