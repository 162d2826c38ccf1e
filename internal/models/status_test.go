package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveItemStatus(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		minStock int
		want     ItemStatus
	}{
		{"zero quantity is out of stock", 0, 10, StatusOutOfStock},
		{"below threshold is low stock", 5, 10, StatusLowStock},
		{"at threshold is in stock", 10, 10, StatusInStock},
		{"above threshold is in stock", 150, 50, StatusInStock},
		{"zero threshold, positive quantity", 1, 0, StatusInStock},
		{"zero threshold, zero quantity", 0, 0, StatusOutOfStock},
		{"one unit under a high threshold", 99, 100, StatusLowStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveItemStatus(tt.quantity, tt.minStock))
		})
	}
}

func TestDeriveAlertSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, DeriveAlertSeverity(0, 10))
	assert.Equal(t, SeverityWarning, DeriveAlertSeverity(5, 10))
	assert.Equal(t, SeverityInfo, DeriveAlertSeverity(10, 10))
	assert.Equal(t, SeverityCritical, DeriveAlertSeverity(0, 0))
}

func TestDeriveAlerts(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Name: "Office Chair", Quantity: 0, MinStock: 10},
		{Name: "USB-C Cable", Quantity: 25, MinStock: 100},
		{Name: "Wireless Mouse", Quantity: 150, MinStock: 50},
		{Name: "Sticky Notes", Quantity: 50, MinStock: 50},
	}

	alerts := DeriveAlerts(items, now)

	assert.Len(t, alerts, 3)
	assert.Equal(t, "Office Chair", alerts[0].ItemName)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
	assert.Equal(t, "USB-C Cable", alerts[1].ItemName)
	assert.Equal(t, SeverityWarning, alerts[1].Severity)
	assert.Equal(t, "Sticky Notes", alerts[2].ItemName)
	assert.Equal(t, SeverityInfo, alerts[2].Severity)
	for _, alert := range alerts {
		assert.Equal(t, now, alert.CreatedAt)
	}
}

func TestDeriveAlertsNoneAboveThreshold(t *testing.T) {
	items := []Item{
		{Name: "Notebook Pack", Quantity: 500, MinStock: 100},
		{Name: "Desk Lamp", Quantity: 75, MinStock: 20},
	}

	assert.Empty(t, DeriveAlerts(items, time.Now()))
}

func TestDeriveAlertsIsReferentiallyTransparent(t *testing.T) {
	now := time.Now()
	items := []Item{{Name: "Keyboard", Quantity: 8, MinStock: 30}}

	first := DeriveAlerts(items, now)
	second := DeriveAlerts(items, now)

	assert.Equal(t, first, second)
}

func TestStockFillPercent(t *testing.T) {
	assert.InDelta(t, 50.0, StockFillPercent(10, 10), 0.001)
	assert.InDelta(t, 100.0, StockFillPercent(40, 10), 0.001)
	assert.InDelta(t, 0.0, StockFillPercent(0, 10), 0.001)

	// Zero threshold must never divide by zero.
	assert.InDelta(t, 100.0, StockFillPercent(5, 0), 0.001)
	assert.InDelta(t, 0.0, StockFillPercent(0, 0), 0.001)
}
