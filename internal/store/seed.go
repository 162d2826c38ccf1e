package store

import (
	"fmt"
	"time"

	"warehouse-service/internal/models"
)

// Seed loads the demo data set. The fixed IDs and in-transit order matter:
// the scan resolver's demo fallbacks lean on them.
func (s *Store) Seed() error {
	type seedItem struct {
		id, name, category string
		quantity, minStock int
		price              float64
		updated            string
	}

	items := []seedItem{
		{"1", "Wireless Mouse", "Electronics", 150, 50, 29.99, "2024-01-15"},
		{"2", "USB-C Cable", "Electronics", 25, 100, 12.99, "2024-01-14"},
		{"3", "Office Chair", "Furniture", 0, 10, 199.99, "2024-01-13"},
		{"4", "Desk Lamp", "Furniture", 75, 20, 45.99, "2024-01-15"},
		{"5", "Notebook Pack", "Stationery", 500, 100, 8.99, "2024-01-15"},
		{"6", "Ballpoint Pens", "Stationery", 15, 50, 3.99, "2024-01-12"},
		{"7", "Monitor Stand", "Furniture", 45, 15, 79.99, "2024-01-14"},
		{"8", "Keyboard", "Electronics", 8, 30, 69.99, "2024-01-11"},
		{"9", "Webcam HD", "Electronics", 0, 20, 89.99, "2024-01-10"},
		{"10", "Sticky Notes", "Stationery", 200, 50, 4.99, "2024-01-15"},
	}

	for _, si := range items {
		item, err := models.NewItem(si.id, si.name, si.category, si.quantity, si.minStock, si.price, date(si.updated))
		if err != nil {
			return fmt.Errorf("seed item %s: %w", si.id, err)
		}
		s.putItem(item)
	}

	type seedOrder struct {
		id, number, supplier string
		lines                []models.OrderLine
		total                float64
		ordered, expected    string
		status               models.OrderStatus
	}

	orders := []seedOrder{
		{"1", "ORD-2024-001", "Tech Supplies Inc.", []models.OrderLine{
			{Name: "Wireless Mouse", Quantity: 100, Price: 24.99},
			{Name: "USB-C Cable", Quantity: 200, Price: 9.99},
		}, 4497.00, "2024-01-10", "2024-01-20", models.OrderStatusReceived},
		{"2", "ORD-2024-002", "Office Furniture Co.", []models.OrderLine{
			{Name: "Office Chair", Quantity: 20, Price: 159.99},
			{Name: "Desk Lamp", Quantity: 30, Price: 39.99},
		}, 4399.50, "2024-01-12", "2024-01-25", models.OrderStatusInTransit},
		{"3", "ORD-2024-003", "Stationery World", []models.OrderLine{
			{Name: "Notebook Pack", Quantity: 500, Price: 6.99},
			{Name: "Ballpoint Pens", Quantity: 300, Price: 2.99},
		}, 4392.00, "2024-01-14", "2024-01-22", models.OrderStatusPending},
		{"4", "ORD-2024-004", "Tech Supplies Inc.", []models.OrderLine{
			{Name: "Keyboard", Quantity: 50, Price: 59.99},
			{Name: "Webcam HD", Quantity: 40, Price: 79.99},
		}, 6199.10, "2024-01-08", "2024-01-18", models.OrderStatusReceived},
		{"5", "ORD-2024-005", "Office Furniture Co.", []models.OrderLine{
			{Name: "Monitor Stand", Quantity: 25, Price: 69.99},
		}, 1749.75, "2024-01-15", "2024-01-28", models.OrderStatusPending},
	}

	for _, so := range orders {
		order, err := models.NewOrder(so.id, so.number, so.supplier, so.lines, so.total,
			date(so.ordered), date(so.expected), so.status)
		if err != nil {
			return fmt.Errorf("seed order %s: %w", so.number, err)
		}
		s.putOrder(order)
	}

	return nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(fmt.Sprintf("bad seed date %q: %v", s, err))
	}
	return t
}
