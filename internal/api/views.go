package api

import (
	"warehouse-service/internal/models"
	"warehouse-service/internal/workflow"
)

// itemView is the projection of an Item the presentation layer may read.
// Status and stock fill are derived at marshal time, never stored.
type itemView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Quantity  int               `json:"quantity"`
	MinStock  int               `json:"min_stock"`
	Price     float64           `json:"price"`
	Status    models.ItemStatus `json:"status"`
	StockFill float64           `json:"stock_fill"`
}

type orderLineView struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type orderView struct {
	ID               string             `json:"id"`
	OrderNumber      string             `json:"order_number"`
	Supplier         string             `json:"supplier"`
	Items            []orderLineView    `json:"items"`
	TotalAmount      float64            `json:"total_amount"`
	OrderDate        string             `json:"order_date"`
	ExpectedDelivery string             `json:"expected_delivery"`
	Status           models.OrderStatus `json:"status"`
}

type alertView struct {
	ItemName     string          `json:"item_name"`
	CurrentStock int             `json:"current_stock"`
	MinStock     int             `json:"min_stock"`
	Severity     models.Severity `json:"severity"`
	CreatedAt    string          `json:"created_at"`
}

type sessionView struct {
	SessionID string     `json:"session_id"`
	Kind      string     `json:"kind"`
	State     string     `json:"state"`
	Failure   string     `json:"failure,omitempty"`
	Item      *itemView  `json:"item,omitempty"`
	Order     *orderView `json:"order,omitempty"`
	Quantity  int        `json:"quantity,omitempty"`
}

const dateLayout = "2006-01-02"

func toItemView(item models.Item) itemView {
	return itemView{
		ID:        item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Quantity:  item.Quantity,
		MinStock:  item.MinStock,
		Price:     item.Price,
		Status:    item.Status(),
		StockFill: models.StockFillPercent(item.Quantity, item.MinStock),
	}
}

func toItemViews(items []models.Item) []itemView {
	out := make([]itemView, 0, len(items))
	for _, item := range items {
		out = append(out, toItemView(item))
	}
	return out
}

func toOrderView(order models.Order) orderView {
	lines := make([]orderLineView, 0, len(order.Items))
	for _, line := range order.Items {
		lines = append(lines, orderLineView(line))
	}
	return orderView{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		Supplier:         order.Supplier,
		Items:            lines,
		TotalAmount:      order.TotalAmount,
		OrderDate:        order.OrderDate.Format(dateLayout),
		ExpectedDelivery: order.ExpectedDelivery.Format(dateLayout),
		Status:           order.Status,
	}
}

func toOrderViews(orders []models.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderView(order))
	}
	return out
}

func toAlertViews(alerts []models.Alert) []alertView {
	out := make([]alertView, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, alertView{
			ItemName:     alert.ItemName,
			CurrentStock: alert.CurrentStock,
			MinStock:     alert.MinStock,
			Severity:     alert.Severity,
			CreatedAt:    alert.CreatedAt.Format("2006-01-02T15:04:05"),
		})
	}
	return out
}

func toSessionView(snap workflow.Snapshot) sessionView {
	view := sessionView{
		SessionID: snap.SessionID,
		Kind:      string(snap.Kind),
		State:     string(snap.State),
		Failure:   snap.Failure,
		Quantity:  snap.Quantity,
	}
	if snap.Item != nil {
		item := toItemView(*snap.Item)
		view.Item = &item
	}
	if snap.Order != nil {
		order := toOrderView(*snap.Order)
		view.Order = &order
	}
	return view
}
