package broker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"
)

// EventPublisher handles publishing warehouse domain events. A nil
// EventPublisher is valid and publishes nothing, so callers never need to
// guard the event path when Kafka is not configured.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer, logger: util.GetLogger()}
}

func (ep *EventPublisher) enabled() bool {
	return ep != nil && ep.producer != nil
}

func baseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// PublishItemCreated publishes an ItemCreated event
func (ep *EventPublisher) PublishItemCreated(ctx context.Context, item models.Item) {
	if !ep.enabled() {
		return
	}
	event := models.ItemCreatedEvent{
		BaseEvent: baseEvent(models.EventTypeItemCreated),
		ItemID:    item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Quantity:  item.Quantity,
		MinStock:  item.MinStock,
	}
	if err := ep.producer.PublishEvent(ctx, "item-"+item.ID, event); err != nil {
		ep.logger.Error("Failed to publish ItemCreated event", zap.Error(err))
	}
}

// PublishStockAdjusted publishes a StockAdjusted event
func (ep *EventPublisher) PublishStockAdjusted(ctx context.Context, item models.Item, delta int) {
	if !ep.enabled() {
		return
	}
	event := models.StockAdjustedEvent{
		BaseEvent: baseEvent(models.EventTypeStockAdjusted),
		ItemID:    item.ID,
		ItemName:  item.Name,
		Delta:     delta,
		Quantity:  item.Quantity,
		Status:    item.Status(),
	}
	if err := ep.producer.PublishEvent(ctx, "item-"+item.ID, event); err != nil {
		ep.logger.Error("Failed to publish StockAdjusted event", zap.Error(err))
	}
}

// PublishOrderReceived publishes an OrderReceived event
func (ep *EventPublisher) PublishOrderReceived(ctx context.Context, order models.Order) {
	if !ep.enabled() {
		return
	}
	event := models.OrderReceivedEvent{
		BaseEvent:   baseEvent(models.EventTypeOrderReceived),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Supplier:    order.Supplier,
	}
	if err := ep.producer.PublishEvent(ctx, "order-"+order.ID, event); err != nil {
		ep.logger.Error("Failed to publish OrderReceived event", zap.Error(err))
	}
}

// PublishAlertRaised publishes an AlertRaised event
func (ep *EventPublisher) PublishAlertRaised(ctx context.Context, alert models.Alert) {
	if !ep.enabled() {
		return
	}
	event := models.AlertRaisedEvent{
		BaseEvent:    baseEvent(models.EventTypeAlertRaised),
		ItemName:     alert.ItemName,
		CurrentStock: alert.CurrentStock,
		MinStock:     alert.MinStock,
		Severity:     alert.Severity,
	}
	if err := ep.producer.PublishEvent(ctx, "alert-"+alert.ItemName, event); err != nil {
		ep.logger.Error("Failed to publish AlertRaised event", zap.Error(err))
	}
	util.AlertsRaisedTotal.WithLabelValues(string(alert.Severity)).Inc()
}
