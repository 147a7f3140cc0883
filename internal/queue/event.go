// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/webshop/internal/model"
)

// OrderPlacedQueue is the durable queue committed orders are announced on.
const OrderPlacedQueue = "order.placed"

// OrderPlacedEvent is published after an order transaction commits.  It
// carries enough for downstream consumers (order log, fulfilment,
// notifications) to act without reading the primary database.
type OrderPlacedEvent struct {
    EventID    string      `json:"event_id"`
    OrderID    uint64      `json:"order_id"`
    CustomerID uint64      `json:"customer_id"`
    Username   string      `json:"username"`
    OrderDate  string      `json:"order_date"` // RFC3339, UTC
    Lines      []EventLine `json:"lines"`
}

// EventLine is one ordered product in an OrderPlacedEvent.
type EventLine struct {
    ProductID uint64 `json:"product_id"`
    Quantity  int    `json:"quantity"`
}

// NewOrderPlacedEvent builds the event for a committed order with a fresh
// event id.
func NewOrderPlacedEvent(order model.Order, username string, items []model.LineItem) OrderPlacedEvent {
    lines := make([]EventLine, 0, len(items))
    for _, it := range items {
        lines = append(lines, EventLine{ProductID: it.ProductID, Quantity: it.Quantity})
    }
    return OrderPlacedEvent{
        EventID:    uuid.NewString(),
        OrderID:    order.ID,
        CustomerID: order.CustomerID,
        Username:   username,
        OrderDate:  order.OrderDate.UTC().Format(time.RFC3339),
        Lines:      lines,
    }
}
