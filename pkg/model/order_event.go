package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent is the outbound record emitted whenever a standing order's
// status or quantities change. Target addresses the delivery mechanism; it
// is not part of the payload.
type OrderEvent struct {
	EventID           string          `json:"event_id"`
	OrderID           int64           `json:"order_id"`
	Status            OrderStatus     `json:"status"`
	SatisfiedQuantity decimal.Decimal `json:"satisfied_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	AvgPrice          decimal.Decimal `json:"avg_price"`
	Target            string          `json:"-"`
	Timestamp         time.Time       `json:"timestamp"`
}

func NewOrderEvent(o Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:           NewEventID(o.ID, ts),
		OrderID:           o.ID,
		Status:            o.Status,
		SatisfiedQuantity: o.Satisfied,
		RemainingQuantity: o.Remaining,
		AvgPrice:          o.AvgPrice,
		Target:            o.WebhookURL,
		Timestamp:         ts,
	}
}

func NewEventID(orderID int64, ts time.Time) string {
	return fmt.Sprintf("%d-%d", orderID, ts.UnixNano())
}
