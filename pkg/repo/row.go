package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tothtamas28/exchange/pkg/model"
)

type OrderEventRow struct {
	ID                uint64          `gorm:"primaryKey;autoIncrement"`
	EventID           string          `gorm:"uniqueIndex;size:64"`
	OrderID           int64           `gorm:"index"`
	Status            string          `gorm:"size:16"`
	SatisfiedQuantity decimal.Decimal `gorm:"type:numeric"`
	RemainingQuantity decimal.Decimal `gorm:"type:numeric"`
	AvgPrice          decimal.Decimal `gorm:"type:numeric"`
	OccurredAt        time.Time
	CreatedAt         time.Time
}

func (OrderEventRow) TableName() string {
	return "order_events"
}

func NewOrderEventRow(ev *model.OrderEvent) *OrderEventRow {
	return &OrderEventRow{
		EventID:           ev.EventID,
		OrderID:           ev.OrderID,
		Status:            string(ev.Status),
		SatisfiedQuantity: ev.SatisfiedQuantity,
		RemainingQuantity: ev.RemainingQuantity,
		AvgPrice:          ev.AvgPrice,
		OccurredAt:        ev.Timestamp,
	}
}

type TradeRow struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	Symbol       string          `gorm:"index;size:32"`
	MakerOrderID int64           `gorm:"index"`
	TakerOrderID int64           `gorm:"index"`
	TakerSide    string          `gorm:"size:8"`
	Price        decimal.Decimal `gorm:"type:numeric"`
	Quantity     decimal.Decimal `gorm:"type:numeric"`
	ExecutedAt   time.Time
	CreatedAt    time.Time
}

func (TradeRow) TableName() string {
	return "trades"
}

func NewTradeRow(t *model.Trade) *TradeRow {
	return &TradeRow{
		Symbol:       t.Symbol,
		MakerOrderID: t.MakerOrderID,
		TakerOrderID: t.TakerOrderID,
		TakerSide:    string(t.TakerSide),
		Price:        t.Price,
		Quantity:     t.Quantity,
		ExecutedAt:   t.ExecutedAt,
	}
}
