package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one fill between a resting standing order and an incoming order.
// TakerOrderID is zero when the taker was a market order (market orders are
// never persisted and have no identifier).
type Trade struct {
	Symbol       string          `json:"symbol"`
	MakerOrderID int64           `json:"maker_order_id"`
	TakerOrderID int64           `json:"taker_order_id,omitempty"`
	TakerSide    OrderSide       `json:"taker_side"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	ExecutedAt   time.Time       `json:"executed_at"`
}

// MarketOrderResult summarizes the fills of one market order pass.
type MarketOrderResult struct {
	Quantity   decimal.Decimal // filled base quantity, may be below the requested one
	QuoteTotal decimal.Decimal // total quote paid or received
	AvgPrice   decimal.Decimal // QuoteTotal / Quantity, zero when nothing filled
}
