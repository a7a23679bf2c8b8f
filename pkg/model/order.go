package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderStatus string

const (
	OrderStatusLive      OrderStatus = "LIVE"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Pair is a single traded instrument, e.g. {Base: "BTC", Quote: "USD"}.
// The base currency is the traded asset, the quote currency is what it is
// priced in.
type Pair struct {
	Base  string `yaml:"base"`
	Quote string `yaml:"quote"`
}

func (p Pair) Symbol() string {
	return p.Base + "-" + p.Quote
}

// Order is a standing (limit) order record. The lifecycle store is the only
// writer of its fields; everyone else works on copies.
type Order struct {
	ID      int64
	Account string
	Side    OrderSide

	LimitPrice decimal.Decimal
	Quantity   decimal.Decimal // original quantity
	Remaining  decimal.Decimal
	Satisfied  decimal.Decimal // Quantity - Remaining
	Cost       decimal.Decimal // cumulative quote spent/received over fills
	AvgPrice   decimal.Decimal // Cost / Satisfied, zero until first fill

	Status     OrderStatus
	WebhookURL string
	CreatedAt  time.Time
}

// ApplyFill books qty at price against the order and flips it to FULFILLED
// when nothing remains.
func (o *Order) ApplyFill(qty, price decimal.Decimal) {
	o.Remaining = o.Remaining.Sub(qty)
	o.Satisfied = o.Satisfied.Add(qty)
	o.Cost = o.Cost.Add(qty.Mul(price))
	o.AvgPrice = o.Cost.DivRound(o.Satisfied, 8)
	if o.Remaining.IsZero() {
		o.Status = OrderStatusFulfilled
	}
}

func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusFulfilled || o.Status == OrderStatusCancelled
}
