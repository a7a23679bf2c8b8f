package orderbook

import (
	"github.com/shopspring/decimal"

	"github.com/tothtamas28/exchange/pkg/model"
)

// Order is a live book entry: a non-owning reference into the lifecycle
// store. ID doubles as the creation-order tie-break, the store hands IDs out
// monotonically.
type Order struct {
	ID      int64
	Account string
	Side    model.OrderSide
	Price   decimal.Decimal
	Qty     decimal.Decimal // remaining quantity

	removed bool // lazy-deletion marker, swept when the entry surfaces
}

// priceKey canonicalizes a decimal so equal prices land on the same level
// regardless of exponent ("10000" vs "10000.00").
func priceKey(p decimal.Decimal) string {
	return p.StringFixed(8)
}
