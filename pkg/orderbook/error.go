package orderbook

import "errors"

var (
	errOrderNotFound     = errors.New("order not found")
	errDuplicateOrder    = errors.New("duplicate order")
	errInvalidOrderPrice = errors.New("invalid order price")
	errInvalidOrderQty   = errors.New("invalid order qty")
)
