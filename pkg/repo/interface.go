package repo

import (
	"context"
)

type IOrderEvent interface {
	Create(ctx context.Context, record *OrderEventRow) (*OrderEventRow, error)
	BulkCreate(ctx context.Context, records []*OrderEventRow) ([]*OrderEventRow, error)
}

type ITrade interface {
	Create(ctx context.Context, record *TradeRow) (*TradeRow, error)
	BulkCreate(ctx context.Context, records []*TradeRow) ([]*TradeRow, error)
}
