// Package marketdata keeps a per-pair ticker (last trade, cumulative volume)
// in redis so read-side services can poll it without touching the engine.
package marketdata

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tothtamas28/exchange/pkg/model"
)

const writeTimeout = 2 * time.Second

type Ticker struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

type Snapshot struct {
	LastPrice    decimal.Decimal
	LastQuantity decimal.Decimal
	Volume       decimal.Decimal
	UpdatedAt    time.Time
}

func NewTicker(rdb *redis.Client) *Ticker {
	return &Ticker{rdb: rdb, log: zap.S()}
}

// OnTrade plugs into the exchange's trade callback.
func (t *Ticker) OnTrade(trade model.Trade) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	key := tickerKey(trade.Symbol)
	pipe := t.rdb.Pipeline()
	pipe.HSet(ctx, key,
		"last_price", trade.Price.String(),
		"last_qty", trade.Quantity.String(),
		"updated_at", trade.ExecutedAt.Format(time.RFC3339Nano),
	)
	qty, _ := trade.Quantity.Float64()
	pipe.HIncrByFloat(ctx, key, "volume", qty)
	if _, err := pipe.Exec(ctx); err != nil {
		t.log.Warnw("ticker update failed", "symbol", trade.Symbol, "err", err)
	}
}

func (t *Ticker) Snapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	vals, err := t.rdb.HGetAll(ctx, tickerKey(symbol)).Result()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	if v, ok := vals["last_price"]; ok {
		snap.LastPrice, _ = decimal.NewFromString(v)
	}
	if v, ok := vals["last_qty"]; ok {
		snap.LastQuantity, _ = decimal.NewFromString(v)
	}
	if v, ok := vals["volume"]; ok {
		snap.Volume, _ = decimal.NewFromString(v)
	}
	if v, ok := vals["updated_at"]; ok {
		snap.UpdatedAt, _ = time.Parse(time.RFC3339Nano, v)
	}
	return snap, nil
}

func tickerKey(symbol string) string {
	return "exchange:ticker:" + symbol
}
