// Package worker drains the feed topics into the SQL journal. It runs as its
// own process so journaling lag never backs up into the engine.
package worker

import (
	"context"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/tothtamas28/exchange/pkg/feed"
	"github.com/tothtamas28/exchange/pkg/model"
	"github.com/tothtamas28/exchange/pkg/repo"
)

type Worker struct {
	orderEvent repo.IOrderEvent
	trade      repo.ITrade
	log        *zap.SugaredLogger
}

func NewWorker(journal repo.IJournal) *Worker {
	return &Worker{
		orderEvent: journal.OrderEvent(),
		trade:      journal.Trade(),
		log:        zap.S(),
	}
}

// Start launches one consumer per topic and blocks until ctx is done.
func (w *Worker) Start(ctx context.Context, cfg feed.Config) error {
	events := feed.NewConsumer(feed.ConsumerConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topic:   cfg.OrderEventsTopic,
	})
	trades := feed.NewConsumer(feed.ConsumerConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topic:   cfg.TradesTopic,
	})
	defer events.Close()
	defer trades.Close()

	errCh := make(chan error, 2)
	go func() { errCh <- events.Run(ctx, w.handleOrderEvent) }()
	go func() { errCh <- trades.Run(ctx, w.handleTrade) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) handleOrderEvent(ctx context.Context, value []byte) error {
	var ev model.OrderEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		w.log.Warnw("skip malformed order event", "err", err)
		return nil
	}
	_, err := w.orderEvent.Create(ctx, repo.NewOrderEventRow(&ev))
	return err
}

func (w *Worker) handleTrade(ctx context.Context, value []byte) error {
	var t model.Trade
	if err := json.Unmarshal(value, &t); err != nil {
		w.log.Warnw("skip malformed trade", "err", err)
		return nil
	}
	_, err := w.trade.Create(ctx, repo.NewTradeRow(&t))
	return err
}
