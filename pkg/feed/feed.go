// Package feed publishes executed trades and order events to Kafka and runs
// consumer groups over those topics for downstream sinks (the journal
// worker, external consumers).
package feed

import (
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tothtamas28/exchange/pkg/model"
)

type Config struct {
	Brokers          []string `yaml:"brokers"`
	TradesTopic      string   `yaml:"trades_topic"`
	OrderEventsTopic string   `yaml:"order_events_topic"`
	GroupID          string   `yaml:"group_id"`
}

func (c *Config) WithDefaults() {
	if c.TradesTopic == "" {
		c.TradesTopic = "exchange.trades"
	}
	if c.OrderEventsTopic == "" {
		c.OrderEventsTopic = "exchange.order-events"
	}
	if c.GroupID == "" {
		c.GroupID = "exchange-journal"
	}
}

// Publisher is the engine-side producer. OnTrade plugs into the exchange's
// trade callback and OrderChanged satisfies its Notifier interface, so both
// streams ride the same async writer.
type Publisher struct {
	w   *kafka.Writer
	cfg Config
	log *zap.SugaredLogger
}

func NewPublisher(cfg Config) *Publisher {
	cfg.WithDefaults()
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireNone,
		Async:                  true,
	}
	return &Publisher{w: w, cfg: cfg, log: zap.S()}
}

func (p *Publisher) OnTrade(trade model.Trade) {
	p.publish(p.cfg.TradesTopic, []byte(trade.Symbol), trade)
}

func (p *Publisher) OrderChanged(order model.Order) {
	ev := model.NewOrderEvent(order, time.Now())
	p.publish(p.cfg.OrderEventsTopic, []byte(strconv.FormatInt(ev.OrderID, 10)), ev)
}

func (p *Publisher) publish(topic string, key []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		p.log.Errorw("marshal feed message failed", "topic", topic, "err", err)
		return
	}
	if err := p.w.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   key,
		Value: b,
		Time:  time.Now(),
	}); err != nil {
		p.log.Warnw("publish feed message failed", "topic", topic, "err", err)
	}
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
