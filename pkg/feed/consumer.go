package feed

import (
	"context"
	"errors"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Topic      string
	MaxRetries int
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// Consumer wraps a kafka consumer-group reader: fetch, hand to the handler,
// retry with capped exponential backoff, commit. A message that exhausts its
// retries is committed anyway so the partition keeps moving.
type Consumer struct {
	r   *kafka.Reader
	cfg ConsumerConfig
	log *zap.SugaredLogger
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffMin == 0 {
		cfg.BackoffMin = 100 * time.Millisecond
	}
	if cfg.BackoffMax == 0 {
		cfg.BackoffMax = 5 * time.Second
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})
	return &Consumer{r: r, cfg: cfg, log: zap.S()}
}

// Run blocks until ctx is done, feeding every message to handler.
func (c *Consumer) Run(ctx context.Context, handler func(ctx context.Context, value []byte) error) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			c.log.Warnw("fetch failed", "topic", c.cfg.Topic, "err", err)
			time.Sleep(200 * time.Millisecond)
			continue
		}

		backoff := c.cfg.BackoffMin
		for attempt := 0; ; attempt++ {
			err = handler(ctx, m.Value)
			if err == nil {
				break
			}
			if attempt >= c.cfg.MaxRetries {
				c.log.Errorw("handler gave up", "topic", c.cfg.Topic, "offset", m.Offset, "err", err)
				break
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
			if backoff > c.cfg.BackoffMax {
				backoff = c.cfg.BackoffMax
			}
		}

		if err := c.r.CommitMessages(ctx, m); err != nil {
			c.log.Warnw("commit failed", "topic", c.cfg.Topic, "err", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}
