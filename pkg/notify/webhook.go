package notify

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/tothtamas28/exchange/pkg/model"
)

type WebhookConfig struct {
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	MaxRetries        uint64 `yaml:"max_retries"`
	MaxElapsedSeconds int    `yaml:"max_elapsed_seconds"`
}

// WebhookDeliverer POSTs the event payload to the order's registered URL,
// retrying transient failures with exponential backoff. A delivery that
// still fails after the retries is logged and forgotten.
type WebhookDeliverer struct {
	client     *http.Client
	maxRetries uint64
	maxElapsed time.Duration
	log        *zap.SugaredLogger
}

func NewWebhookDeliverer(cfg *WebhookConfig) *WebhookDeliverer {
	if cfg == nil {
		cfg = &WebhookConfig{}
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	maxElapsed := time.Duration(cfg.MaxElapsedSeconds) * time.Second
	if maxElapsed == 0 {
		maxElapsed = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	return &WebhookDeliverer{
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		maxElapsed: maxElapsed,
		log:        zap.S(),
	}
}

func (w *WebhookDeliverer) Deliver(target string, ev *model.OrderEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		w.log.Errorw("marshal event failed", "order_id", ev.OrderID, "err", err)
		return
	}

	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = w.maxElapsed
	err = backoff.Retry(func() error {
		return w.post(target, body)
	}, backoff.WithMaxRetries(boff, w.maxRetries))
	if err != nil {
		w.log.Infow("webhook failed", "target", target, "order_id", ev.OrderID, "err", err)
		return
	}
	w.log.Debugw("webhook delivered", "target", target, "order_id", ev.OrderID)
}

func (w *WebhookDeliverer) post(target string, body []byte) error {
	resp, err := w.client.Post(target, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
