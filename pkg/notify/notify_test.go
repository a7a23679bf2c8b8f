package notify

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tothtamas28/exchange/pkg/model"
)

type captureDeliverer struct {
	mu     sync.Mutex
	events []*model.OrderEvent
}

func (c *captureDeliverer) Deliver(target string, ev *model.OrderEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func testOrder(id int64, webhookURL string) model.Order {
	return model.Order{
		ID:         id,
		Account:    "acct",
		Side:       model.OrderSideBuy,
		LimitPrice: decimal.NewFromInt(10000),
		Quantity:   decimal.NewFromInt(2),
		Remaining:  decimal.NewFromInt(1),
		Satisfied:  decimal.NewFromInt(1),
		Status:     model.OrderStatusLive,
		WebhookURL: webhookURL,
	}
}

func TestDispatcherDelivers(t *testing.T) {
	c := &captureDeliverer{}
	d := NewDispatcher(c, 8, 1)

	d.OrderChanged(testOrder(1, "http://example.com/hook"))
	d.OrderChanged(testOrder(2, "http://example.com/hook"))
	d.Close()

	require.Len(t, c.events, 2)
	assert.Equal(t, int64(1), c.events[0].OrderID)
	assert.Equal(t, int64(2), c.events[1].OrderID)
	assert.Equal(t, "http://example.com/hook", c.events[0].Target)
}

func TestDispatcherSkipsWithoutTarget(t *testing.T) {
	c := &captureDeliverer{}
	d := NewDispatcher(c, 8, 1)

	d.OrderChanged(testOrder(1, ""))
	d.Close()

	assert.Empty(t, c.events)
}

func TestDispatcherCloseIdempotent(t *testing.T) {
	d := NewDispatcher(&captureDeliverer{}, 8, 1)
	d.Close()
	d.Close()
}
