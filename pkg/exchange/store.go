package exchange

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tothtamas28/exchange/pkg/model"
)

// orderStore owns every standing order record and is the only writer of
// their fields. IDs are handed out monotonically, so they double as the
// creation-order key for time priority.
type orderStore struct {
	mu     sync.RWMutex
	seq    int64
	orders map[int64]*model.Order
}

func newOrderStore() *orderStore {
	return &orderStore{
		orders: make(map[int64]*model.Order),
	}
}

func (s *orderStore) create(account string, side model.OrderSide, qty, limit decimal.Decimal, webhookURL string, status model.OrderStatus) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	o := &model.Order{
		ID:         s.seq,
		Account:    account,
		Side:       side,
		LimitPrice: limit,
		Quantity:   qty,
		Remaining:  qty,
		Satisfied:  decimal.Zero,
		Cost:       decimal.Zero,
		AvgPrice:   decimal.Zero,
		Status:     status,
		WebhookURL: webhookURL,
		CreatedAt:  time.Now(),
	}
	s.orders[o.ID] = o
	return o
}

func (s *orderStore) get(id int64) (*model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	return o, ok
}
