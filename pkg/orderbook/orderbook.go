package orderbook

import (
	"container/heap"
	"sync"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"

	"github.com/tothtamas28/exchange/pkg/model"
)

// Book is one trading pair's resting liquidity: per side a FIFO queue per
// price level plus a heap over the level prices. Bids are a max-heap, asks a
// min-heap, so PeekBest is the price-time front of either side. Removal is
// lazy: RemoveByID and Reduce-to-zero only mark the entry, PeekBest sweeps
// markers when they surface.
type Book struct {
	symbol string

	bids map[string]*deque.Deque[*Order]
	asks map[string]*deque.Deque[*Order]

	bidHeap *PriceHeap
	askHeap *PriceHeap

	byID map[int64]*Order

	mu sync.Mutex
}

func NewBook(symbol string) *Book {
	return &Book{
		symbol:  symbol,
		bids:    make(map[string]*deque.Deque[*Order]),
		asks:    make(map[string]*deque.Deque[*Order]),
		bidHeap: NewPriceHeap(func(i, j decimal.Decimal) bool { return i.GreaterThan(j) }),
		askHeap: NewPriceHeap(func(i, j decimal.Decimal) bool { return i.LessThan(j) }),
		byID:    make(map[int64]*Order),
	}
}

func (b *Book) Symbol() string {
	return b.symbol
}

// Insert rests the order at the back of its price level. Later insertions at
// the same price lose the time-priority tie-break.
func (b *Book) Insert(o *Order) error {
	if !o.Qty.IsPositive() {
		return errInvalidOrderQty
	}
	if !o.Price.IsPositive() {
		return errInvalidOrderPrice
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.byID[o.ID]; ok {
		return errDuplicateOrder
	}

	levels, priceHeap := b.side(o.Side)
	key := priceKey(o.Price)
	if levels[key] == nil {
		levels[key] = &deque.Deque[*Order]{}
		heap.Push(priceHeap, o.Price)
	}
	levels[key].PushBack(o)
	b.byID[o.ID] = o
	return nil
}

// RemoveByID drops a resting order from the book. Returns false when the
// order is not a member.
func (b *Book) RemoveByID(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.byID[id]
	if !ok {
		return false
	}
	o.removed = true
	delete(b.byID, id)
	return true
}

// PeekBest returns the highest-priority resting order on the given side:
// best price first, earliest creation first within a price level. Nil when
// the side is empty.
func (b *Book) PeekBest(side model.OrderSide) *Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.peekBest(side)
}

// Reduce shrinks a resting order's remaining quantity after a fill and
// removes it once nothing is left.
func (b *Book) Reduce(id int64, qty decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.byID[id]
	if !ok {
		return errOrderNotFound
	}
	if qty.GreaterThan(o.Qty) {
		return errInvalidOrderQty
	}
	o.Qty = o.Qty.Sub(qty)
	if o.Qty.IsZero() {
		o.removed = true
		delete(b.byID, id)
	}
	return nil
}

func (b *Book) IsEmpty(side model.OrderSide) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.peekBest(side) == nil
}

func (b *Book) Contains(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.byID[id]
	return ok
}

func (b *Book) peekBest(side model.OrderSide) *Order {
	levels, priceHeap := b.side(side)
	for {
		bestPrice, ok := priceHeap.Peek()
		if !ok {
			return nil
		}

		q := levels[priceKey(bestPrice)]
		for q.Len() > 0 && q.Front().removed {
			q.PopFront()
		}
		if q.Len() == 0 {
			heap.Pop(priceHeap)
			delete(levels, priceKey(bestPrice))
			continue
		}
		return q.Front()
	}
}

func (b *Book) side(side model.OrderSide) (map[string]*deque.Deque[*Order], *PriceHeap) {
	if side == model.OrderSideBuy {
		return b.bids, b.bidHeap
	}
	return b.asks, b.askHeap
}
