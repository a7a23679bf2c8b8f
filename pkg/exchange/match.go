package exchange

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tothtamas28/exchange/pkg/model"
)

// taker is the incoming side of one crossing pass: either a freshly reserved
// standing order or a transient market order (order == nil).
type taker struct {
	order     *model.Order
	account   string
	side      model.OrderSide
	remaining decimal.Decimal
	limit     decimal.Decimal
	market    bool
}

type passResult struct {
	fills      []model.Trade
	filledQty  decimal.Decimal
	quoteTotal decimal.Decimal

	changedIDs []int64
	changedSet map[int64]model.Order
}

func newPassResult() *passResult {
	return &passResult{
		filledQty:  decimal.Zero,
		quoteTotal: decimal.Zero,
		changedSet: make(map[int64]model.Order),
	}
}

// changed records a post-change snapshot; the latest one per order wins but
// first-change ordering is kept for emission.
func (r *passResult) changed(o model.Order) {
	if _, ok := r.changedSet[o.ID]; !ok {
		r.changedIDs = append(r.changedIDs, o.ID)
	}
	r.changedSet[o.ID] = o
}

func (r *passResult) orders() []model.Order {
	out := make([]model.Order, 0, len(r.changedIDs))
	for _, id := range r.changedIDs {
		out = append(out, r.changedSet[id])
	}
	return out
}

// match runs the crossing loop of one pass under the pair lock: repeatedly
// take the opposing side's best resting order, gate on the taker's limit,
// fill min(remaining), settle both legs at the resting order's price, and
// update records and book. Stops on an empty or non-crossing book, or when
// the taker is spent.
func (e *Exchange) match(t *taker) *passResult {
	res := newPassResult()
	opposite := opposite(t.side)
	now := time.Now()

	for t.remaining.IsPositive() {
		best := e.book.PeekBest(opposite)
		if best == nil {
			break
		}
		if !t.market && !crosses(t.side, t.limit, best.Price) {
			break
		}

		qty := decimal.Min(t.remaining, best.Qty)
		if t.market {
			qty = decimal.Min(qty, e.affordable(t, best.Price))
			if !qty.IsPositive() {
				break
			}
		}
		price := best.Price
		cost := qty.Mul(price)

		maker, ok := e.store.get(best.ID)
		if !ok {
			e.log.Errorw("book entry without record", "order_id", best.ID)
			e.book.RemoveByID(best.ID)
			continue
		}

		if err := e.settle(t, maker, qty, cost); err != nil {
			e.log.Errorw("settlement failed, aborting pass",
				"maker_order_id", maker.ID, "qty", qty, "price", price, "err", err)
			break
		}

		// standing BUY taker reserved at its own limit but fills at the
		// resting price; the per-fill surplus goes back to available.
		if !t.market && t.side == model.OrderSideBuy && t.limit.GreaterThan(price) {
			surplus := qty.Mul(t.limit.Sub(price))
			if err := e.ledger.Release(t.account, e.pair.Quote, surplus); err != nil {
				e.log.Errorw("surplus release failed", "order_id", t.order.ID, "err", err)
			}
		}

		maker.ApplyFill(qty, price)
		if err := e.book.Reduce(best.ID, qty); err != nil {
			e.log.Errorw("book reduce failed", "order_id", best.ID, "err", err)
		}
		res.changed(*maker)

		t.remaining = t.remaining.Sub(qty)
		if t.order != nil {
			t.order.ApplyFill(qty, price)
		}

		trade := model.Trade{
			Symbol:       e.book.Symbol(),
			MakerOrderID: maker.ID,
			TakerSide:    t.side,
			Price:        price,
			Quantity:     qty,
			ExecutedAt:   now,
		}
		if t.order != nil {
			trade.TakerOrderID = t.order.ID
		}
		res.fills = append(res.fills, trade)
		res.filledQty = res.filledQty.Add(qty)
		res.quoteTotal = res.quoteTotal.Add(cost)
	}

	return res
}

// settle moves both legs of one fill through the ledger: the asset from the
// seller to the buyer, the quote from the buyer to the seller. Standing
// sides pay out of their reservation, a market taker pays out of available.
func (e *Exchange) settle(t *taker, maker *model.Order, qty, cost decimal.Decimal) error {
	var buyAccount, sellAccount string
	if t.side == model.OrderSideBuy {
		buyAccount, sellAccount = t.account, maker.Account
	} else {
		buyAccount, sellAccount = maker.Account, t.account
	}

	// asset leg
	if t.side == model.OrderSideSell && t.market {
		if err := e.ledger.SettleAvailable(sellAccount, e.pair.Base, qty, buyAccount, e.pair.Base, qty); err != nil {
			return err
		}
	} else {
		if err := e.ledger.SettleReserved(sellAccount, e.pair.Base, qty, buyAccount, e.pair.Base, qty); err != nil {
			return err
		}
	}

	// quote leg
	if t.side == model.OrderSideBuy && t.market {
		return e.ledger.SettleAvailable(buyAccount, e.pair.Quote, cost, sellAccount, e.pair.Quote, cost)
	}
	return e.ledger.SettleReserved(buyAccount, e.pair.Quote, cost, sellAccount, e.pair.Quote, cost)
}

// affordable caps a market fill by the taker's own available balance at the
// resting price, keeping the ledger non-negative without a reservation.
func (e *Exchange) affordable(t *taker, price decimal.Decimal) decimal.Decimal {
	if t.side == model.OrderSideBuy {
		avail := e.ledger.Balance(t.account, e.pair.Quote).Available
		qty := avail.DivRound(price, qtyScale+2).Truncate(qtyScale)
		// division rounding must never let qty*price exceed the balance
		if qty.Mul(price).GreaterThan(avail) {
			qty = qty.Sub(decimal.New(1, -qtyScale))
		}
		if qty.IsNegative() {
			return decimal.Zero
		}
		return qty
	}
	return e.ledger.Balance(t.account, e.pair.Base).Available
}

func opposite(side model.OrderSide) model.OrderSide {
	if side == model.OrderSideBuy {
		return model.OrderSideSell
	}
	return model.OrderSideBuy
}

// crosses reports whether a standing taker's limit admits the resting price:
// a buyer matches asks at or below its limit, a seller matches bids at or
// above it.
func crosses(side model.OrderSide, limit, restingPrice decimal.Decimal) bool {
	if side == model.OrderSideBuy {
		return restingPrice.LessThanOrEqual(limit)
	}
	return restingPrice.GreaterThanOrEqual(limit)
}
