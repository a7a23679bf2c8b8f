package exchange

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tothtamas28/exchange/pkg/ledger"
	"github.com/tothtamas28/exchange/pkg/model"
	"github.com/tothtamas28/exchange/pkg/orderbook"
)

// qtyScale bounds market-order affordability division so a fill quantity
// times its price never exceeds the payer's balance.
const qtyScale = 8

// Notifier receives a snapshot of every standing order whose status or
// quantities changed during a pass. Called outside the pass lock.
type Notifier interface {
	OrderChanged(order model.Order)
}

// TradeCallback receives every executed fill. Called outside the pass lock.
type TradeCallback func(trade model.Trade)

// Exchange ties the ledger, the order book and the lifecycle store together
// for one trading pair. All mutating operations on the pair serialize on one
// lock; a matching pass (reservation, book mutation, settlement, status
// transitions) is applied as a unit and readers never observe it half done.
type Exchange struct {
	pair   model.Pair
	ledger *ledger.Ledger
	book   *orderbook.Book
	store  *orderStore

	notifiers []Notifier
	callbacks []TradeCallback

	log *zap.SugaredLogger
	mu  sync.RWMutex
}

type Option func(*Exchange)

func WithNotifier(n Notifier) Option {
	return func(e *Exchange) { e.notifiers = append(e.notifiers, n) }
}

func WithTradeCallback(cb TradeCallback) Option {
	return func(e *Exchange) { e.callbacks = append(e.callbacks, cb) }
}

func New(pair model.Pair, opts ...Option) *Exchange {
	e := &Exchange{
		pair:   pair,
		ledger: ledger.New(),
		book:   orderbook.NewBook(pair.Symbol()),
		store:  newOrderStore(),
		log:    zap.S(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exchange) Pair() model.Pair {
	return e.pair
}

// RegisterAccount mints an account with zero balances. Identity is external
// to the core, so this is just the stub the API layer plugs into.
func (e *Exchange) RegisterAccount() string {
	id := uuid.NewString()
	e.ledger.CreateAccount(id)
	return id
}

func (e *Exchange) Deposit(ctx context.Context, account, currency string, amount decimal.Decimal) error {
	if currency != e.pair.Base && currency != e.pair.Quote {
		return ErrUnknownCurrency
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ledger.Deposit(account, currency, amount)
}

func (e *Exchange) GetBalance(account string) map[string]ledger.Amounts {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := e.ledger.Balances(account)
	for _, cur := range []string{e.pair.Base, e.pair.Quote} {
		if _, ok := out[cur]; !ok {
			out[cur] = ledger.Amounts{Available: decimal.Zero, Reserved: decimal.Zero}
		}
	}
	return out
}

// PlaceStandingOrder reserves, creates the record, then runs one crossing
// pass. When the reservation fails the order is still created, dead on
// arrival in CANCELLED, and never touches the book. The returned record is a
// snapshot taken at the end of the pass.
func (e *Exchange) PlaceStandingOrder(ctx context.Context, account string, side model.OrderSide, qty, limitPrice decimal.Decimal, webhookURL string) (model.Order, error) {
	if side != model.OrderSideBuy && side != model.OrderSideSell {
		return model.Order{}, ErrInvalidSide
	}
	if !qty.IsPositive() {
		return model.Order{}, ErrInvalidQuantity
	}
	if !limitPrice.IsPositive() {
		return model.Order{}, ErrInvalidPrice
	}

	e.mu.Lock()

	reserveCur, reserveAmt := e.reservationFor(side, qty, limitPrice)
	if err := e.ledger.Reserve(account, reserveCur, reserveAmt); err != nil {
		order := e.store.create(account, side, qty, limitPrice, webhookURL, model.OrderStatusCancelled)
		snapshot := *order
		e.mu.Unlock()

		e.log.Infow("standing order rejected on reservation",
			"order_id", snapshot.ID, "account", account, "side", side,
			"qty", qty, "limit_price", limitPrice)
		e.emit([]model.Order{snapshot}, nil)
		return snapshot, nil
	}

	order := e.store.create(account, side, qty, limitPrice, webhookURL, model.OrderStatusLive)
	res := e.match(&taker{
		order:     order,
		account:   account,
		side:      side,
		remaining: qty,
		limit:     limitPrice,
	})

	if order.Status == model.OrderStatusLive && order.Remaining.IsPositive() {
		if err := e.book.Insert(&orderbook.Order{
			ID:      order.ID,
			Account: order.Account,
			Side:    order.Side,
			Price:   order.LimitPrice,
			Qty:     order.Remaining,
		}); err != nil {
			e.log.Errorw("book insert failed", "order_id", order.ID, "err", err)
		}
	}
	res.changed(*order)
	snapshot := *order
	e.mu.Unlock()

	e.emit(res.orders(), res.fills)
	return snapshot, nil
}

// PlaceMarketOrder executes immediately against resting liquidity at resting
// prices. No reservation, no resting remainder: whatever the book (and the
// taker's own available balance) cannot cover is discarded.
func (e *Exchange) PlaceMarketOrder(ctx context.Context, account string, side model.OrderSide, qty decimal.Decimal) (model.MarketOrderResult, error) {
	if side != model.OrderSideBuy && side != model.OrderSideSell {
		return model.MarketOrderResult{}, ErrInvalidSide
	}
	if !qty.IsPositive() {
		return model.MarketOrderResult{}, ErrInvalidQuantity
	}

	e.mu.Lock()
	res := e.match(&taker{
		account:   account,
		side:      side,
		remaining: qty,
		market:    true,
	})
	e.mu.Unlock()

	e.emit(res.orders(), res.fills)

	out := model.MarketOrderResult{Quantity: res.filledQty, QuoteTotal: res.quoteTotal, AvgPrice: decimal.Zero}
	if res.filledQty.IsPositive() {
		out.AvgPrice = res.quoteTotal.DivRound(res.filledQty, qtyScale)
	}
	return out, nil
}

// CancelStandingOrder removes a LIVE order from the book, releases what is
// still reserved for it and freezes the record. Terminal orders are left
// untouched.
func (e *Exchange) CancelStandingOrder(ctx context.Context, orderID int64) error {
	e.mu.Lock()

	order, ok := e.store.get(orderID)
	if !ok {
		e.mu.Unlock()
		return ErrOrderNotFound
	}
	if order.IsTerminal() {
		e.mu.Unlock()
		return ErrAlreadyTerminal
	}

	e.book.RemoveByID(order.ID)
	releaseCur, releaseAmt := e.reservationFor(order.Side, order.Remaining, order.LimitPrice)
	if err := e.ledger.Release(order.Account, releaseCur, releaseAmt); err != nil {
		e.log.Errorw("release on cancel failed", "order_id", order.ID, "err", err)
	}
	order.Status = model.OrderStatusCancelled
	snapshot := *order
	e.mu.Unlock()

	e.emit([]model.Order{snapshot}, nil)
	return nil
}

func (e *Exchange) GetStandingOrder(orderID int64) (model.Order, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	order, ok := e.store.get(orderID)
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	return *order, nil
}

// reservationFor sizes the ledger reservation for the unfilled part of a
// standing order: the asset itself for a SELL, worst-case (limit-priced)
// quote for a BUY.
func (e *Exchange) reservationFor(side model.OrderSide, remaining, limitPrice decimal.Decimal) (string, decimal.Decimal) {
	if side == model.OrderSideBuy {
		return e.pair.Quote, remaining.Mul(limitPrice)
	}
	return e.pair.Base, remaining
}

func (e *Exchange) emit(changed []model.Order, fills []model.Trade) {
	for _, o := range changed {
		for _, n := range e.notifiers {
			n.OrderChanged(o)
		}
	}
	for _, t := range fills {
		for _, cb := range e.callbacks {
			cb(t)
		}
	}
}
