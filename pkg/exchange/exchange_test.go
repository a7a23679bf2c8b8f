package exchange

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tothtamas28/exchange/pkg/model"
)

var btcusd = model.Pair{Base: "BTC", Quote: "USD"}

func d(s string) decimal.Decimal {
	out, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return out
}

type recordingNotifier struct {
	orders []model.Order
}

func (r *recordingNotifier) OrderChanged(o model.Order) {
	r.orders = append(r.orders, o)
}

func newTestExchange(t *testing.T, opts ...Option) *Exchange {
	t.Helper()
	return New(btcusd, opts...)
}

func fund(t *testing.T, e *Exchange, currency, amount string) string {
	t.Helper()
	acct := e.RegisterAccount()
	require.NoError(t, e.Deposit(context.Background(), acct, currency, d(amount)))
	return acct
}

func TestDepositUnknownCurrency(t *testing.T) {
	e := newTestExchange(t)
	acct := e.RegisterAccount()

	err := e.Deposit(context.Background(), acct, "ETH", d("1"))
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestGetBalanceZeroFilled(t *testing.T) {
	e := newTestExchange(t)
	acct := e.RegisterAccount()

	bal := e.GetBalance(acct)
	require.Contains(t, bal, "BTC")
	require.Contains(t, bal, "USD")
	assert.True(t, bal["BTC"].Available.IsZero())
	assert.True(t, bal["USD"].Reserved.IsZero())
}

func TestStandingOrderValidation(t *testing.T) {
	e := newTestExchange(t)
	acct := fund(t, e, "USD", "1000")
	ctx := context.Background()

	_, err := e.PlaceStandingOrder(ctx, acct, "HOLD", d("1"), d("100"), "")
	assert.ErrorIs(t, err, ErrInvalidSide)

	_, err = e.PlaceStandingOrder(ctx, acct, model.OrderSideBuy, d("0"), d("100"), "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = e.PlaceStandingOrder(ctx, acct, model.OrderSideBuy, d("1"), d("-5"), "")
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

// An order the seller cannot back is still created, in CANCELLED, and the
// ledger is untouched.
func TestStandingSellInsufficientFunds(t *testing.T) {
	n := &recordingNotifier{}
	e := newTestExchange(t, WithNotifier(n))
	seller := fund(t, e, "BTC", "5")

	order, err := e.PlaceStandingOrder(context.Background(), seller, model.OrderSideSell, d("9"), d("10000"), "")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.True(t, order.Remaining.Equal(d("9")))
	assert.True(t, order.Satisfied.IsZero())

	bal := e.GetBalance(seller)
	assert.True(t, bal["BTC"].Available.Equal(d("5")))
	assert.True(t, bal["BTC"].Reserved.IsZero())

	// the record exists and is queryable
	got, err := e.GetStandingOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, got.Status)

	require.Len(t, n.orders, 1)
	assert.Equal(t, order.ID, n.orders[0].ID)
}

func TestStandingOrderReserves(t *testing.T) {
	e := newTestExchange(t)
	buyer := fund(t, e, "USD", "300000")

	order, err := e.PlaceStandingOrder(context.Background(), buyer, model.OrderSideBuy, d("10"), d("25000"), "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusLive, order.Status)

	bal := e.GetBalance(buyer)
	assert.True(t, bal["USD"].Available.Equal(d("50000")))
	assert.True(t, bal["USD"].Reserved.Equal(d("250000")))
}

// A market order walks the book level by level, paying each maker's resting
// price, and the unfilled tail is discarded rather than rested.
func TestMarketBuyWalksBook(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()

	sellerX := fund(t, e, "BTC", "10")
	sellerY := fund(t, e, "BTC", "10")
	buyer := fund(t, e, "USD", "200000")

	x, err := e.PlaceStandingOrder(ctx, sellerX, model.OrderSideSell, d("10"), d("10000"), "")
	require.NoError(t, err)
	y, err := e.PlaceStandingOrder(ctx, sellerY, model.OrderSideSell, d("10"), d("20000"), "")
	require.NoError(t, err)

	result, err := e.PlaceMarketOrder(ctx, buyer, model.OrderSideBuy, d("15"))
	require.NoError(t, err)

	assert.True(t, result.Quantity.Equal(d("15")), "filled %s", result.Quantity)
	assert.True(t, result.QuoteTotal.Equal(d("200000")), "spent %s", result.QuoteTotal)

	gotX, err := e.GetStandingOrder(x.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFulfilled, gotX.Status)
	assert.True(t, gotX.AvgPrice.Equal(d("10000")))

	gotY, err := e.GetStandingOrder(y.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusLive, gotY.Status)
	assert.True(t, gotY.Satisfied.Equal(d("5")))
	assert.True(t, gotY.Remaining.Equal(d("5")))
	assert.True(t, gotY.AvgPrice.Equal(d("20000")))

	buyerBal := e.GetBalance(buyer)
	assert.True(t, buyerBal["USD"].Available.IsZero(), "leftover %s", buyerBal["USD"].Available)
	assert.True(t, buyerBal["BTC"].Available.Equal(d("15")))

	assert.True(t, e.GetBalance(sellerX)["USD"].Available.Equal(d("100000")))
	assert.True(t, e.GetBalance(sellerY)["USD"].Available.Equal(d("100000")))
}

// A market buy with less cash than book depth is truncated by the buyer's
// own balance instead of overdrawing.
func TestMarketBuyCappedByBalance(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()

	seller := fund(t, e, "BTC", "10")
	buyer := fund(t, e, "USD", "35000")

	_, err := e.PlaceStandingOrder(ctx, seller, model.OrderSideSell, d("10"), d("10000"), "")
	require.NoError(t, err)

	result, err := e.PlaceMarketOrder(ctx, buyer, model.OrderSideBuy, d("10"))
	require.NoError(t, err)

	assert.True(t, result.Quantity.Equal(d("3.5")), "filled %s", result.Quantity)
	assert.True(t, result.QuoteTotal.Equal(d("35000")))
	assert.True(t, e.GetBalance(buyer)["USD"].Available.IsZero())
	assert.True(t, e.GetBalance(buyer)["BTC"].Available.Equal(d("3.5")))
}

func TestMarketSell(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()

	buyer := fund(t, e, "USD", "90000")
	seller := fund(t, e, "BTC", "2")

	bid, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("3"), d("30000"), "")
	require.NoError(t, err)

	result, err := e.PlaceMarketOrder(ctx, seller, model.OrderSideSell, d("2"))
	require.NoError(t, err)

	assert.True(t, result.Quantity.Equal(d("2")))
	assert.True(t, result.QuoteTotal.Equal(d("60000")))
	assert.True(t, result.AvgPrice.Equal(d("30000")))

	got, err := e.GetStandingOrder(bid.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusLive, got.Status)
	assert.True(t, got.Remaining.Equal(d("1")))

	sellerBal := e.GetBalance(seller)
	assert.True(t, sellerBal["BTC"].Available.IsZero())
	assert.True(t, sellerBal["USD"].Available.Equal(d("60000")))

	buyerBal := e.GetBalance(buyer)
	assert.True(t, buyerBal["BTC"].Available.Equal(d("2")))
	assert.True(t, buyerBal["USD"].Reserved.Equal(d("30000")))
}

func TestMarketOrderEmptyBook(t *testing.T) {
	e := newTestExchange(t)
	buyer := fund(t, e, "USD", "10000")

	result, err := e.PlaceMarketOrder(context.Background(), buyer, model.OrderSideBuy, d("1"))
	require.NoError(t, err)
	assert.True(t, result.Quantity.IsZero())
	assert.True(t, result.QuoteTotal.IsZero())
	assert.True(t, result.AvgPrice.IsZero())
}

// A standing buyer reserves at its own limit but pays each maker's resting
// price; the difference is released back per fill.
func TestStandingBuyMakerPricingSurplus(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()

	seller := fund(t, e, "BTC", "5")
	buyer := fund(t, e, "USD", "300000")

	_, err := e.PlaceStandingOrder(ctx, seller, model.OrderSideSell, d("5"), d("20000"), "")
	require.NoError(t, err)

	order, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("10"), d("25000"), "")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusLive, order.Status)
	assert.True(t, order.Satisfied.Equal(d("5")))
	assert.True(t, order.Remaining.Equal(d("5")))
	assert.True(t, order.AvgPrice.Equal(d("20000")))
	assert.True(t, order.Cost.Equal(d("100000")))

	bal := e.GetBalance(buyer)
	// paid 5*20000, still reserving 5*25000 for the live remainder
	assert.True(t, bal["USD"].Reserved.Equal(d("125000")), "reserved %s", bal["USD"].Reserved)
	assert.True(t, bal["USD"].Available.Equal(d("75000")), "available %s", bal["USD"].Available)
	assert.True(t, bal["BTC"].Available.Equal(d("5")))
}

func TestPriceTimePriority(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()

	sellerA := fund(t, e, "BTC", "1")
	sellerB := fund(t, e, "BTC", "1")
	sellerC := fund(t, e, "BTC", "1")
	buyer := fund(t, e, "USD", "100000")

	a, err := e.PlaceStandingOrder(ctx, sellerA, model.OrderSideSell, d("1"), d("11000"), "")
	require.NoError(t, err)
	b, err := e.PlaceStandingOrder(ctx, sellerB, model.OrderSideSell, d("1"), d("10000"), "")
	require.NoError(t, err)
	c, err := e.PlaceStandingOrder(ctx, sellerC, model.OrderSideSell, d("1"), d("10000"), "")
	require.NoError(t, err)

	result, err := e.PlaceMarketOrder(ctx, buyer, model.OrderSideBuy, d("2"))
	require.NoError(t, err)
	require.True(t, result.Quantity.Equal(d("2")))

	// both fills come from the 10000 level, earliest first
	gotB, _ := e.GetStandingOrder(b.ID)
	gotC, _ := e.GetStandingOrder(c.ID)
	gotA, _ := e.GetStandingOrder(a.ID)
	assert.Equal(t, model.OrderStatusFulfilled, gotB.Status)
	assert.Equal(t, model.OrderStatusFulfilled, gotC.Status)
	assert.Equal(t, model.OrderStatusLive, gotA.Status)
}

func TestCancelStandingOrder(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()
	buyer := fund(t, e, "USD", "300000")

	order, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("10"), d("25000"), "")
	require.NoError(t, err)

	// a second order against the already reserved cash dies on arrival
	rejected, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("3"), d("20000"), "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, rejected.Status)

	require.NoError(t, e.CancelStandingOrder(ctx, order.ID))

	got, err := e.GetStandingOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, got.Status)

	bal := e.GetBalance(buyer)
	assert.True(t, bal["USD"].Available.Equal(d("300000")))
	assert.True(t, bal["USD"].Reserved.IsZero())

	// and the same order can now be afforded again
	replaced, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("10"), d("25000"), "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusLive, replaced.Status)
}

func TestCancelTerminalOrder(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()
	buyer := fund(t, e, "USD", "300000")

	order, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("10"), d("25000"), "")
	require.NoError(t, err)
	require.NoError(t, e.CancelStandingOrder(ctx, order.ID))

	before := e.GetBalance(buyer)
	assert.ErrorIs(t, e.CancelStandingOrder(ctx, order.ID), ErrAlreadyTerminal)
	after := e.GetBalance(buyer)

	assert.True(t, before["USD"].Available.Equal(after["USD"].Available))
	assert.True(t, before["USD"].Reserved.Equal(after["USD"].Reserved))
}

func TestCancelUnknownOrder(t *testing.T) {
	e := newTestExchange(t)
	assert.ErrorIs(t, e.CancelStandingOrder(context.Background(), 42), ErrOrderNotFound)

	_, err := e.GetStandingOrder(42)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// A cancelled remainder releases only what is still reserved, not the part
// already settled away.
func TestCancelAfterPartialFill(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()

	seller := fund(t, e, "BTC", "4")
	buyer := fund(t, e, "USD", "100000")

	bid, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("10"), d("10000"), "")
	require.NoError(t, err)

	_, err = e.PlaceMarketOrder(ctx, seller, model.OrderSideSell, d("4"))
	require.NoError(t, err)

	require.NoError(t, e.CancelStandingOrder(ctx, bid.ID))

	bal := e.GetBalance(buyer)
	assert.True(t, bal["USD"].Available.Equal(d("60000")), "available %s", bal["USD"].Available)
	assert.True(t, bal["USD"].Reserved.IsZero())
	assert.True(t, bal["BTC"].Available.Equal(d("4")))
}

func TestStandingOrdersCrossOnArrival(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()

	seller := fund(t, e, "BTC", "2")
	buyer := fund(t, e, "USD", "50000")

	ask, err := e.PlaceStandingOrder(ctx, seller, model.OrderSideSell, d("2"), d("20000"), "")
	require.NoError(t, err)

	bid, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("2"), d("21000"), "")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusFulfilled, bid.Status)
	assert.True(t, bid.AvgPrice.Equal(d("20000")))

	gotAsk, err := e.GetStandingOrder(ask.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFulfilled, gotAsk.Status)
}

func TestNonCrossingOrdersRest(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()

	seller := fund(t, e, "BTC", "1")
	buyer := fund(t, e, "USD", "10000")

	ask, err := e.PlaceStandingOrder(ctx, seller, model.OrderSideSell, d("1"), d("20000"), "")
	require.NoError(t, err)
	bid, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("1"), d("10000"), "")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusLive, ask.Status)
	assert.Equal(t, model.OrderStatusLive, bid.Status)
	assert.True(t, ask.Satisfied.IsZero())
	assert.True(t, bid.Satisfied.IsZero())
}

func TestTradeCallback(t *testing.T) {
	var trades []model.Trade
	e := New(btcusd, WithTradeCallback(func(tr model.Trade) { trades = append(trades, tr) }))
	ctx := context.Background()

	seller := fund(t, e, "BTC", "1")
	buyer := fund(t, e, "USD", "10000")

	ask, err := e.PlaceStandingOrder(ctx, seller, model.OrderSideSell, d("1"), d("10000"), "")
	require.NoError(t, err)

	_, err = e.PlaceMarketOrder(ctx, buyer, model.OrderSideBuy, d("1"))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, "BTC-USD", trades[0].Symbol)
	assert.Equal(t, ask.ID, trades[0].MakerOrderID)
	assert.Equal(t, int64(0), trades[0].TakerOrderID)
	assert.Equal(t, model.OrderSideBuy, trades[0].TakerSide)
	assert.True(t, trades[0].Price.Equal(d("10000")))
	assert.True(t, trades[0].Quantity.Equal(d("1")))
}

func TestNotifierSeesMakerAndTaker(t *testing.T) {
	n := &recordingNotifier{}
	e := newTestExchange(t, WithNotifier(n))
	ctx := context.Background()

	seller := fund(t, e, "BTC", "1")
	buyer := fund(t, e, "USD", "10000")

	ask, err := e.PlaceStandingOrder(ctx, seller, model.OrderSideSell, d("1"), d("10000"), "")
	require.NoError(t, err)
	bid, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("1"), d("10000"), "")
	require.NoError(t, err)

	// resting, then maker fill, then taker fill
	require.Len(t, n.orders, 3)
	assert.Equal(t, ask.ID, n.orders[0].ID)
	assert.Equal(t, model.OrderStatusLive, n.orders[0].Status)
	assert.Equal(t, ask.ID, n.orders[1].ID)
	assert.Equal(t, model.OrderStatusFulfilled, n.orders[1].Status)
	assert.Equal(t, bid.ID, n.orders[2].ID)
	assert.Equal(t, model.OrderStatusFulfilled, n.orders[2].Status)
}

// Total value per currency never changes through reserve, match and cancel.
func TestConservationAcrossPass(t *testing.T) {
	e := newTestExchange(t)
	ctx := context.Background()

	seller := fund(t, e, "BTC", "10")
	buyer := fund(t, e, "USD", "300000")

	_, err := e.PlaceStandingOrder(ctx, seller, model.OrderSideSell, d("10"), d("20000"), "")
	require.NoError(t, err)
	bid, err := e.PlaceStandingOrder(ctx, buyer, model.OrderSideBuy, d("12"), d("25000"), "")
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusLive, bid.Status)
	require.NoError(t, e.CancelStandingOrder(ctx, bid.ID))

	totalBTC := decimal.Zero
	totalUSD := decimal.Zero
	for _, acct := range []string{seller, buyer} {
		bal := e.GetBalance(acct)
		totalBTC = totalBTC.Add(bal["BTC"].Available).Add(bal["BTC"].Reserved)
		totalUSD = totalUSD.Add(bal["USD"].Available).Add(bal["USD"].Reserved)
	}
	assert.True(t, totalBTC.Equal(d("10")), "BTC total %s", totalBTC)
	assert.True(t, totalUSD.Equal(d("300000")), "USD total %s", totalUSD)
}
