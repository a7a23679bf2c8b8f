package orderbook

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tothtamas28/exchange/pkg/model"
)

func dec(s string) decimal.Decimal {
	out, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return out
}

func entry(id int64, side model.OrderSide, price, qty string) *Order {
	return &Order{ID: id, Account: fmt.Sprintf("acct-%d", id), Side: side, Price: dec(price), Qty: dec(qty)}
}

func TestPeekBestAsk(t *testing.T) {
	b := NewBook("BTC-USD")

	if err := b.Insert(entry(1, model.OrderSideSell, "20000", "10")); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert(entry(2, model.OrderSideSell, "10000", "10")); err != nil {
		t.Fatal(err)
	}

	best := b.PeekBest(model.OrderSideSell)
	if best == nil || best.ID != 2 {
		t.Fatalf("expected lowest ask first, got %+v", best)
	}
}

func TestPeekBestBid(t *testing.T) {
	b := NewBook("BTC-USD")

	if err := b.Insert(entry(1, model.OrderSideBuy, "9000", "1")); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert(entry(2, model.OrderSideBuy, "9500", "1")); err != nil {
		t.Fatal(err)
	}

	best := b.PeekBest(model.OrderSideBuy)
	if best == nil || best.ID != 2 {
		t.Fatalf("expected highest bid first, got %+v", best)
	}
}

func TestFIFOWithinLevel(t *testing.T) {
	b := NewBook("BTC-USD")

	for id := int64(1); id <= 3; id++ {
		if err := b.Insert(entry(id, model.OrderSideSell, "10000", "5")); err != nil {
			t.Fatal(err)
		}
	}

	for want := int64(1); want <= 3; want++ {
		best := b.PeekBest(model.OrderSideSell)
		if best == nil || best.ID != want {
			t.Fatalf("expected FIFO order %d, got %+v", want, best)
		}
		if err := b.Reduce(best.ID, best.Qty); err != nil {
			t.Fatal(err)
		}
	}

	if !b.IsEmpty(model.OrderSideSell) {
		t.Fatal("expected empty ask side")
	}
}

func TestEqualPricesDistinctExponents(t *testing.T) {
	b := NewBook("BTC-USD")

	if err := b.Insert(entry(1, model.OrderSideSell, "10000", "1")); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert(entry(2, model.OrderSideSell, "10000.00", "1")); err != nil {
		t.Fatal(err)
	}

	// same level, so creation order decides
	best := b.PeekBest(model.OrderSideSell)
	if best == nil || best.ID != 1 {
		t.Fatalf("expected creation-order tie break, got %+v", best)
	}
}

func TestReducePartial(t *testing.T) {
	b := NewBook("BTC-USD")

	if err := b.Insert(entry(1, model.OrderSideBuy, "9000", "10")); err != nil {
		t.Fatal(err)
	}
	if err := b.Reduce(1, dec("4")); err != nil {
		t.Fatal(err)
	}

	best := b.PeekBest(model.OrderSideBuy)
	if best == nil || !best.Qty.Equal(dec("6")) {
		t.Fatalf("expected qty 6, got %+v", best)
	}
	if !b.Contains(1) {
		t.Fatal("partially filled order should stay a member")
	}
}

func TestReduceToZeroRemoves(t *testing.T) {
	b := NewBook("BTC-USD")

	if err := b.Insert(entry(1, model.OrderSideBuy, "9000", "10")); err != nil {
		t.Fatal(err)
	}
	if err := b.Reduce(1, dec("10")); err != nil {
		t.Fatal(err)
	}

	if b.Contains(1) {
		t.Fatal("filled order should be removed")
	}
	if !b.IsEmpty(model.OrderSideBuy) {
		t.Fatal("expected empty bid side")
	}
}

func TestRemoveByID(t *testing.T) {
	b := NewBook("BTC-USD")

	if err := b.Insert(entry(1, model.OrderSideSell, "10000", "10")); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert(entry(2, model.OrderSideSell, "10000", "10")); err != nil {
		t.Fatal(err)
	}

	if !b.RemoveByID(1) {
		t.Fatal("expected removal success")
	}
	if b.RemoveByID(1) {
		t.Fatal("second removal should report not found")
	}

	// the lazily deleted entry must not surface
	best := b.PeekBest(model.OrderSideSell)
	if best == nil || best.ID != 2 {
		t.Fatalf("expected order 2, got %+v", best)
	}
}

func TestDuplicateInsert(t *testing.T) {
	b := NewBook("BTC-USD")

	if err := b.Insert(entry(1, model.OrderSideSell, "10000", "10")); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert(entry(1, model.OrderSideSell, "10000", "10")); err != errDuplicateOrder {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestInvalidInsert(t *testing.T) {
	b := NewBook("BTC-USD")

	if err := b.Insert(entry(1, model.OrderSideSell, "10000", "0")); err != errInvalidOrderQty {
		t.Fatalf("expected qty error, got %v", err)
	}
	if err := b.Insert(entry(1, model.OrderSideSell, "0", "1")); err != errInvalidOrderPrice {
		t.Fatalf("expected price error, got %v", err)
	}
}

func TestEmptyLevelCleanup(t *testing.T) {
	b := NewBook("BTC-USD")

	num := 1000
	for i := 0; i < num; i++ {
		o := entry(int64(i+1), model.OrderSideSell, fmt.Sprintf("%d", 10000+i), "1")
		if err := b.Insert(o); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < num; i++ {
		if !b.RemoveByID(int64(i + 1)) {
			t.Fatalf("remove %d failed", i+1)
		}
	}

	if !b.IsEmpty(model.OrderSideSell) {
		t.Fatal("expected all levels swept")
	}
}
