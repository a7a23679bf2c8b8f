package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Amounts is a point-in-time balance snapshot for one currency.
type Amounts struct {
	Available decimal.Decimal
	Reserved  decimal.Decimal
}

type balance struct {
	available decimal.Decimal
	reserved  decimal.Decimal
}

// Ledger holds per-account, per-currency balances. Every mutation keeps
// available and reserved non-negative; a reservation moves value between the
// two buckets and a settlement is the only way value leaves an account.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]map[string]*balance
}

func New() *Ledger {
	return &Ledger{
		accounts: make(map[string]map[string]*balance),
	}
}

// CreateAccount registers an account with zero balances for every currency.
// Idempotent.
func (l *Ledger) CreateAccount(account string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[account]; !ok {
		l.accounts[account] = make(map[string]*balance)
	}
}

func (l *Ledger) Deposit(account, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getOrCreate(account, currency)
	b.available = b.available.Add(amount)
	return nil
}

// Balance returns a snapshot for one currency. Unknown accounts and
// currencies read as zero.
func (l *Ledger) Balance(account, currency string) Amounts {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if b, ok := l.accounts[account][currency]; ok {
		return Amounts{Available: b.available, Reserved: b.reserved}
	}
	return Amounts{Available: decimal.Zero, Reserved: decimal.Zero}
}

// Balances returns a snapshot of every currency the account has touched.
func (l *Ledger) Balances(account string) map[string]Amounts {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]Amounts, len(l.accounts[account]))
	for cur, b := range l.accounts[account] {
		out[cur] = Amounts{Available: b.available, Reserved: b.reserved}
	}
	return out
}

// Reserve moves amount from available to reserved. On a shortfall nothing is
// mutated and ErrInsufficientFunds is returned.
func (l *Ledger) Reserve(account, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getOrCreate(account, currency)
	if b.available.LessThan(amount) {
		return ErrInsufficientFunds
	}
	b.available = b.available.Sub(amount)
	b.reserved = b.reserved.Add(amount)
	return nil
}

// Release moves amount from reserved back to available. The caller
// guarantees the reservation exists; a shortfall here is an internal
// invariant breach, not a user-triggerable condition.
func (l *Ledger) Release(account, currency string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getOrCreate(account, currency)
	if b.reserved.LessThan(amount) {
		return ErrReservationUnderflow
	}
	b.reserved = b.reserved.Sub(amount)
	b.available = b.available.Add(amount)
	return nil
}

// SettleReserved atomically debits payerAmount from the payer's reserved
// bucket and credits payeeAmount to the payee's available bucket. One call
// settles one side of a trade fill.
func (l *Ledger) SettleReserved(payer, payerCurrency string, payerAmount decimal.Decimal, payee, payeeCurrency string, payeeAmount decimal.Decimal) error {
	if payerAmount.IsNegative() || payeeAmount.IsNegative() {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pb := l.getOrCreate(payer, payerCurrency)
	if pb.reserved.LessThan(payerAmount) {
		return ErrReservationUnderflow
	}
	pb.reserved = pb.reserved.Sub(payerAmount)

	eb := l.getOrCreate(payee, payeeCurrency)
	eb.available = eb.available.Add(payeeAmount)
	return nil
}

// SettleAvailable is SettleReserved with the debit taken from the payer's
// available bucket instead. Market takers settle through this, they never
// hold a reservation.
func (l *Ledger) SettleAvailable(payer, payerCurrency string, payerAmount decimal.Decimal, payee, payeeCurrency string, payeeAmount decimal.Decimal) error {
	if payerAmount.IsNegative() || payeeAmount.IsNegative() {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pb := l.getOrCreate(payer, payerCurrency)
	if pb.available.LessThan(payerAmount) {
		return ErrInsufficientFunds
	}
	pb.available = pb.available.Sub(payerAmount)

	eb := l.getOrCreate(payee, payeeCurrency)
	eb.available = eb.available.Add(payeeAmount)
	return nil
}

func (l *Ledger) getOrCreate(account, currency string) *balance {
	cur, ok := l.accounts[account]
	if !ok {
		cur = make(map[string]*balance)
		l.accounts[account] = cur
	}
	b, ok := cur[currency]
	if !ok {
		b = &balance{available: decimal.Zero, reserved: decimal.Zero}
		cur[currency] = b
	}
	return b
}
