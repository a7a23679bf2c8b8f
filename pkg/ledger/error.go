package ledger

import "errors"

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrReservationUnderflow = errors.New("reservation underflow")
)
