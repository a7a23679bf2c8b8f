package httpgw

import (
	"github.com/shopspring/decimal"
)

type RegisterResponseSchema struct {
	AccountID string `json:"account_id"`
}

type DepositSchema struct {
	TopupAmount *decimal.Decimal `json:"topup_amount" validate:"required"`
	Currency    *string          `json:"currency" validate:"required"`
}

type DepositResponseSchema struct {
	Success bool `json:"success"`
}

type BalanceSchema struct {
	Available decimal.Decimal `json:"available"`
	Reserved  decimal.Decimal `json:"reserved"`
}

type GetBalanceResponseSchema struct {
	Balances map[string]BalanceSchema `json:"balances"`
}

type MarketOrderSchema struct {
	Quantity *decimal.Decimal `json:"quantity" validate:"required"`
	Type     *string          `json:"type" validate:"required,oneof=BUY SELL"`
}

type MarketOrderResponseSchema struct {
	Quantity decimal.Decimal `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

type StandingOrderSchema struct {
	Quantity   *decimal.Decimal `json:"quantity" validate:"required"`
	Type       *string          `json:"type" validate:"required,oneof=BUY SELL"`
	LimitPrice *decimal.Decimal `json:"limit_price" validate:"required"`
	WebhookURL string           `json:"webhook_url" validate:"omitempty,url"`
}

type StandingOrderResponseSchema struct {
	OrderID int64  `json:"order_id"`
	State   string `json:"state"`
}

type GetStandingOrderResponseSchema struct {
	Type           string          `json:"type"`
	LimitPrice     decimal.Decimal `json:"limit_price"`
	FilledQuantity decimal.Decimal `json:"filled_quantity"`
	Quantity       decimal.Decimal `json:"quantity"`
	AvgPrice       decimal.Decimal `json:"avg_price"`
	State          string          `json:"state"`
}
