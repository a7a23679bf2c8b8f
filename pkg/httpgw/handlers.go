package httpgw

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/tothtamas28/exchange/pkg/exchange"
	"github.com/tothtamas28/exchange/pkg/ledger"
	"github.com/tothtamas28/exchange/pkg/model"
)

// accountHeader carries the caller's identity. Authentication proper lives
// outside this service.
const accountHeader = "X-Account-ID"

var validate = validator.New()

func validateInput(input interface{}) error {
	return validate.Struct(input)
}

func RegisterHandler(ex *exchange.Exchange) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(RegisterResponseSchema{AccountID: ex.RegisterAccount()})
	}
}

func DepositHandler(ex *exchange.Exchange) fiber.Handler {
	return func(c fiber.Ctx) error {
		account := c.Get(accountHeader)
		if account == "" {
			return fiber.ErrUnauthorized
		}

		var req DepositSchema
		if err := c.Bind().Body(&req); err != nil {
			return fiber.ErrBadRequest
		}
		if err := validateInput(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		if err := ex.Deposit(context.Background(), account, *req.Currency, *req.TopupAmount); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(DepositResponseSchema{Success: true})
	}
}

func GetBalanceHandler(ex *exchange.Exchange) fiber.Handler {
	return func(c fiber.Ctx) error {
		account := c.Get(accountHeader)
		if account == "" {
			return fiber.ErrUnauthorized
		}

		balances := ex.GetBalance(account)
		out := GetBalanceResponseSchema{Balances: make(map[string]BalanceSchema, len(balances))}
		for cur, b := range balances {
			out.Balances[cur] = BalanceSchema{Available: b.Available, Reserved: b.Reserved}
		}
		return c.JSON(out)
	}
}

func MarketOrderHandler(ex *exchange.Exchange) fiber.Handler {
	return func(c fiber.Ctx) error {
		account := c.Get(accountHeader)
		if account == "" {
			return fiber.ErrUnauthorized
		}

		var req MarketOrderSchema
		if err := c.Bind().Body(&req); err != nil {
			return fiber.ErrBadRequest
		}
		if err := validateInput(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		res, err := ex.PlaceMarketOrder(context.Background(), account, model.OrderSide(*req.Type), *req.Quantity)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(MarketOrderResponseSchema{Quantity: res.Quantity, AvgPrice: res.AvgPrice})
	}
}

func StandingOrderHandler(ex *exchange.Exchange) fiber.Handler {
	return func(c fiber.Ctx) error {
		account := c.Get(accountHeader)
		if account == "" {
			return fiber.ErrUnauthorized
		}

		var req StandingOrderSchema
		if err := c.Bind().Body(&req); err != nil {
			return fiber.ErrBadRequest
		}
		if err := validateInput(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		order, err := ex.PlaceStandingOrder(context.Background(), account, model.OrderSide(*req.Type), *req.Quantity, *req.LimitPrice, req.WebhookURL)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(StandingOrderResponseSchema{OrderID: order.ID, State: string(order.Status)})
	}
}

func GetStandingOrderHandler(ex *exchange.Exchange) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := orderIDParam(c)
		if err != nil {
			return fiber.ErrBadRequest
		}

		order, err := ex.GetStandingOrder(id)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(GetStandingOrderResponseSchema{
			Type:           string(order.Side),
			LimitPrice:     order.LimitPrice,
			FilledQuantity: order.Satisfied,
			Quantity:       order.Remaining,
			AvgPrice:       order.AvgPrice,
			State:          string(order.Status),
		})
	}
}

func CancelStandingOrderHandler(ex *exchange.Exchange) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := orderIDParam(c)
		if err != nil {
			return fiber.ErrBadRequest
		}

		if err := ex.CancelStandingOrder(context.Background(), id); err != nil {
			return errorResponse(c, err)
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

func orderIDParam(c fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func errorResponse(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, exchange.ErrOrderNotFound):
		return fiber.ErrNotFound
	case errors.Is(err, exchange.ErrAlreadyTerminal):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, exchange.ErrInvalidQuantity),
		errors.Is(err, exchange.ErrInvalidPrice),
		errors.Is(err, exchange.ErrInvalidSide),
		errors.Is(err, exchange.ErrUnknownCurrency),
		errors.Is(err, ledger.ErrInvalidAmount):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return err
	}
}
