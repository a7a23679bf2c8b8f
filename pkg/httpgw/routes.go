package httpgw

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tothtamas28/exchange/pkg/exchange"
)

// NewApp builds the fiber app exposing the core over HTTP. Route shape
// mirrors the public API: register, balance, market and standing orders.
func NewApp(ex *exchange.Exchange) *fiber.App {
	app := fiber.New()
	InitializeRoutes(app, ex)
	return app
}

func InitializeRoutes(app *fiber.App, ex *exchange.Exchange) {
	app.Post("/register", RegisterHandler(ex))
	app.Post("/balance", DepositHandler(ex))
	app.Get("/balance", GetBalanceHandler(ex))
	app.Post("/market_order", MarketOrderHandler(ex))
	app.Post("/standing_order", StandingOrderHandler(ex))
	app.Get("/standing_order/:id", GetStandingOrderHandler(ex))
	app.Delete("/standing_order/:id", CancelStandingOrderHandler(ex))
}
