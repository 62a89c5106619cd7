package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger     *inventory.LedgerUseCase
	Status     *inventory.StockStatusUseCase
	Movements  *inventory.MovementQueryUseCase
	Statistics *analytics.StatisticsUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todo el libro requiere Bearer Token; el actor de cada movimiento sale del token
	ledger := api.Group("/ledger", AuthMiddleware(deps.JWTSecret))

	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleAuditor)

	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledger.Post("/adjustments", writers, ledgerHandler.Adjust)
	ledger.Post("/transfers", writers, ledgerHandler.Transfer)
	ledger.Post("/counts", writers, ledgerHandler.SetAbsolute)
	ledger.Get("/stock/:item_id/:location_id", readers, ledgerHandler.GetQuantity)
	ledger.Get("/stock/:item_id/:location_id/verify", RequireRole(jwt.RoleAdmin, jwt.RoleAuditor), ledgerHandler.Verify)

	queryHandler := NewQueryHandler(deps.Status, deps.Movements, deps.Statistics)
	ledger.Get("/status", readers, queryHandler.ListByStatus)
	ledger.Get("/movements", readers, queryHandler.ListMovements)
	ledger.Get("/movements/totals", readers, queryHandler.MovementTotals)
	ledger.Get("/movements/reference/:reference_id", readers, queryHandler.ListByReference)
	ledger.Get("/statistics", readers, queryHandler.Statistics)
}
