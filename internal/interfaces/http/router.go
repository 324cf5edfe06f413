package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/cashbox"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/application/reports"
	"github.com/tu-usuario/pos-ledger/internal/application/sales"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SalesUC   *sales.UseCase
	StockUC   *ledger.StockLedgerUseCase
	CashboxUC *cashbox.UseCase
	ReportsUC *reports.UseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas las rutas del núcleo son
// protegidas: los permisos finos (descuentos, anulaciones) los valida el
// caso de uso con el actor del token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Transactions (protegido)
	transactions := protected.Group("/transactions")
	salesHandler := NewSalesHandler(deps.SalesUC)
	transactions.Post("/", salesHandler.Create)
	transactions.Get("/:id", salesHandler.GetByID)
	transactions.Post("/:id/payments", salesHandler.AddPayment)
	transactions.Post("/:id/complete", salesHandler.Complete)
	transactions.Post("/:id/void", RequirePermission(entity.PermVoidTransaction), salesHandler.Void)
	transactions.Post("/:id/hold", salesHandler.Hold)
	transactions.Post("/:id/release", salesHandler.ReleaseHold)
	transactions.Post("/:id/returns", salesHandler.CreateReturn)

	// Stock ledger (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Post("/adjustments", stockHandler.Adjust)
	stock.Post("/transfers", stockHandler.Transfer)
	stock.Get("/movements", stockHandler.ListMovements)
	stock.Get("/inventory", stockHandler.ListInventory)

	// Cash sessions (protegido)
	cash := protected.Group("/cash/sessions")
	cashboxHandler := NewCashboxHandler(deps.CashboxUC)
	cash.Post("/", cashboxHandler.Open)
	cash.Get("/:id", cashboxHandler.GetSession)
	cash.Post("/:id/movements", cashboxHandler.RecordMovement)
	cash.Post("/:id/close", cashboxHandler.Close)
	cash.Get("/:id/zreport", cashboxHandler.ZReport)

	// Reports (protegido, solo lectura)
	reportsGroup := protected.Group("/reports")
	reportsHandler := NewReportsHandler(deps.ReportsUC)
	reportsGroup.Get("/inventory-summary", reportsHandler.InventorySummary)
	reportsGroup.Get("/daily-sales", reportsHandler.DailySales)
}
