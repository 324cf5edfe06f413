package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/application/reports"
)

// ReportsHandler maneja las consultas de reportes (protegido, solo lectura).
type ReportsHandler struct {
	uc *reports.UseCase
}

// NewReportsHandler construye el handler.
func NewReportsHandler(uc *reports.UseCase) *ReportsHandler {
	return &ReportsHandler{uc: uc}
}

// InventorySummary godoc
// @Summary      Resumen de existencias y valorización por bodega
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {array}   dto.InventorySummaryRowDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/inventory-summary [get]
func (h *ReportsHandler) InventorySummary(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es requerido"})
	}
	rows, err := h.uc.InventorySummary(c.Context(), warehouseID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{
		"warehouse_id": warehouseID,
		"rows":         dto.NewInventorySummary(rows),
	})
}

// DailySales godoc
// @Summary      Resumen de ventas de una sucursal en un día
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  true   "Sucursal"
// @Param        date       query  string  false  "Fecha (2006-01-02), por defecto hoy"
// @Success      200  {object}  dto.DailySalesSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/daily-sales [get]
func (h *ReportsHandler) DailySales(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	if branchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id es requerido"})
	}
	date := time.Now()
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date inválida (formato 2006-01-02)"})
		}
		date = parsed
	}
	summary, err := h.uc.DailySalesSummary(c.Context(), branchID, date)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewDailySalesSummary(summary))
}
