package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
)

// StockHandler maneja las peticiones HTTP del libro de inventario (protegido).
type StockHandler struct {
	uc *ledger.StockLedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.StockLedgerUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Adjust godoc
// @Summary      Registrar ajuste de inventario
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "warehouse_id, item_id, quantity firmada, unit_cost (entradas), reason"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.uc.AdjustStock(c.Context(), in.WarehouseID, in.ItemID, in.VariantID, in.Quantity, in.UnitCost, in.Reason, actor.ID)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockMovementResponse(movement))
}

// Transfer godoc
// @Summary      Trasladar existencias entre bodegas
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "from_warehouse_id, to_warehouse_id, items"
// @Success      201   {array}   dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]ledger.TransferItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ledger.TransferItem{
			ItemID:    it.ItemID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
	}
	movements, err := h.uc.TransferStock(c.Context(), in.FromWarehouseID, in.ToWarehouseID, items, actor.ID)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.NewStockMovementResponse(m))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos de una llave de inventario
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        item_id       query  string  true   "Artículo"
// @Param        variant_id    query  string  false  "Variante"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}   dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	itemID := c.Query("item_id")
	if warehouseID == "" || itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id e item_id son requeridos"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		to = &t
	}

	movements, err := h.uc.ListMovements(c.Context(), warehouseID, itemID, c.Query("variant_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.NewStockMovementResponse(m))
	}
	return c.JSON(fiber.Map{
		"movements": out,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// ListInventory godoc
// @Summary      Existencias actuales de una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {array}   dto.InventoryRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/inventory [get]
func (h *StockHandler) ListInventory(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es requerido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	records, err := h.uc.ListInventory(c.Context(), warehouseID, page.Limit, page.Offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.InventoryRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.NewInventoryRecordResponse(r))
	}
	return c.JSON(fiber.Map{
		"inventory": out,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}
