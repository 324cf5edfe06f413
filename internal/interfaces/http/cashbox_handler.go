package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/cashbox"
	"github.com/tu-usuario/pos-ledger/internal/application/dto"
)

// CashboxHandler maneja las peticiones HTTP de sesiones de caja (protegido).
type CashboxHandler struct {
	uc *cashbox.UseCase
}

// NewCashboxHandler construye el handler.
func NewCashboxHandler(uc *cashbox.UseCase) *CashboxHandler {
	return &CashboxHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir sesión de caja
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenSessionRequest  true  "register_id y monto de apertura"
// @Success      201   {object}  dto.CashSessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "Ya hay una sesión abierta en la caja"
// @Router       /api/cash/sessions [post]
func (h *CashboxHandler) Open(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.OpenSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	session, err := h.uc.Open(c.Context(), in.RegisterID, in.OpeningAmount, actor.ID)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCashSessionResponse(session, nil))
}

// RecordMovement godoc
// @Summary      Registrar movimiento manual de efectivo
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la sesión"
// @Param        body  body  dto.CashMovementRequest  true  "Tipo (EXPENSE, DEPOSIT, WITHDRAWAL), monto y motivo"
// @Success      201   {object}  dto.CashMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "Sesión cerrada"
// @Router       /api/cash/sessions/{id}/movements [post]
func (h *CashboxHandler) RecordMovement(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.CashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.uc.RecordMovement(c.Context(), c.Params("id"), in.Type, in.Amount, in.Reason, actor.ID)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CashMovementResponse{
		ID:          movement.ID,
		Type:        movement.Type,
		Amount:      movement.Amount,
		Reason:      movement.Reason,
		ReferenceID: movement.ReferenceID,
		CreatedAt:   movement.CreatedAt,
	})
}

// Close godoc
// @Summary      Cerrar sesión de caja con arqueo
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la sesión"
// @Param        body  body  dto.CloseSessionRequest  true  "Monto contado y notas"
// @Success      200   {object}  dto.CashSessionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "La sesión ya está cerrada"
// @Router       /api/cash/sessions/{id}/close [post]
func (h *CashboxHandler) Close(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.CloseSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	session, err := h.uc.Close(c.Context(), c.Params("id"), in.ActualAmount, in.Notes, actor.ID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewCashSessionResponse(session, nil))
}

// GetSession godoc
// @Summary      Consultar sesión de caja con sus movimientos
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.CashSessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/{id} [get]
func (h *CashboxHandler) GetSession(c *fiber.Ctx) error {
	session, movements, err := h.uc.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewCashSessionResponse(session, movements))
}

// ZReport godoc
// @Summary      Descargar reporte Z (PDF) de una sesión cerrada
// @Tags         cash
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "La sesión aún está abierta"
// @Router       /api/cash/sessions/{id}/zreport [get]
func (h *CashboxHandler) ZReport(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	pdfBytes, err := h.uc.ZReport(c.Context(), sessionID)
	if err != nil {
		return domainError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="zreport_%s.pdf"`, sessionID))
	c.Type("pdf")
	return c.Send(pdfBytes)
}
