package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/application/sales"
)

// SalesHandler maneja las peticiones HTTP de transacciones (protegido).
type SalesHandler struct {
	uc *sales.UseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.UseCase) *SalesHandler {
	return &SalesHandler{uc: uc}
}

// Create godoc
// @Summary      Crear transacción (venta)
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "branch_id, warehouse_id, register_id, lines, payments (o save_as_draft)"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tx, err := h.uc.CreateTransaction(c.Context(), toCreateInput(in), actor)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx, nil, nil))
}

// GetByID godoc
// @Summary      Consultar transacción con líneas y pagos
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *SalesHandler) GetByID(c *fiber.Ctx) error {
	tx, items, payments, err := h.uc.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx, items, payments))
}

// Complete godoc
// @Summary      Completar un borrador con pagos
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción DRAFT"
// @Param        body  body  dto.CompleteTransactionRequest  true  "pagos"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/complete [post]
func (h *SalesHandler) Complete(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.CompleteTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tx, err := h.uc.CompleteTransaction(c.Context(), c.Params("id"), toPaymentInputs(in.Payments), actor)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx, nil, nil))
}

// AddPayment godoc
// @Summary      Aplicar un pago a una transacción pendiente
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción PENDING"
// @Param        body  body  dto.PaymentRequest  true  "método, monto, referencia"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/payments [post]
func (h *SalesHandler) AddPayment(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tx, err := h.uc.AddPayment(c.Context(), c.Params("id"), sales.PaymentInput{
		Method:    in.Method,
		Amount:    in.Amount,
		Reference: in.Reference,
	}, actor)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx, nil, nil))
}

// Void godoc
// @Summary      Anular una venta completada (dentro de ventana)
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción COMPLETED"
// @Param        body  body  dto.VoidTransactionRequest  true  "motivo"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/void [post]
func (h *SalesHandler) Void(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.VoidTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tx, err := h.uc.VoidTransaction(c.Context(), c.Params("id"), in.Reason, actor)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx, nil, nil))
}

// Hold godoc
// @Summary      Aparcar un carrito (hold) reservando su stock
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la transacción DRAFT"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/hold [post]
func (h *SalesHandler) Hold(c *fiber.Ctx) error {
	tx, err := h.uc.HoldTransaction(c.Context(), c.Params("id"), GetActor(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx, nil, nil))
}

// ReleaseHold godoc
// @Summary      Liberar un carrito aparcado
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la transacción en hold"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/release [post]
func (h *SalesHandler) ReleaseHold(c *fiber.Ctx) error {
	tx, err := h.uc.ReleaseHold(c.Context(), c.Params("id"), GetActor(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx, nil, nil))
}

// CreateReturn godoc
// @Summary      Crear devolución enlazada a una venta
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta original COMPLETED"
// @Param        body  body  dto.CreateReturnRequest  true  "líneas a devolver"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/returns [post]
func (h *SalesHandler) CreateReturn(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]sales.ReturnLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, sales.ReturnLineInput{
			TransactionItemID: l.TransactionItemID,
			Quantity:          l.Quantity,
		})
	}
	ret, err := h.uc.CreateReturn(c.Context(), c.Params("id"), lines, actor)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(ret, nil, nil))
}

func toCreateInput(in dto.CreateTransactionRequest) sales.CreateTransactionInput {
	lines := make([]sales.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, sales.LineInput{
			ItemID:         l.ItemID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
		})
	}
	return sales.CreateTransactionInput{
		BranchID:    in.BranchID,
		WarehouseID: in.WarehouseID,
		RegisterID:  in.RegisterID,
		CustomerID:  in.CustomerID,
		Lines:       lines,
		Payments:    toPaymentInputs(in.Payments),
		SaveAsDraft: in.SaveAsDraft,
		Notes:       in.Notes,
	}
}

func toPaymentInputs(in []dto.PaymentRequest) []sales.PaymentInput {
	payments := make([]sales.PaymentInput, 0, len(in))
	for _, p := range in {
		payments = append(payments, sales.PaymentInput{
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}
	return payments
}
