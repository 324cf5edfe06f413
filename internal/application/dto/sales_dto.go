package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// LineRequest una línea del carrito.
type LineRequest struct {
	ItemID    string          `json:"item_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	// UnitPrice opcional: cero usa el precio de catálogo.
	UnitPrice      decimal.Decimal `json:"unit_price,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount,omitempty"`
}

// PaymentRequest un pago del carrito.
type PaymentRequest struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// CreateTransactionRequest body para POST /api/transactions.
type CreateTransactionRequest struct {
	BranchID    string           `json:"branch_id"`
	WarehouseID string           `json:"warehouse_id"`
	RegisterID  string           `json:"register_id"`
	CustomerID  string           `json:"customer_id,omitempty"`
	Lines       []LineRequest    `json:"lines"`
	Payments    []PaymentRequest `json:"payments,omitempty"`
	SaveAsDraft bool             `json:"save_as_draft,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// CompleteTransactionRequest body para POST /api/transactions/:id/complete.
type CompleteTransactionRequest struct {
	Payments []PaymentRequest `json:"payments"`
}

// VoidTransactionRequest body para POST /api/transactions/:id/void.
type VoidTransactionRequest struct {
	Reason string `json:"reason"`
}

// ReturnLineRequest línea de devolución referida a la línea original.
type ReturnLineRequest struct {
	TransactionItemID string          `json:"transaction_item_id"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// CreateReturnRequest body para POST /api/transactions/:id/returns.
type CreateReturnRequest struct {
	Lines []ReturnLineRequest `json:"lines"`
}

// TransactionItemResponse línea en respuestas.
type TransactionItemResponse struct {
	ID             string          `json:"id"`
	ItemID         string          `json:"item_id"`
	VariantID      string          `json:"variant_id,omitempty"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// TransactionResponse representación HTTP de una transacción.
type TransactionResponse struct {
	ID               string                    `json:"id"`
	Number           string                    `json:"number,omitempty"`
	Type             string                    `json:"type"`
	Status           string                    `json:"status"`
	BranchID         string                    `json:"branch_id"`
	WarehouseID      string                    `json:"warehouse_id"`
	RegisterID       string                    `json:"register_id"`
	CustomerID       string                    `json:"customer_id,omitempty"`
	Subtotal         decimal.Decimal           `json:"subtotal"`
	DiscountAmount   decimal.Decimal           `json:"discount_amount"`
	TaxAmount        decimal.Decimal           `json:"tax_amount"`
	Total            decimal.Decimal           `json:"total"`
	PaidAmount       decimal.Decimal           `json:"paid_amount"`
	ChangeAmount     decimal.Decimal           `json:"change_amount"`
	RefTransactionID string                    `json:"ref_transaction_id,omitempty"`
	Held             bool                      `json:"held"`
	VoidReason       string                    `json:"void_reason,omitempty"`
	CompletedAt      *time.Time                `json:"completed_at,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	Items            []TransactionItemResponse `json:"items,omitempty"`
	Payments         []PaymentResponse         `json:"payments,omitempty"`
}

// NewTransactionResponse mapea la entidad con sus líneas y pagos (pueden ir nil).
func NewTransactionResponse(tx *entity.Transaction, items []*entity.TransactionItem, payments []*entity.Payment) TransactionResponse {
	resp := TransactionResponse{
		ID:               tx.ID,
		Number:           tx.Number,
		Type:             tx.Type,
		Status:           tx.Status,
		BranchID:         tx.BranchID,
		WarehouseID:      tx.WarehouseID,
		RegisterID:       tx.RegisterID,
		CustomerID:       tx.CustomerID,
		Subtotal:         tx.Subtotal,
		DiscountAmount:   tx.DiscountAmount,
		TaxAmount:        tx.TaxAmount,
		Total:            tx.Total,
		PaidAmount:       tx.PaidAmount,
		ChangeAmount:     tx.ChangeAmount,
		RefTransactionID: tx.RefTransactionID,
		Held:             tx.IsHeld(),
		VoidReason:       tx.VoidReason,
		CompletedAt:      tx.CompletedAt,
		CreatedAt:        tx.CreatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, TransactionItemResponse{
			ID:             it.ID,
			ItemID:         it.ItemID,
			VariantID:      it.VariantID,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			TaxRate:        it.TaxRate,
			TaxAmount:      it.TaxAmount,
			Subtotal:       it.Subtotal,
			Total:          it.Total,
		})
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:        p.ID,
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}
	return resp
}
