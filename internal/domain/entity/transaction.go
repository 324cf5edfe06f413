package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una transacción.
const (
	TxStatusDraft     = "DRAFT"
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusCancelled = "CANCELLED"
	TxStatusRefunded  = "REFUNDED"
)

// Tipos de transacción.
const (
	TxTypeSale   = "SALE"
	TxTypeReturn = "RETURN"
)

// Métodos de pago.
const (
	PaymentMethodCash  = "CASH"
	PaymentMethodCard  = "CARD"
	PaymentMethodOther = "OTHER"
)

// legalTransitions es la tabla cerrada de transiciones de estado.
// Cualquier movimiento fuera de esta tabla es ErrInvalidTransition.
var legalTransitions = map[string][]string{
	TxStatusDraft:     {TxStatusPending},
	TxStatusPending:   {TxStatusCompleted, TxStatusCancelled},
	TxStatusCompleted: {TxStatusCancelled, TxStatusRefunded},
}

// CanTransition indica si el paso from -> to está permitido.
// COMPLETED -> CANCELLED corresponde a la anulación (void) dentro de ventana;
// COMPLETED -> REFUNDED ocurre vía transacción de devolución enlazada, nunca
// mutando la venta original en sitio.
func CanTransition(from, to string) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transaction representa una venta, devolución o intercambio. Una vez
// COMPLETED la transacción es inmutable: las correcciones son documentos
// nuevos (anulación o devolución enlazada).
type Transaction struct {
	ID               string
	Number           string // consecutivo legible: <branchCode>-<YYMMDD>-<NNNN>
	Type             string
	Status           string
	BranchID         string
	WarehouseID      string
	RegisterID       string
	CustomerID       string
	Subtotal         decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxAmount        decimal.Decimal
	Total            decimal.Decimal
	PaidAmount       decimal.Decimal
	ChangeAmount     decimal.Decimal
	RefTransactionID string     // devolución -> venta original; anulación referencia por auditoría
	HeldAt           *time.Time // carrito aparcado (hold); solo aplica en DRAFT
	VoidReason       string
	VoidedAt         *time.Time
	VoidedBy         string
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CreatedBy        string
}

// IsHeld indica si la transacción está aparcada (hold de carrito en DRAFT).
func (t *Transaction) IsHeld() bool { return t.HeldAt != nil }

// TransactionItem es la línea de la transacción con precio, cantidad e
// impuesto congelados al momento de la venta. UnitCost guarda el costo
// promedio vigente para el asiento de costo de ventas.
type TransactionItem struct {
	ID             string
	TransactionID  string
	ItemID         string
	VariantID      string
	Name           string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
	TaxInclusive   bool
	Subtotal       decimal.Decimal // quantity * unitPrice (antes de descuento)
	TaxAmount      decimal.Decimal // redondeado por línea a la unidad menor
	Total          decimal.Decimal
	UnitCost       decimal.Decimal
	TrackInventory bool
}

// Payment es un pago aplicado a una transacción.
type Payment struct {
	ID            string
	TransactionID string
	Method        string
	Amount        decimal.Decimal
	Reference     string // voucher, últimos dígitos, etc.
	CreatedAt     time.Time
	CreatedBy     string
}
