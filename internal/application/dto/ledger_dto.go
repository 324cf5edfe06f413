package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/stock/adjustments.
type AdjustStockRequest struct {
	WarehouseID string          `json:"warehouse_id"`
	ItemID      string          `json:"item_id"`
	VariantID   string          `json:"variant_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	// UnitCost requerido en entradas para recalcular el costo promedio.
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason   string           `json:"reason"`
}

// TransferItemRequest una línea de traslado.
type TransferItemRequest struct {
	ItemID    string          `json:"item_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// TransferStockRequest body para POST /api/stock/transfers.
type TransferStockRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id"`
	ToWarehouseID   string                `json:"to_warehouse_id"`
	Items           []TransferItemRequest `json:"items"`
}

// InventoryRecordResponse existencias actuales de una llave de inventario.
type InventoryRecordResponse struct {
	WarehouseID       string          `json:"warehouse_id"`
	ItemID            string          `json:"item_id"`
	VariantID         string          `json:"variant_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	Valuation         decimal.Decimal `json:"valuation"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewInventoryRecordResponse mapea la entidad con sus valores derivados.
func NewInventoryRecordResponse(r *entity.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		WarehouseID:       r.WarehouseID,
		ItemID:            r.ItemID,
		VariantID:         r.VariantID,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.Available(),
		AverageCost:       r.AverageCost,
		Valuation:         r.Valuation(),
		UpdatedAt:         r.UpdatedAt,
	}
}

// StockMovementResponse un movimiento del libro de inventario.
type StockMovementResponse struct {
	ID             string          `json:"id"`
	WarehouseID    string          `json:"warehouse_id"`
	ItemID         string          `json:"item_id"`
	VariantID      string          `json:"variant_id,omitempty"`
	Kind           string          `json:"kind"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewStockMovementResponse mapea la entidad.
func NewStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:             m.ID,
		WarehouseID:    m.WarehouseID,
		ItemID:         m.ItemID,
		VariantID:      m.VariantID,
		Kind:           m.Kind,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		UnitCost:       m.UnitCost,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
}
