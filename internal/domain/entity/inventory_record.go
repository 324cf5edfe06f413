package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord es el registro de existencias por (bodega, artículo, variante).
// Se crea de forma perezosa con el primer movimiento de la llave y nunca se
// elimina (la cantidad puede llegar a cero).
//
// AvailableQuantity NO se almacena: es un valor derivado que se recalcula en
// lectura (Available), nunca de forma redundante en la base.
type InventoryRecord struct {
	WarehouseID      string
	ItemID           string
	VariantID        string // vacío si no aplica
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	AverageCost      decimal.Decimal
	UpdatedAt        time.Time
}

// Available devuelve la cantidad disponible para venta: Quantity - ReservedQuantity.
func (r *InventoryRecord) Available() decimal.Decimal {
	return r.Quantity.Sub(r.ReservedQuantity)
}

// Valuation devuelve el valor del inventario a costo promedio (Quantity * AverageCost).
func (r *InventoryRecord) Valuation() decimal.Decimal {
	return r.Quantity.Mul(r.AverageCost)
}
