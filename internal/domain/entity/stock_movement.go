package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementKindSale        = "SALE"        // salida por venta
	MovementKindReturn      = "RETURN"      // entrada por devolución
	MovementKindAdjustment  = "ADJUSTMENT"  // ajuste manual (+/-)
	MovementKindTransfer    = "TRANSFER"    // traslado entre bodegas
	MovementKindConsumption = "CONSUMPTION" // consumo de orden de trabajo
)

// Tipos de documento que originan movimientos (ReferenceType).
const (
	ReferenceTransaction   = "TRANSACTION"
	ReferenceWorkOrder     = "WORK_ORDER"
	ReferenceAdjustment    = "ADJUSTMENT"
	ReferenceStockMovement = "STOCK_MOVEMENT" // reversa que apunta al movimiento original
)

// StockMovement es un hecho inmutable del libro de inventario: nunca se edita
// ni se borra. Las anulaciones generan un movimiento nuevo con la cantidad
// negada y referencia al original.
//
// Invariante: para una misma llave (bodega, artículo, variante) los movimientos
// forman un orden total donde QuantityBefore de cada uno es igual al
// QuantityAfter del anterior.
type StockMovement struct {
	ID             string
	WarehouseID    string
	ItemID         string
	VariantID      string
	Kind           string
	Quantity       decimal.Decimal // firmada: positiva entrada, negativa salida
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	UnitCost       decimal.Decimal // costo unitario aplicado al movimiento
	ReferenceType  string
	ReferenceID    string
	Notes          string
	CreatedAt      time.Time
	CreatedBy      string
}
