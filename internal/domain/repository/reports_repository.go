package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InventorySummaryRow es una fila del resumen de inventario por llave.
// Available y Valuation son derivados, recalculados en la consulta.
type InventorySummaryRow struct {
	WarehouseID string
	ItemID      string
	VariantID   string
	Quantity    decimal.Decimal
	Reserved    decimal.Decimal
	Available   decimal.Decimal
	AverageCost decimal.Decimal
	Valuation   decimal.Decimal
}

// DailySalesSummary agrega las ventas completadas de una sucursal en un día.
type DailySalesSummary struct {
	BranchID         string
	Date             time.Time
	TransactionCount int
	VoidedCount      int
	Subtotal         decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxAmount        decimal.Decimal
	Total            decimal.Decimal
	CashTotal        decimal.Decimal
	CardTotal        decimal.Decimal
	OtherTotal       decimal.Decimal
}

// ReportsRepository agrupa las consultas de solo lectura del núcleo.
// Toleran consistencia eventual con la última escritura confirmada.
type ReportsRepository interface {
	InventorySummary(ctx context.Context, warehouseID string) ([]InventorySummaryRow, error)
	DailySalesSummary(ctx context.Context, branchID string, date time.Time) (*DailySalesSummary, error)
}
