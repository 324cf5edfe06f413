package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.ReportsRepository = (*ReportsRepo)(nil)

// ReportsRepo consultas de solo lectura sobre PostgreSQL. Van directo al
// pool: los resúmenes toleran consistencia eventual y no necesitan tx.
type ReportsRepo struct {
	q Querier
}

// NewReportsRepository construye el adaptador de reportes.
func NewReportsRepository(q Querier) *ReportsRepo {
	return &ReportsRepo{q: q}
}

// InventorySummary resumen de existencias de una bodega. Available y
// Valuation se derivan en la consulta, nunca se almacenan.
func (r *ReportsRepo) InventorySummary(ctx context.Context, warehouseID string) ([]repository.InventorySummaryRow, error) {
	query := `
		SELECT warehouse_id, item_id, variant_id, quantity, reserved_quantity,
		       quantity - reserved_quantity AS available,
		       average_cost,
		       quantity * average_cost AS valuation
		FROM inventory_records
		WHERE warehouse_id = $1
		ORDER BY item_id, variant_id`
	rows, err := r.q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("inventory summary: %w", err)
	}
	defer rows.Close()

	var out []repository.InventorySummaryRow
	for rows.Next() {
		var row repository.InventorySummaryRow
		if err := rows.Scan(
			&row.WarehouseID, &row.ItemID, &row.VariantID,
			&row.Quantity, &row.Reserved, &row.Available,
			&row.AverageCost, &row.Valuation,
		); err != nil {
			return nil, fmt.Errorf("scan inventory summary row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DailySalesSummary agrega las ventas de una sucursal en un día calendario:
// totales de documentos COMPLETED y REFUNDED, anuladas aparte, y el
// desglose de pagos por método.
func (r *ReportsRepo) DailySalesSummary(ctx context.Context, branchID string, date time.Time) (*repository.DailySalesSummary, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	summary := &repository.DailySalesSummary{BranchID: branchID, Date: dayStart}

	totalsQuery := `
		SELECT COUNT(*) FILTER (WHERE status IN ('COMPLETED', 'REFUNDED')),
		       COUNT(*) FILTER (WHERE status = 'CANCELLED'),
		       COALESCE(SUM(subtotal) FILTER (WHERE status IN ('COMPLETED', 'REFUNDED')), 0),
		       COALESCE(SUM(discount_amount) FILTER (WHERE status IN ('COMPLETED', 'REFUNDED')), 0),
		       COALESCE(SUM(tax_amount) FILTER (WHERE status IN ('COMPLETED', 'REFUNDED')), 0),
		       COALESCE(SUM(total) FILTER (WHERE status IN ('COMPLETED', 'REFUNDED')), 0)
		FROM transactions
		WHERE branch_id = $1 AND type = 'SALE'
		  AND completed_at >= $2 AND completed_at < $3`
	err := r.q.QueryRow(ctx, totalsQuery, branchID, dayStart, dayEnd).Scan(
		&summary.TransactionCount, &summary.VoidedCount,
		&summary.Subtotal, &summary.DiscountAmount, &summary.TaxAmount, &summary.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("daily sales summary: %w", err)
	}

	// El vuelto sale del efectivo, así que se descuenta una sola vez por
	// transacción (no por pago).
	paymentsQuery := `
		SELECT COALESCE(SUM(s.cash_amount - s.change_amount), 0),
		       COALESCE(SUM(s.card_amount), 0),
		       COALESCE(SUM(s.other_amount), 0)
		FROM (
			SELECT t.change_amount,
			       COALESCE(SUM(p.amount) FILTER (WHERE p.method = 'CASH'), 0) AS cash_amount,
			       COALESCE(SUM(p.amount) FILTER (WHERE p.method = 'CARD'), 0) AS card_amount,
			       COALESCE(SUM(p.amount) FILTER (WHERE p.method = 'OTHER'), 0) AS other_amount
			FROM transactions t
			JOIN payments p ON p.transaction_id = t.id
			WHERE t.branch_id = $1 AND t.type = 'SALE'
			  AND t.status IN ('COMPLETED', 'REFUNDED')
			  AND t.completed_at >= $2 AND t.completed_at < $3
			GROUP BY t.id, t.change_amount
		) s`
	err = r.q.QueryRow(ctx, paymentsQuery, branchID, dayStart, dayEnd).Scan(
		&summary.CashTotal, &summary.CardTotal, &summary.OtherTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("daily sales payments: %w", err)
	}
	return summary, nil
}
