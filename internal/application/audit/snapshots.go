package audit

import (
	"time"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// Funciones de snapshot tipadas: convierten una entidad a un mapa
// campo->valor estable para el registro de auditoría. Los decimales se
// serializan como string para evitar ruido de representación en el diff;
// los tiempos en RFC3339.

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

// TransactionSnapshot captura los campos auditables de una transacción.
func TransactionSnapshot(t *entity.Transaction) map[string]any {
	return map[string]any{
		"number":          t.Number,
		"type":            t.Type,
		"status":          t.Status,
		"branch_id":       t.BranchID,
		"warehouse_id":    t.WarehouseID,
		"register_id":     t.RegisterID,
		"customer_id":     t.CustomerID,
		"subtotal":        t.Subtotal.String(),
		"discount_amount": t.DiscountAmount.String(),
		"tax_amount":      t.TaxAmount.String(),
		"total":           t.Total.String(),
		"paid_amount":     t.PaidAmount.String(),
		"change_amount":   t.ChangeAmount.String(),
		"ref_transaction": t.RefTransactionID,
		"held_at":         fmtTimePtr(t.HeldAt),
		"void_reason":     t.VoidReason,
		"voided_at":       fmtTimePtr(t.VoidedAt),
		"completed_at":    fmtTimePtr(t.CompletedAt),
	}
}

// CashSessionSnapshot captura los campos auditables de una sesión de caja.
func CashSessionSnapshot(s *entity.CashSession) map[string]any {
	return map[string]any{
		"register_id":     s.RegisterID,
		"status":          s.Status,
		"opening_amount":  s.OpeningAmount.String(),
		"cash_sales":      s.CashSales.String(),
		"card_sales":      s.CardSales.String(),
		"other_sales":     s.OtherSales.String(),
		"cash_in":         s.CashIn.String(),
		"cash_out":        s.CashOut.String(),
		"expected_amount": s.ExpectedAmount.String(),
		"actual_amount":   s.ActualAmount.String(),
		"difference":      s.Difference.String(),
		"notes":           s.Notes,
		"closed_at":       fmtTimePtr(s.ClosedAt),
	}
}

// InventoryRecordSnapshot captura los campos auditables de un registro de
// existencias. Available no se incluye: es derivado, no estado.
func InventoryRecordSnapshot(r *entity.InventoryRecord) map[string]any {
	return map[string]any{
		"warehouse_id":      r.WarehouseID,
		"item_id":           r.ItemID,
		"variant_id":        r.VariantID,
		"quantity":          r.Quantity.String(),
		"reserved_quantity": r.ReservedQuantity.String(),
		"average_cost":      r.AverageCost.String(),
	}
}

// JournalEntrySnapshot captura los campos auditables de un asiento.
func JournalEntrySnapshot(e *entity.JournalEntry) map[string]any {
	return map[string]any{
		"source_type":  e.SourceType,
		"source_id":    e.SourceID,
		"status":       e.Status,
		"total_debit":  e.TotalDebit.String(),
		"total_credit": e.TotalCredit.String(),
		"reverses_id":  e.ReversesID,
		"description":  e.Description,
	}
}
