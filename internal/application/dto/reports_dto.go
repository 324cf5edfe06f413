package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// InventorySummaryRowDTO fila del resumen de inventario por bodega.
type InventorySummaryRowDTO struct {
	ItemID      string          `json:"item_id"`
	VariantID   string          `json:"variant_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
	AverageCost decimal.Decimal `json:"average_cost"`
	Valuation   decimal.Decimal `json:"valuation"`
}

// DailySalesSummaryDTO resumen de ventas de una sucursal en un día.
type DailySalesSummaryDTO struct {
	BranchID         string          `json:"branch_id"`
	Date             time.Time       `json:"date"`
	TransactionCount int             `json:"transaction_count"`
	VoidedCount      int             `json:"voided_count"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Total            decimal.Decimal `json:"total"`
	CashTotal        decimal.Decimal `json:"cash_total"`
	CardTotal        decimal.Decimal `json:"card_total"`
	OtherTotal       decimal.Decimal `json:"other_total"`
}

// NewInventorySummary mapea las filas del repositorio.
func NewInventorySummary(rows []repository.InventorySummaryRow) []InventorySummaryRowDTO {
	out := make([]InventorySummaryRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, InventorySummaryRowDTO{
			ItemID:      r.ItemID,
			VariantID:   r.VariantID,
			Quantity:    r.Quantity,
			Reserved:    r.Reserved,
			Available:   r.Available,
			AverageCost: r.AverageCost,
			Valuation:   r.Valuation,
		})
	}
	return out
}

// NewDailySalesSummary mapea el resumen del repositorio.
func NewDailySalesSummary(s *repository.DailySalesSummary) DailySalesSummaryDTO {
	return DailySalesSummaryDTO{
		BranchID:         s.BranchID,
		Date:             s.Date,
		TransactionCount: s.TransactionCount,
		VoidedCount:      s.VoidedCount,
		Subtotal:         s.Subtotal,
		DiscountAmount:   s.DiscountAmount,
		TaxAmount:        s.TaxAmount,
		Total:            s.Total,
		CashTotal:        s.CashTotal,
		CardTotal:        s.CardTotal,
		OtherTotal:       s.OtherTotal,
	}
}
