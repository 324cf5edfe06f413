package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// OpenSessionRequest body para POST /api/cash/sessions.
type OpenSessionRequest struct {
	RegisterID    string          `json:"register_id"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`
}

// CashMovementRequest body para POST /api/cash/sessions/:id/movements.
type CashMovementRequest struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// CloseSessionRequest body para POST /api/cash/sessions/:id/close.
type CloseSessionRequest struct {
	ActualAmount decimal.Decimal `json:"actual_amount"`
	Notes        string          `json:"notes,omitempty"`
}

// CashMovementResponse movimiento de efectivo en respuestas.
type CashMovementResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason,omitempty"`
	ReferenceID string          `json:"reference_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CashSessionResponse sesión de caja con sus acumulados.
type CashSessionResponse struct {
	ID             string                 `json:"id"`
	RegisterID     string                 `json:"register_id"`
	Status         string                 `json:"status"`
	OpeningAmount  decimal.Decimal        `json:"opening_amount"`
	CashSales      decimal.Decimal        `json:"cash_sales"`
	CardSales      decimal.Decimal        `json:"card_sales"`
	OtherSales     decimal.Decimal        `json:"other_sales"`
	CashIn         decimal.Decimal        `json:"cash_in"`
	CashOut        decimal.Decimal        `json:"cash_out"`
	ExpectedAmount decimal.Decimal        `json:"expected_amount"`
	ActualAmount   decimal.Decimal        `json:"actual_amount"`
	Difference     decimal.Decimal        `json:"difference"`
	Notes          string                 `json:"notes,omitempty"`
	OpenedAt       time.Time              `json:"opened_at"`
	ClosedAt       *time.Time             `json:"closed_at,omitempty"`
	Movements      []CashMovementResponse `json:"movements,omitempty"`
}

// NewCashSessionResponse mapea la sesión con sus movimientos (pueden ir nil).
// En sesiones abiertas ExpectedAmount refleja el esperado al momento de la
// consulta, no un valor congelado.
func NewCashSessionResponse(s *entity.CashSession, movements []*entity.CashMovement) CashSessionResponse {
	expected := s.ExpectedAmount
	if s.Status == entity.SessionStatusOpen {
		expected = s.Expected()
	}
	resp := CashSessionResponse{
		ID:             s.ID,
		RegisterID:     s.RegisterID,
		Status:         s.Status,
		OpeningAmount:  s.OpeningAmount,
		CashSales:      s.CashSales,
		CardSales:      s.CardSales,
		OtherSales:     s.OtherSales,
		CashIn:         s.CashIn,
		CashOut:        s.CashOut,
		ExpectedAmount: expected,
		ActualAmount:   s.ActualAmount,
		Difference:     s.Difference,
		Notes:          s.Notes,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
	}
	for _, m := range movements {
		resp.Movements = append(resp.Movements, CashMovementResponse{
			ID:          m.ID,
			Type:        m.Type,
			Amount:      m.Amount,
			Reason:      m.Reason,
			ReferenceID: m.ReferenceID,
			CreatedAt:   m.CreatedAt,
		})
	}
	return resp
}
