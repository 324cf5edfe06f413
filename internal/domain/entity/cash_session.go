package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la sesión de caja.
const (
	SessionStatusOpen   = "OPEN"
	SessionStatusClosed = "CLOSED"
)

// Tipos de movimiento de caja.
const (
	CashMovementOpening    = "OPENING"
	CashMovementSale       = "SALE"
	CashMovementRefund     = "REFUND"
	CashMovementExpense    = "EXPENSE"
	CashMovementDeposit    = "DEPOSIT"
	CashMovementWithdrawal = "WITHDRAWAL"
	CashMovementAdjustment = "ADJUSTMENT"
	CashMovementClosing    = "CLOSING"
)

// CashSession representa un ciclo apertura -> movimientos -> cierre de una
// caja registradora. Mientras está OPEN solo la muta su caja; cerrada es
// inmutable. La diferencia al cierre es un hecho de negocio que se registra,
// no un error que se rechace.
type CashSession struct {
	ID             string
	RegisterID     string
	Status         string
	OpeningAmount  decimal.Decimal
	CashSales      decimal.Decimal
	CardSales      decimal.Decimal
	OtherSales     decimal.Decimal
	CashIn         decimal.Decimal // depósitos y entradas manuales
	CashOut        decimal.Decimal // gastos y retiros
	ExpectedAmount decimal.Decimal // calculado al cierre
	ActualAmount   decimal.Decimal // conteo físico al cierre
	Difference     decimal.Decimal // actual - esperado (firmada)
	Notes          string
	OpenedAt       time.Time
	OpenedBy       string
	ClosedAt       *time.Time
	ClosedBy       string
}

// Expected devuelve el efectivo esperado en el cajón:
// apertura + ventas en efectivo + entradas - salidas.
func (s *CashSession) Expected() decimal.Decimal {
	return s.OpeningAmount.Add(s.CashSales).Add(s.CashIn).Sub(s.CashOut)
}

// CashMovement es un evento de efectivo dentro de una sesión. Los movimientos
// nunca se editan ni borran; una anulación genera el movimiento inverso.
type CashMovement struct {
	ID            string
	SessionID     string
	Type          string
	Amount        decimal.Decimal // positiva (el tipo define el sentido); ADJUSTMENT admite signo
	Reason        string
	ReferenceType string // TRANSACTION para ventas/devoluciones
	ReferenceID   string
	CreatedAt     time.Time
	CreatedBy     string
}
