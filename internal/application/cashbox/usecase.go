// Package cashbox implementa el ciclo de vida de la sesión de caja:
// apertura -> movimientos -> cierre con arqueo. El descuadre al cierre es un
// hecho de negocio que se registra y reporta; nunca un error que se rechace.
package cashbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

// ZReportGenerator genera el informe de cierre (reporte Z) de una sesión.
type ZReportGenerator interface {
	Generate(ctx context.Context, session *entity.CashSession, movements []*entity.CashMovement) ([]byte, error)
}

// UseCase orquesta las operaciones de caja.
type UseCase struct {
	txRunner   repository.TxRunner
	auditor    *audit.Recorder
	zreport    ZReportGenerator
	maxRetries int
	log        *logger.Logger
}

// NewUseCase construye el caso de uso. zreport puede ser nil si el despliegue
// no imprime reportes Z.
func NewUseCase(txRunner repository.TxRunner, auditor *audit.Recorder, zreport ZReportGenerator, maxRetries int, log *logger.Logger) *UseCase {
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &UseCase{txRunner: txRunner, auditor: auditor, zreport: zreport, maxRetries: maxRetries, log: log}
}

// Open abre una sesión de caja. A lo sumo una sesión OPEN por caja: si ya
// existe, falla con ErrSessionAlreadyOpen. El monto de apertura queda como
// primer movimiento (OPENING) de la sesión.
func (uc *UseCase) Open(ctx context.Context, registerID string, openingAmount decimal.Decimal, actorID string) (*entity.CashSession, error) {
	if registerID == "" || openingAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var session *entity.CashSession
	err := repository.RunWithRetry(ctx, uc.txRunner, uc.maxRetries, func(r repository.Repos) error {
		existing, err := r.CashSessions.FindOpenByRegister(ctx, registerID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrSessionAlreadyOpen
		}
		now := time.Now()
		session = &entity.CashSession{
			ID:            uuid.New().String(),
			RegisterID:    registerID,
			Status:        entity.SessionStatusOpen,
			OpeningAmount: openingAmount,
			OpenedAt:      now,
			OpenedBy:      actorID,
		}
		if err := r.CashSessions.Create(ctx, session); err != nil {
			return err
		}
		opening := &entity.CashMovement{
			ID:        uuid.New().String(),
			SessionID: session.ID,
			Type:      entity.CashMovementOpening,
			Amount:    openingAmount,
			Reason:    "apertura de caja",
			CreatedAt: now,
			CreatedBy: actorID,
		}
		if err := r.CashMovements.Create(ctx, opening); err != nil {
			return err
		}
		return uc.auditor.Record(ctx, r.Audit, "cash_sessions", session.ID, entity.AuditActionInsert, nil, audit.CashSessionSnapshot(session), actorID)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// RecordMovement agrega un movimiento manual (gasto, depósito, retiro o
// ajuste) y actualiza los acumulados de la sesión bajo lock de fila.
// El monto es positivo; el tipo define el sentido, salvo ADJUSTMENT que
// admite monto firmado.
func (uc *UseCase) RecordMovement(ctx context.Context, sessionID, movementType string, amount decimal.Decimal, reason, actorID string) (*entity.CashMovement, error) {
	switch movementType {
	case entity.CashMovementExpense, entity.CashMovementDeposit, entity.CashMovementWithdrawal:
		if !amount.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
	case entity.CashMovementAdjustment:
		if amount.IsZero() {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	var mov *entity.CashMovement
	err := repository.RunWithRetry(ctx, uc.txRunner, uc.maxRetries, func(r repository.Repos) error {
		session, err := r.CashSessions.GetForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound
		}
		if session.Status != entity.SessionStatusOpen {
			return domain.ErrSessionClosed
		}
		before := audit.CashSessionSnapshot(session)
		switch movementType {
		case entity.CashMovementDeposit:
			session.CashIn = session.CashIn.Add(amount)
		case entity.CashMovementExpense, entity.CashMovementWithdrawal:
			session.CashOut = session.CashOut.Add(amount)
		case entity.CashMovementAdjustment:
			if amount.IsPositive() {
				session.CashIn = session.CashIn.Add(amount)
			} else {
				session.CashOut = session.CashOut.Add(amount.Abs())
			}
		}
		if err := r.CashSessions.Update(ctx, session); err != nil {
			return err
		}
		mov = &entity.CashMovement{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Type:      movementType,
			Amount:    amount,
			Reason:    reason,
			CreatedAt: time.Now(),
			CreatedBy: actorID,
		}
		if err := r.CashMovements.Create(ctx, mov); err != nil {
			return err
		}
		return uc.auditor.Record(ctx, r.Audit, "cash_sessions", sessionID, entity.AuditActionUpdate, before, audit.CashSessionSnapshot(session), actorID)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// Close cierra la sesión: esperado = apertura + ventas en efectivo +
// entradas - salidas; diferencia = contado - esperado. Cerrar una sesión ya
// cerrada falla con ErrInvalidTransition (el cierre no se repite).
func (uc *UseCase) Close(ctx context.Context, sessionID string, actualAmount decimal.Decimal, notes, actorID string) (*entity.CashSession, error) {
	if actualAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var session *entity.CashSession
	err := repository.RunWithRetry(ctx, uc.txRunner, uc.maxRetries, func(r repository.Repos) error {
		var err error
		session, err = r.CashSessions.GetForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound
		}
		if session.Status != entity.SessionStatusOpen {
			return domain.ErrInvalidTransition
		}
		before := audit.CashSessionSnapshot(session)
		now := time.Now()
		session.Status = entity.SessionStatusClosed
		session.ExpectedAmount = session.Expected()
		session.ActualAmount = actualAmount
		session.Difference = actualAmount.Sub(session.ExpectedAmount)
		session.Notes = notes
		session.ClosedAt = &now
		session.ClosedBy = actorID
		if err := r.CashSessions.Update(ctx, session); err != nil {
			return err
		}
		closing := &entity.CashMovement{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Type:      entity.CashMovementClosing,
			Amount:    actualAmount,
			Reason:    "cierre de caja",
			CreatedAt: now,
			CreatedBy: actorID,
		}
		if err := r.CashMovements.Create(ctx, closing); err != nil {
			return err
		}
		return uc.auditor.Record(ctx, r.Audit, "cash_sessions", sessionID, entity.AuditActionUpdate, before, audit.CashSessionSnapshot(session), actorID)
	})
	if err != nil {
		return nil, err
	}
	if !session.Difference.IsZero() {
		// Descuadre: hecho reportable, no error.
		uc.log.Warn().
			Str("session_id", session.ID).
			Str("expected", session.ExpectedAmount.String()).
			Str("actual", session.ActualAmount.String()).
			Str("difference", session.Difference.String()).
			Msg("cierre de caja con descuadre")
	}
	return session, nil
}

// AttributeSaleInTx atribuye los pagos de una venta a la sesión abierta de la
// caja, dentro de la transacción del Transaction Processor. Lo retenido en
// efectivo es el recibido menos las vueltas entregadas.
func (uc *UseCase) AttributeSaleInTx(ctx context.Context, r repository.Repos, tx *entity.Transaction, payments []*entity.Payment) error {
	session, err := r.CashSessions.FindOpenByRegister(ctx, tx.RegisterID)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrSessionClosed
	}
	before := audit.CashSessionSnapshot(session)
	change := tx.ChangeAmount
	var cashRetained decimal.Decimal
	for _, pay := range payments {
		amount := pay.Amount
		switch pay.Method {
		case entity.PaymentMethodCash:
			if change.IsPositive() {
				amount = amount.Sub(change)
				change = decimal.Zero
			}
			cashRetained = cashRetained.Add(amount)
			session.CashSales = session.CashSales.Add(amount)
		case entity.PaymentMethodCard:
			session.CardSales = session.CardSales.Add(amount)
		default:
			session.OtherSales = session.OtherSales.Add(amount)
		}
	}
	if err := r.CashSessions.Update(ctx, session); err != nil {
		return err
	}
	if cashRetained.IsPositive() {
		mov := &entity.CashMovement{
			ID:            uuid.New().String(),
			SessionID:     session.ID,
			Type:          entity.CashMovementSale,
			Amount:        cashRetained,
			Reason:        "venta " + tx.Number,
			ReferenceType: entity.ReferenceTransaction,
			ReferenceID:   tx.ID,
			CreatedAt:     time.Now(),
			CreatedBy:     tx.CreatedBy,
		}
		if err := r.CashMovements.Create(ctx, mov); err != nil {
			return err
		}
	}
	return uc.auditor.Record(ctx, r.Audit, "cash_sessions", session.ID, entity.AuditActionUpdate, before, audit.CashSessionSnapshot(session), tx.CreatedBy)
}

// ReverseSaleInTx revierte la atribución de una venta anulada contra la
// sesión abierta de la caja. Si el efectivo ya salió del cajón en otra
// sesión, la reversión golpea la sesión vigente: es el cajón que devuelve.
func (uc *UseCase) ReverseSaleInTx(ctx context.Context, r repository.Repos, tx *entity.Transaction, payments []*entity.Payment, actorID string) error {
	session, err := r.CashSessions.FindOpenByRegister(ctx, tx.RegisterID)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrSessionClosed
	}
	before := audit.CashSessionSnapshot(session)
	change := tx.ChangeAmount
	var cashReturned decimal.Decimal
	for _, pay := range payments {
		amount := pay.Amount
		switch pay.Method {
		case entity.PaymentMethodCash:
			if change.IsPositive() {
				amount = amount.Sub(change)
				change = decimal.Zero
			}
			cashReturned = cashReturned.Add(amount)
			session.CashSales = session.CashSales.Sub(amount)
		case entity.PaymentMethodCard:
			session.CardSales = session.CardSales.Sub(amount)
		default:
			session.OtherSales = session.OtherSales.Sub(amount)
		}
	}
	if err := r.CashSessions.Update(ctx, session); err != nil {
		return err
	}
	if cashReturned.IsPositive() {
		mov := &entity.CashMovement{
			ID:            uuid.New().String(),
			SessionID:     session.ID,
			Type:          entity.CashMovementRefund,
			Amount:        cashReturned,
			Reason:        "anulación " + tx.Number,
			ReferenceType: entity.ReferenceTransaction,
			ReferenceID:   tx.ID,
			CreatedAt:     time.Now(),
			CreatedBy:     actorID,
		}
		if err := r.CashMovements.Create(ctx, mov); err != nil {
			return err
		}
	}
	return uc.auditor.Record(ctx, r.Audit, "cash_sessions", session.ID, entity.AuditActionUpdate, before, audit.CashSessionSnapshot(session), actorID)
}

// GetSession devuelve la sesión con sus movimientos.
func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*entity.CashSession, []*entity.CashMovement, error) {
	var (
		session   *entity.CashSession
		movements []*entity.CashMovement
	)
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		var err error
		session, err = r.CashSessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound
		}
		movements, err = r.CashMovements.ListBySession(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return session, movements, nil
}

// ZReport genera el PDF del reporte Z de una sesión cerrada.
func (uc *UseCase) ZReport(ctx context.Context, sessionID string) ([]byte, error) {
	if uc.zreport == nil {
		return nil, domain.ErrInvalidInput
	}
	session, movements, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != entity.SessionStatusClosed {
		return nil, domain.ErrInvalidTransition
	}
	return uc.zreport.Generate(ctx, session, movements)
}
