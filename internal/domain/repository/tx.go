package repository

import (
	"context"
	"errors"

	"github.com/tu-usuario/pos-ledger/internal/domain"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
// Los casos de uso reciben el paquete completo y usan lo que necesiten.
type Repos struct {
	Inventory      InventoryRepository
	StockMovements StockMovementRepository
	Transactions   TransactionRepository
	CashSessions   CashSessionRepository
	CashMovements  CashMovementRepository
	Journal        JournalRepository
	Accounts       AccountRepository
	Audit          AuditRepository
	Sequences      SequenceRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando los
// repositorios atados a esa tx. Garantiza atomicidad: o todo el trabajo de fn
// se confirma, o nada (Commit/Rollback).
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// RunWithRetry ejecuta fn vía runner.Run y reintenta la operación COMPLETA
// hasta attempts veces cuando falla con domain.ErrConcurrencyConflict
// (deadlock, timeout de lock o falla de serialización). Nunca se reintenta un
// sub-paso aislado: el estado parcial no sobrevive un intento fallido.
func RunWithRetry(ctx context.Context, runner TxRunner, attempts int, fn func(r Repos) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = runner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
