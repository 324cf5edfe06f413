package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con el
// paquete completo de repositorios atados a la tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos atados a la tx y hace
// Commit o Rollback. Un lock_timeout local evita esperas indefinidas en
// SELECT FOR UPDATE: el timeout sale como conflicto de concurrencia y el
// llamador decide si reintenta la operación completa.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '5s'"); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	if err := fn(newRepos(tx)); err != nil {
		return translateErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translateErr(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func newRepos(tx pgx.Tx) repository.Repos {
	return repository.Repos{
		Inventory:      NewInventoryRepository(tx),
		StockMovements: NewStockMovementRepository(tx),
		Transactions:   NewTransactionRepository(tx),
		CashSessions:   NewCashSessionRepository(tx),
		CashMovements:  NewCashMovementRepository(tx),
		Journal:        NewJournalRepository(tx),
		Accounts:       NewAccountRepository(tx),
		Audit:          NewAuditRepository(tx),
		Sequences:      NewSequenceRepository(tx),
	}
}
