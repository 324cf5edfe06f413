package repository

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// CashSessionRepository define el puerto de persistencia de sesiones de caja.
type CashSessionRepository interface {
	Create(ctx context.Context, session *entity.CashSession) error
	Update(ctx context.Context, session *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	// GetForUpdate bloquea la fila de la sesión: los agregados acumulados
	// (ventas, entradas, salidas) se actualizan bajo lock por movimiento.
	GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error)
	// FindOpenByRegister devuelve la sesión OPEN de la caja, bloqueada, o nil.
	// La apertura usa esta lectura para garantizar a lo sumo una sesión
	// abierta por caja.
	FindOpenByRegister(ctx context.Context, registerID string) (*entity.CashSession, error)
}

// CashMovementRepository define el puerto de persistencia de movimientos de
// caja. Solo inserta y lista: los movimientos son inmutables.
type CashMovementRepository interface {
	Create(ctx context.Context, movement *entity.CashMovement) error
	ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error)
}
