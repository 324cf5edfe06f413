package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)
var _ repository.CashMovementRepository = (*CashMovementRepo)(nil)

// CashSessionRepo implementación de CashSessionRepository sobre PostgreSQL
// (usable con pool o tx).
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

const cashSessionColumns = `id, register_id, status, opening_amount, cash_sales, card_sales, other_sales,
	cash_in, cash_out, expected_amount, actual_amount, difference, notes,
	opened_at, opened_by, closed_at, closed_by`

// Create persiste una sesión de caja nueva.
func (r *CashSessionRepo) Create(ctx context.Context, session *entity.CashSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO cash_sessions (` + cashSessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		session.ID, session.RegisterID, session.Status,
		session.OpeningAmount, session.CashSales, session.CardSales, session.OtherSales,
		session.CashIn, session.CashOut, session.ExpectedAmount, session.ActualAmount, session.Difference,
		nullable(session.Notes), session.OpenedAt, nullable(session.OpenedBy),
		session.ClosedAt, nullable(session.ClosedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			// índice parcial: a lo sumo una sesión OPEN por caja
			return domain.ErrSessionAlreadyOpen
		}
		return translateErr(fmt.Errorf("create cash session: %w", err))
	}
	return nil
}

// Update actualiza los acumulados y el estado de la sesión.
func (r *CashSessionRepo) Update(ctx context.Context, session *entity.CashSession) error {
	query := `
		UPDATE cash_sessions SET
			status = $2, cash_sales = $3, card_sales = $4, other_sales = $5,
			cash_in = $6, cash_out = $7, expected_amount = $8, actual_amount = $9,
			difference = $10, notes = $11, closed_at = $12, closed_by = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		session.ID, session.Status, session.CashSales, session.CardSales, session.OtherSales,
		session.CashIn, session.CashOut, session.ExpectedAmount, session.ActualAmount,
		session.Difference, nullable(session.Notes), session.ClosedAt, nullable(session.ClosedBy),
	)
	if err != nil {
		return translateErr(fmt.Errorf("update cash session: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una sesión por ID.
func (r *CashSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	query := `SELECT ` + cashSessionColumns + ` FROM cash_sessions WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetForUpdate obtiene la sesión y bloquea la fila (SELECT FOR UPDATE).
func (r *CashSessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	query := `SELECT ` + cashSessionColumns + ` FROM cash_sessions WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

// FindOpenByRegister devuelve la sesión OPEN de la caja, bloqueada, o nil si
// no hay ninguna abierta.
func (r *CashSessionRepo) FindOpenByRegister(ctx context.Context, registerID string) (*entity.CashSession, error) {
	query := `
		SELECT ` + cashSessionColumns + `
		FROM cash_sessions
		WHERE register_id = $1 AND status = 'OPEN'
		FOR UPDATE`
	session, err := r.scanOne(ctx, query, registerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return session, err
}

func (r *CashSessionRepo) scanOne(ctx context.Context, query string, arg any) (*entity.CashSession, error) {
	var s entity.CashSession
	var notes, openedBy, closedBy *string
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.RegisterID, &s.Status,
		&s.OpeningAmount, &s.CashSales, &s.CardSales, &s.OtherSales,
		&s.CashIn, &s.CashOut, &s.ExpectedAmount, &s.ActualAmount, &s.Difference,
		&notes, &s.OpenedAt, &openedBy, &s.ClosedAt, &closedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateErr(fmt.Errorf("get cash session: %w", err))
	}
	s.Notes = deref(notes)
	s.OpenedBy = deref(openedBy)
	s.ClosedBy = deref(closedBy)
	return &s, nil
}

// CashMovementRepo implementación de CashMovementRepository sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lista.
type CashMovementRepo struct {
	q Querier
}

// NewCashMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashMovementRepository(q Querier) *CashMovementRepo {
	return &CashMovementRepo{q: q}
}

// Create persiste un movimiento de caja.
func (r *CashMovementRepo) Create(ctx context.Context, movement *entity.CashMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO cash_movements (id, session_id, type, amount, reason, reference_type, reference_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.SessionID, movement.Type, movement.Amount,
		nullable(movement.Reason), nullable(movement.ReferenceType), nullable(movement.ReferenceID),
		movement.CreatedAt, nullable(movement.CreatedBy),
	)
	if err != nil {
		return translateErr(fmt.Errorf("create cash movement: %w", err))
	}
	return nil
}

// ListBySession lista los movimientos de una sesión en orden de creación.
func (r *CashMovementRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error) {
	query := `
		SELECT id, session_id, type, amount, reason, reference_type, reference_id, created_at, created_by
		FROM cash_movements WHERE session_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()

	var movements []*entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		var reason, refType, refID, createdBy *string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &m.Amount, &reason, &refType, &refID, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		m.Reason = deref(reason)
		m.ReferenceType = deref(refType)
		m.ReferenceID = deref(refID)
		m.CreatedBy = deref(createdBy)
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}
