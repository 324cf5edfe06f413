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

var _ repository.JournalRepository = (*JournalRepo)(nil)
var _ repository.AccountRepository = (*AccountRepo)(nil)

// JournalRepo implementación de JournalRepository sobre PostgreSQL (usable
// con pool o tx).
type JournalRepo struct {
	q Querier
}

// NewJournalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJournalRepository(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

const journalEntryColumns = `id, source_type, source_id, date, description, status,
	total_debit, total_credit, reverses_id, created_at, created_by, posted_at`

// CreateEntry inserta cabecera y líneas del asiento. La violación del índice
// único (source_type, source_id) se mapea a domain.ErrAlreadyPosted: el
// documento ya tiene asiento y la operación es idempotente.
func (r *JournalRepo) CreateEntry(ctx context.Context, entry *entity.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO journal_entries (` + journalEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.SourceType, entry.SourceID, entry.Date, entry.Description, entry.Status,
		entry.TotalDebit, entry.TotalCredit, nullable(entry.ReversesID),
		entry.CreatedAt, nullable(entry.CreatedBy), entry.PostedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyPosted
		}
		return translateErr(fmt.Errorf("create journal entry: %w", err))
	}
	for i := range entry.Lines {
		line := &entry.Lines[i]
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		line.EntryID = entry.ID
		lineQuery := `
			INSERT INTO journal_lines (id, entry_id, account_code, description, debit, credit)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := r.q.Exec(ctx, lineQuery,
			line.ID, line.EntryID, line.AccountCode, nullable(line.Description), line.Debit, line.Credit,
		); err != nil {
			return translateErr(fmt.Errorf("create journal line: %w", err))
		}
	}
	return nil
}

// MarkPosted marca el asiento como POSTED con su fecha.
func (r *JournalRepo) MarkPosted(ctx context.Context, entry *entity.JournalEntry) error {
	now := time.Now().UTC()
	query := `UPDATE journal_entries SET status = $2, posted_at = $3 WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(ctx, query, entry.ID, entity.EntryStatusPosted, now, entity.EntryStatusDraft)
	if err != nil {
		return translateErr(fmt.Errorf("mark journal entry posted: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	entry.Status = entity.EntryStatusPosted
	entry.PostedAt = &now
	return nil
}

// MarkReversed marca el asiento original como REVERSED apuntando al asiento
// de reversión.
func (r *JournalRepo) MarkReversed(ctx context.Context, entryID, reversedByID string) error {
	query := `UPDATE journal_entries SET status = $2, reversed_by = $3 WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(ctx, query, entryID, entity.EntryStatusReversed, reversedByID, entity.EntryStatusPosted)
	if err != nil {
		return translateErr(fmt.Errorf("mark journal entry reversed: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// GetByID obtiene un asiento con sus líneas.
func (r *JournalRepo) GetByID(ctx context.Context, id string) (*entity.JournalEntry, error) {
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries WHERE id = $1`
	return r.scanEntry(ctx, query, id)
}

// GetBySource obtiene el asiento de un documento fuente con sus líneas.
func (r *JournalRepo) GetBySource(ctx context.Context, sourceType, sourceID string) (*entity.JournalEntry, error) {
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries WHERE source_type = $1 AND source_id = $2`
	return r.scanEntry(ctx, query, sourceType, sourceID)
}

func (r *JournalRepo) scanEntry(ctx context.Context, query string, args ...any) (*entity.JournalEntry, error) {
	var e entity.JournalEntry
	var reversesID, createdBy, description *string
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&e.ID, &e.SourceType, &e.SourceID, &e.Date, &description, &e.Status,
		&e.TotalDebit, &e.TotalCredit, &reversesID, &e.CreatedAt, &createdBy, &e.PostedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateErr(fmt.Errorf("get journal entry: %w", err))
	}
	e.Description = deref(description)
	e.ReversesID = deref(reversesID)
	e.CreatedBy = deref(createdBy)

	lines, err := r.listLines(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	e.Lines = lines
	return &e, nil
}

func (r *JournalRepo) listLines(ctx context.Context, entryID string) ([]entity.JournalLine, error) {
	query := `
		SELECT id, entry_id, account_code, description, debit, credit
		FROM journal_lines WHERE entry_id = $1
		ORDER BY ctid`
	rows, err := r.q.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("list journal lines: %w", err)
	}
	defer rows.Close()

	var lines []entity.JournalLine
	for rows.Next() {
		var l entity.JournalLine
		var description *string
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountCode, &description, &l.Debit, &l.Credit); err != nil {
			return nil, fmt.Errorf("scan journal line: %w", err)
		}
		l.Description = deref(description)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// AccountRepo implementación de AccountRepository sobre PostgreSQL (usable
// con pool o tx).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// GetByCode obtiene una cuenta del plan contable por código.
func (r *AccountRepo) GetByCode(ctx context.Context, code string) (*entity.Account, error) {
	query := `SELECT id, code, name, type, created_at FROM accounts WHERE code = $1`
	var a entity.Account
	err := r.q.QueryRow(ctx, query, code).Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// List lista el plan contable ordenado por código.
func (r *AccountRepo) List(ctx context.Context) ([]*entity.Account, error) {
	query := `SELECT id, code, name, type, created_at FROM accounts ORDER BY code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		var a entity.Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}
