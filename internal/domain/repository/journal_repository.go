package repository

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// JournalRepository define el puerto de persistencia de asientos contables.
// CreateEntry inserta cabecera y líneas; la unicidad (source_type, source_id)
// la hace cumplir la base y se mapea a domain.ErrAlreadyPosted.
type JournalRepository interface {
	CreateEntry(ctx context.Context, entry *entity.JournalEntry) error
	MarkPosted(ctx context.Context, entry *entity.JournalEntry) error
	MarkReversed(ctx context.Context, entryID, reversedByID string) error
	GetByID(ctx context.Context, id string) (*entity.JournalEntry, error)
	GetBySource(ctx context.Context, sourceType, sourceID string) (*entity.JournalEntry, error)
}

// AccountRepository define el puerto de consulta del plan contable.
type AccountRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
}
