package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	domledger "github.com/tu-usuario/pos-ledger/internal/domain/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
	"github.com/tu-usuario/pos-ledger/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// El runner simula el rollback: si el callback falla, ninguna escritura del
// intento queda visible.
func TestTxRunner_RollbackRestauraEstado(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	ctx := context.Background()

	boom := errors.New("falla simulada")
	err := runner.Run(ctx, func(r repository.Repos) error {
		rec := &entity.InventoryRecord{
			WarehouseID: "wh-1",
			ItemID:      "item-1",
			Quantity:    d("10"),
			UpdatedAt:   time.Now(),
		}
		if err := r.Inventory.Upsert(ctx, rec); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = runner.Run(ctx, func(r repository.Repos) error {
		rec, err := r.Inventory.Get(ctx, "wh-1", "item-1", "")
		if err != nil {
			return err
		}
		assert.True(t, rec.Quantity.IsZero(), "la escritura del intento fallido no debe persistir")
		return nil
	})
	require.NoError(t, err)
}

// Consecutivos únicos y sin duplicados bajo concurrencia: cada transacción
// obtiene un número distinto para la misma llave (sucursal, tipo, día).
func TestSequenceRepo_ConsecutivosUnicosConcurrentes(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	ctx := context.Background()
	date := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)

	const n = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := runner.Run(ctx, func(r repository.Repos) error {
				number, err := r.Sequences.Next(ctx, "branch-1", "BOG01", domledger.DocKindTransaction, date)
				if err != nil {
					return err
				}
				mu.Lock()
				numbers[number] = true
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, n, "cada transacción debe recibir un consecutivo distinto")
}

// Un intento abortado revierte el contador junto con el resto del estado:
// el número nunca se entregó, así que se reutiliza en el siguiente intento.
func TestSequenceRepo_AbortoRevierteContador(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	ctx := context.Background()
	date := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)

	var first string
	require.NoError(t, runner.Run(ctx, func(r repository.Repos) error {
		var err error
		first, err = r.Sequences.Next(ctx, "branch-1", "BOG01", domledger.DocKindTransaction, date)
		return err
	}))
	assert.Equal(t, "BOG01-250829-0001", first)

	// Transacción que reserva número y aborta.
	boom := errors.New("abortada")
	err := runner.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Sequences.Next(ctx, "branch-1", "BOG01", domledger.DocKindTransaction, date); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var next string
	require.NoError(t, runner.Run(ctx, func(r repository.Repos) error {
		var err error
		next, err = r.Sequences.Next(ctx, "branch-1", "BOG01", domledger.DocKindTransaction, date)
		return err
	}))
	assert.Equal(t, "BOG01-250829-0002", next, "el número del intento abortado se reutiliza")
	assert.NotEqual(t, first, next)
}

// Los consecutivos reinician por día y por tipo de documento.
func TestSequenceRepo_LlavesIndependientes(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	ctx := context.Background()
	day1 := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	var tx1, tx2, wo string
	require.NoError(t, runner.Run(ctx, func(r repository.Repos) error {
		var err error
		if tx1, err = r.Sequences.Next(ctx, "branch-1", "BOG01", domledger.DocKindTransaction, day1); err != nil {
			return err
		}
		if tx2, err = r.Sequences.Next(ctx, "branch-1", "BOG01", domledger.DocKindTransaction, day2); err != nil {
			return err
		}
		wo, err = r.Sequences.Next(ctx, "branch-1", "BOG01", domledger.DocKindWorkOrder, day1)
		return err
	}))
	assert.Equal(t, "BOG01-250829-0001", tx1)
	assert.Equal(t, "BOG01-250830-0001", tx2, "el consecutivo reinicia con el día")
	assert.Equal(t, "WO-BOG01-250829-0001", wo, "cada tipo de documento lleva su propia serie")
}
