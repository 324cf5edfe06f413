package postgres_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/infrastructure/postgres"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Querier guionado: simula la tabla inventory_records fila por fila para
// observar qué sentencias emite el repositorio y en qué orden.
// ──────────────────────────────────────────────────────────────────────────────

type scriptedRow struct {
	rec *entity.InventoryRecord
	err error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.rec.WarehouseID
	*dest[1].(*string) = r.rec.ItemID
	*dest[2].(*string) = r.rec.VariantID
	*dest[3].(*decimal.Decimal) = r.rec.Quantity
	*dest[4].(*decimal.Decimal) = r.rec.ReservedQuantity
	*dest[5].(*decimal.Decimal) = r.rec.AverageCost
	*dest[6].(*time.Time) = r.rec.UpdatedAt
	return nil
}

type scriptedQuerier struct {
	// row nil simula llave inexistente.
	row *entity.InventoryRecord
	// onSeed corre cuando llega el INSERT ... DO NOTHING; permite simular a
	// la transacción rival que ya confirmó su fila.
	onSeed  func(q *scriptedQuerier)
	selects []string
	execs   []string
}

func (q *scriptedQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.execs = append(q.execs, sql)
	if strings.Contains(sql, "DO NOTHING") && q.onSeed != nil {
		q.onSeed(q)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *scriptedQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("no usado por el repositorio en estos casos")
}

func (q *scriptedQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	q.selects = append(q.selects, sql)
	if q.row == nil {
		return scriptedRow{err: pgx.ErrNoRows}
	}
	return scriptedRow{rec: q.row}
}

// ──────────────────────────────────────────────────────────────────────────────
// GetForUpdate: siembra y re-lectura de la primera inserción
// ──────────────────────────────────────────────────────────────────────────────

// Llave inexistente: el repositorio debe sembrar la fila en cero con
// ON CONFLICT DO NOTHING y volver a leerla CON el lock, nunca devolver un
// registro en cero sin fila bloqueada detrás.
func TestGetForUpdate_LlaveNueva_SiembraYBloquea(t *testing.T) {
	q := &scriptedQuerier{
		onSeed: func(q *scriptedQuerier) {
			q.row = &entity.InventoryRecord{
				WarehouseID: "wh-1", ItemID: "item-1",
				Quantity:         decimal.Zero,
				ReservedQuantity: decimal.Zero,
				AverageCost:      decimal.Zero,
				UpdatedAt:        time.Now(),
			}
		},
	}
	repo := postgres.NewInventoryRepository(q)

	rec, err := repo.GetForUpdate(context.Background(), "wh-1", "item-1", "")
	require.NoError(t, err)
	assert.True(t, rec.Quantity.IsZero())

	require.Len(t, q.execs, 1, "debe sembrar la fila exactamente una vez")
	assert.Contains(t, q.execs[0], "ON CONFLICT")
	assert.Contains(t, q.execs[0], "DO NOTHING")
	require.Len(t, q.selects, 2, "lectura inicial + re-lectura tras la siembra")
	assert.Contains(t, q.selects[1], "FOR UPDATE",
		"la re-lectura debe tomar el lock de la fila sembrada")
}

// Dos primeros movimientos concurrentes de la misma llave: la transacción
// perdedora encuentra la fila ya confirmada por la rival al re-leer tras la
// siembra, y calcula desde ESAS cantidades en vez de desde cero.
func TestGetForUpdate_CarreraPrimeraInsercion_LeeLaFilaRival(t *testing.T) {
	q := &scriptedQuerier{
		onSeed: func(q *scriptedQuerier) {
			// La rival confirmó primero: 7 unidades a costo 1000.
			q.row = &entity.InventoryRecord{
				WarehouseID: "wh-1", ItemID: "item-1",
				Quantity:         d("7"),
				ReservedQuantity: decimal.Zero,
				AverageCost:      d("1000"),
				UpdatedAt:        time.Now(),
			}
		},
	}
	repo := postgres.NewInventoryRepository(q)

	rec, err := repo.GetForUpdate(context.Background(), "wh-1", "item-1", "")
	require.NoError(t, err)
	assert.True(t, d("7").Equal(rec.Quantity),
		"cantidad obtenida %s: debe partir de la fila rival, no de cero", rec.Quantity)
	assert.True(t, d("1000").Equal(rec.AverageCost))
}

// Fila existente: un solo SELECT FOR UPDATE, sin siembra.
func TestGetForUpdate_FilaExistente_SinSiembra(t *testing.T) {
	q := &scriptedQuerier{
		row: &entity.InventoryRecord{
			WarehouseID: "wh-1", ItemID: "item-1",
			Quantity: d("5"), ReservedQuantity: decimal.Zero,
			AverageCost: d("800"), UpdatedAt: time.Now(),
		},
	}
	repo := postgres.NewInventoryRepository(q)

	rec, err := repo.GetForUpdate(context.Background(), "wh-1", "item-1", "")
	require.NoError(t, err)
	assert.True(t, d("5").Equal(rec.Quantity))
	assert.Empty(t, q.execs)
	require.Len(t, q.selects, 1)
	assert.Contains(t, q.selects[0], "FOR UPDATE")
}

// Get (sin lock) conserva el contrato histórico: llave inexistente devuelve
// un registro en cero sin escribir nada.
func TestGet_LlaveInexistente_RegistroEnCero(t *testing.T) {
	q := &scriptedQuerier{}
	repo := postgres.NewInventoryRepository(q)

	rec, err := repo.Get(context.Background(), "wh-1", "item-1", "")
	require.NoError(t, err)
	assert.True(t, rec.Quantity.IsZero())
	assert.True(t, rec.AverageCost.IsZero())
	assert.Empty(t, q.execs, "Get nunca siembra")
}
