package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	appledger "github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/infrastructure/memory"
)

const (
	whA    = "warehouse-a"
	whB    = "warehouse-b"
	itemID = "item-1"
	actor  = "bodeguero-1"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newStockEnv(t *testing.T, cfg appledger.Config) (*memory.Store, *appledger.StockLedgerUseCase) {
	t.Helper()
	store := memory.NewStore()
	store.SeedItem(entity.ItemRef{
		ID:             itemID,
		SKU:            "CAM-001",
		Name:           "Camiseta",
		SellingPrice:   d("25000"),
		CostPrice:      d("12000"),
		TrackInventory: true,
		IsSellable:     true,
	})
	uc := appledger.NewStockLedgerUseCase(
		memory.NewTxRunner(store),
		memory.NewCatalogProvider(store),
		audit.NewRecorder(),
		cfg,
	)
	return store, uc
}

func adjust(t *testing.T, uc *appledger.StockLedgerUseCase, wh, qty, cost string) *entity.StockMovement {
	t.Helper()
	var unitCost *decimal.Decimal
	if cost != "" {
		c := d(cost)
		unitCost = &c
	}
	mov, err := uc.AdjustStock(context.Background(), wh, itemID, "", d(qty), unitCost, "ajuste de prueba", actor)
	require.NoError(t, err)
	return mov
}

func record(t *testing.T, uc *appledger.StockLedgerUseCase, wh string) *entity.InventoryRecord {
	t.Helper()
	records, err := uc.ListInventory(context.Background(), wh, 100, 0)
	require.NoError(t, err)
	for _, rec := range records {
		if rec.ItemID == itemID {
			return rec
		}
	}
	t.Fatalf("sin registro de inventario para %s en %s", itemID, wh)
	return nil
}

// El registro de existencias se crea de forma perezosa con el primer
// movimiento y el costo promedio queda en el costo de esa entrada.
func TestAdjustStock_CreacionPerezosa(t *testing.T) {
	_, uc := newStockEnv(t, appledger.Config{})

	mov := adjust(t, uc, whA, "10", "1000")
	assert.True(t, mov.QuantityBefore.IsZero())
	assert.True(t, d("10").Equal(mov.QuantityAfter))

	rec := record(t, uc, whA)
	assert.True(t, d("10").Equal(rec.Quantity))
	assert.True(t, d("1000").Equal(rec.AverageCost))
}

// El costo promedio se recalcula solo en entradas; las salidas lo conservan.
func TestAdjustStock_CostoPromedioPonderado(t *testing.T) {
	_, uc := newStockEnv(t, appledger.Config{})

	adjust(t, uc, whA, "10", "1000")
	adjust(t, uc, whA, "5", "1600")
	rec := record(t, uc, whA)
	assert.True(t, d("1200").Equal(rec.AverageCost), "promedio %s", rec.AverageCost)

	adjust(t, uc, whA, "-5", "")
	rec = record(t, uc, whA)
	assert.True(t, d("10").Equal(rec.Quantity))
	assert.True(t, d("1200").Equal(rec.AverageCost), "la salida no cambia el promedio")
}

func TestAdjustStock_SobreventaRechazada(t *testing.T) {
	_, uc := newStockEnv(t, appledger.Config{})
	adjust(t, uc, whA, "3", "1000")

	_, err := uc.AdjustStock(context.Background(), whA, itemID, "", d("-5"), nil, "salida", actor)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// Con backorder habilitado la cantidad puede quedar negativa.
func TestAdjustStock_BackorderPermitido(t *testing.T) {
	_, uc := newStockEnv(t, appledger.Config{AllowNegativeStock: true})
	adjust(t, uc, whA, "3", "1000")
	adjust(t, uc, whA, "-5", "")

	rec := record(t, uc, whA)
	assert.True(t, d("-2").Equal(rec.Quantity))
}

// La cadena de movimientos por llave es continua: QuantityBefore de cada
// movimiento es el QuantityAfter del anterior.
func TestListMovements_CadenaContinua(t *testing.T) {
	_, uc := newStockEnv(t, appledger.Config{})
	adjust(t, uc, whA, "10", "1000")
	adjust(t, uc, whA, "-4", "")
	adjust(t, uc, whA, "6", "1500")
	adjust(t, uc, whA, "-2", "")

	movements, err := uc.ListMovements(context.Background(), whA, itemID, "", nil, nil, 100, 0)
	require.NoError(t, err)
	require.Len(t, movements, 4)
	for i := 1; i < len(movements); i++ {
		assert.True(t, movements[i].QuantityBefore.Equal(movements[i-1].QuantityAfter),
			"cadena rota entre el movimiento %d y %d", i-1, i)
	}
	last := movements[len(movements)-1]
	assert.True(t, d("10").Equal(last.QuantityAfter))
}

// El traslado resta en origen y suma en destino al costo promedio de origen.
func TestTransferStock(t *testing.T) {
	_, uc := newStockEnv(t, appledger.Config{})
	adjust(t, uc, whA, "10", "1200")

	movements, err := uc.TransferStock(context.Background(), whA, whB, []appledger.TransferItem{
		{ItemID: itemID, Quantity: d("4")},
	}, actor)
	require.NoError(t, err)
	require.Len(t, movements, 2, "un movimiento de salida y uno de entrada")
	assert.Equal(t, entity.MovementKindTransfer, movements[0].Kind)
	assert.Equal(t, entity.MovementKindTransfer, movements[1].Kind)

	origen := record(t, uc, whA)
	destino := record(t, uc, whB)
	assert.True(t, d("6").Equal(origen.Quantity))
	assert.True(t, d("4").Equal(destino.Quantity))
	assert.True(t, d("1200").Equal(destino.AverageCost), "el costo viaja con el traslado")
}

// Atomicidad del traslado: si una línea falla, ninguna queda aplicada.
func TestTransferStock_FallaAtomica(t *testing.T) {
	store, uc := newStockEnv(t, appledger.Config{})
	store.SeedItem(entity.ItemRef{
		ID:             "item-2",
		SKU:            "PAN-001",
		Name:           "Pantalón",
		SellingPrice:   d("40000"),
		TrackInventory: true,
		IsSellable:     true,
	})
	adjust(t, uc, whA, "10", "1200")
	// item-2 sin existencias en origen: la segunda línea debe fallar.

	_, err := uc.TransferStock(context.Background(), whA, whB, []appledger.TransferItem{
		{ItemID: itemID, Quantity: d("4")},
		{ItemID: "item-2", Quantity: d("1")},
	}, actor)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	origen := record(t, uc, whA)
	assert.True(t, d("10").Equal(origen.Quantity), "la primera línea debe revertirse con el rollback")

	records, err := uc.ListInventory(context.Background(), whB, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, records, "nada debe llegar al destino")
}

func TestTransferStock_EntradasInvalidas(t *testing.T) {
	_, uc := newStockEnv(t, appledger.Config{})
	ctx := context.Background()

	_, err := uc.TransferStock(ctx, whA, whA, []appledger.TransferItem{{ItemID: itemID, Quantity: d("1")}}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "origen y destino iguales")

	_, err = uc.TransferStock(ctx, whA, whB, nil, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = uc.TransferStock(ctx, whA, whB, []appledger.TransferItem{{ItemID: itemID, Quantity: d("0")}}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad no positiva")
}

// Artículos sin control de inventario no pasan por el libro.
func TestApplyMovement_SinControlDeInventario(t *testing.T) {
	store, uc := newStockEnv(t, appledger.Config{})
	store.SeedItem(entity.ItemRef{
		ID:         "servicio-1",
		Name:       "Instalación",
		IsSellable: true,
	})

	_, err := uc.AdjustStock(context.Background(), whA, "servicio-1", "", d("1"), nil, "ajuste", actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
