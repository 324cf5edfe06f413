package sales_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	"github.com/tu-usuario/pos-ledger/internal/application/cashbox"
	"github.com/tu-usuario/pos-ledger/internal/application/journal"
	appledger "github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/application/sales"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
	"github.com/tu-usuario/pos-ledger/internal/infrastructure/memory"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de prueba: el núcleo completo cableado sobre el almacén en memoria.
// ──────────────────────────────────────────────────────────────────────────────

const (
	branchID    = "branch-1"
	registerID  = "register-1"
	warehouseID = "warehouse-1"
	itemID      = "item-1"
)

var (
	cashier    = entity.Actor{ID: "cajero-1"}
	supervisor = entity.Actor{ID: "supervisor-1", Permissions: []string{
		entity.PermDiscountOverride, entity.PermVoidTransaction,
	}}
)

type testEnv struct {
	store   *memory.Store
	stock   *appledger.StockLedgerUseCase
	cashbox *cashbox.UseCase
	sales   *sales.UseCase
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	log := logger.Nop()

	store.SeedBranch(
		entity.Branch{ID: branchID, Code: "BOG01", Name: "Sucursal Centro"},
		entity.Register{ID: registerID, BranchID: branchID, Name: "Caja 1"},
		entity.Warehouse{ID: warehouseID, BranchID: branchID, Name: "Bodega principal"},
	)
	store.SeedItem(entity.ItemRef{
		ID:             itemID,
		SKU:            "CAM-001",
		Name:           "Camiseta",
		SellingPrice:   d("25000"),
		CostPrice:      d("12000"),
		TaxRate:        d("0.10"),
		TrackInventory: true,
		IsSellable:     true,
	})

	auditor := audit.NewRecorder()
	stockUC := appledger.NewStockLedgerUseCase(runner, memory.NewCatalogProvider(store), auditor, appledger.Config{})
	poster := journal.NewPoster(runner, journal.AccountMapping{
		Cash:            "110505",
		CardReceivable:  "111005",
		OtherReceivable: "130505",
		Revenue:         "413595",
		TaxPayable:      "240805",
		COGS:            "613595",
		Inventory:       "143501",
	}, auditor, log)
	cashboxUC := cashbox.NewUseCase(runner, auditor, nil, 3, log)
	salesUC := sales.NewUseCase(
		runner,
		memory.NewCatalogProvider(store),
		memory.NewCustomerProvider(store),
		memory.NewBranchProvider(store),
		stockUC, cashboxUC, poster, auditor,
		sales.Config{MaxDiscountPct: d("0.5")},
		log,
	)
	return &testEnv{store: store, stock: stockUC, cashbox: cashboxUC, sales: salesUC}
}

// seedStock carga existencias iniciales y abre la sesión de caja.
func (e *testEnv) seedStock(t *testing.T, qty, cost string) *entity.CashSession {
	t.Helper()
	ctx := context.Background()
	unitCost := d(cost)
	_, err := e.stock.AdjustStock(ctx, warehouseID, itemID, "", d(qty), &unitCost, "carga inicial", cashier.ID)
	require.NoError(t, err)
	session, err := e.cashbox.Open(ctx, registerID, d("100000"), cashier.ID)
	require.NoError(t, err)
	return session
}

func (e *testEnv) onHand(t *testing.T) decimal.Decimal {
	t.Helper()
	records, err := e.stock.ListInventory(context.Background(), warehouseID, 100, 0)
	require.NoError(t, err)
	for _, rec := range records {
		if rec.ItemID == itemID {
			return rec.Quantity
		}
	}
	return decimal.Zero
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta de contado, camino feliz
// ──────────────────────────────────────────────────────────────────────────────

// Venta de 2 unidades a 25000 con IVA 10% exclusivo: subtotal 50000,
// impuesto 5000, total 55000. Pago 60000 en efectivo -> vueltas 5000.
func TestCreateTransaction_VentaDeContado(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")
	ctx := context.Background()

	tx, err := env.sales.CreateTransaction(ctx, sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines: []sales.LineInput{
			{ItemID: itemID, Quantity: d("2")},
		},
		Payments: []sales.PaymentInput{
			{Method: entity.PaymentMethodCash, Amount: d("60000")},
		},
	}, cashier)
	require.NoError(t, err)

	assert.Equal(t, entity.TxStatusCompleted, tx.Status)
	assert.True(t, d("50000").Equal(tx.Subtotal), "subtotal %s", tx.Subtotal)
	assert.True(t, d("5000").Equal(tx.TaxAmount), "impuesto %s", tx.TaxAmount)
	assert.True(t, d("55000").Equal(tx.Total), "total %s", tx.Total)
	assert.True(t, d("60000").Equal(tx.PaidAmount))
	assert.True(t, d("5000").Equal(tx.ChangeAmount))
	assert.NotEmpty(t, tx.Number, "la venta completada debe tener consecutivo")
	require.NotNil(t, tx.CompletedAt)

	// Identidad de totales: total = subtotal - descuento + impuesto.
	assert.True(t, tx.Total.Equal(tx.Subtotal.Sub(tx.DiscountAmount).Add(tx.TaxAmount)))

	// El stock bajó de 10 a 8.
	assert.True(t, d("8").Equal(env.onHand(t)))

	// El efectivo retenido (55000, neto de vueltas) quedó en la sesión.
	session, _, err := env.cashbox.GetSession(ctx, mustOpenSessionID(t, env))
	require.NoError(t, err)
	assert.True(t, d("55000").Equal(session.CashSales), "efectivo atribuido %s", session.CashSales)
}

func mustOpenSessionID(t *testing.T, env *testEnv) string {
	t.Helper()
	var id string
	err := memory.NewTxRunner(env.store).Run(context.Background(), func(r repository.Repos) error {
		s, err := r.CashSessions.FindOpenByRegister(context.Background(), registerID)
		if err != nil {
			return err
		}
		require.NotNil(t, s, "debe haber una sesión abierta en la caja")
		id = s.ID
		return nil
	})
	require.NoError(t, err)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas de pago y descuento
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateTransaction_PagoInsuficiente(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")

	_, err := env.sales.CreateTransaction(context.Background(), sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("2")}},
		Payments:    []sales.PaymentInput{{Method: entity.PaymentMethodCash, Amount: d("30000")}},
	}, cashier)
	assert.ErrorIs(t, err, domain.ErrInsufficientPayment)

	// Nada quedó aplicado.
	assert.True(t, d("10").Equal(env.onHand(t)))
}

// El tope de descuento se supera solo con el permiso delegado.
func TestCreateTransaction_TopeDeDescuento(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")
	ctx := context.Background()

	in := sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines: []sales.LineInput{
			// 60% de descuento sobre 25000, por encima del tope del 50%.
			{ItemID: itemID, Quantity: d("1"), DiscountAmount: d("15000")},
		},
		Payments: []sales.PaymentInput{{Method: entity.PaymentMethodCash, Amount: d("20000")}},
	}

	_, err := env.sales.CreateTransaction(ctx, in, cashier)
	assert.ErrorIs(t, err, domain.ErrForbidden, "el cajero no puede superar el tope")

	tx, err := env.sales.CreateTransaction(ctx, in, supervisor)
	require.NoError(t, err, "el supervisor sí puede")
	assert.Equal(t, entity.TxStatusCompleted, tx.Status)
	// total = subtotal - descuento + impuesto = 25000 - 15000 + 1000
	assert.True(t, d("11000").Equal(tx.Total), "total %s", tx.Total)
}

func TestCreateTransaction_SinStock(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "1", "12000")

	_, err := env.sales.CreateTransaction(context.Background(), sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("3")}},
		Payments:    []sales.PaymentInput{{Method: entity.PaymentMethodCash, Amount: d("100000")}},
	}, cashier)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, d("1").Equal(env.onHand(t)), "el rollback debe dejar el stock intacto")
}

// Dos ventas simultáneas que juntas exceden el stock: exactamente una gana.
func TestCreateTransaction_SobreventaConcurrente(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")

	sell := func() error {
		_, err := env.sales.CreateTransaction(context.Background(), sales.CreateTransactionInput{
			BranchID:    branchID,
			WarehouseID: warehouseID,
			RegisterID:  registerID,
			Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("6")}},
			Payments:    []sales.PaymentInput{{Method: entity.PaymentMethodCash, Amount: d("200000")}},
		}, cashier)
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = sell()
		}(i)
	}
	wg.Wait()

	okCount, oversold := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			oversold++
		}
	}
	assert.Equal(t, 1, okCount, "exactamente una venta debe completarse")
	assert.Equal(t, 1, oversold)
	assert.True(t, d("4").Equal(env.onHand(t)), "stock final %s", env.onHand(t))
}

// ──────────────────────────────────────────────────────────────────────────────
// Pago parcial (separado)
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteTransaction_PagoParcial(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")
	ctx := context.Background()

	draft, err := env.sales.CreateTransaction(ctx, sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("2")}},
		SaveAsDraft: true,
	}, cashier)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusDraft, draft.Status)
	assert.True(t, d("10").Equal(env.onHand(t)), "el borrador no descuenta stock")

	// Abono inicial: el documento queda PENDING con el stock ya descontado.
	tx, err := env.sales.CompleteTransaction(ctx, draft.ID, []sales.PaymentInput{
		{Method: entity.PaymentMethodCash, Amount: d("30000")},
	}, cashier)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusPending, tx.Status)
	assert.True(t, d("8").Equal(env.onHand(t)))

	// El saldo completa la venta.
	tx, err = env.sales.AddPayment(ctx, tx.ID, sales.PaymentInput{
		Method: entity.PaymentMethodCard, Amount: d("25000"),
	}, cashier)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusCompleted, tx.Status)
	assert.True(t, tx.PaidAmount.Equal(tx.Total))
}

// Las vueltas solo pueden salir de efectivo, también en el abono final: un
// sobrepago con tarjeta se rechaza en vez de completar la venta con vueltas
// imposibles de entregar y un asiento descuadrado.
func TestAddPayment_SobrepagoConTarjeta(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")
	ctx := context.Background()

	draft, err := env.sales.CreateTransaction(ctx, sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("2")}},
		SaveAsDraft: true,
	}, cashier)
	require.NoError(t, err)

	tx, err := env.sales.CompleteTransaction(ctx, draft.ID, []sales.PaymentInput{
		{Method: entity.PaymentMethodCard, Amount: d("30000")},
	}, cashier)
	require.NoError(t, err)
	require.Equal(t, entity.TxStatusPending, tx.Status)

	// Total 55000, pagado 30000: otra tarjeta por 30000 dejaría vueltas de
	// 5000 sin efectivo de dónde entregarlas.
	_, err = env.sales.AddPayment(ctx, tx.ID, sales.PaymentInput{
		Method: entity.PaymentMethodCard, Amount: d("30000"),
	}, cashier)
	require.ErrorIs(t, err, domain.ErrChangeExceedsCash)

	// El rechazo revierte todo el intento: sigue PENDING con el abono inicial.
	tx, _, _, err = env.sales.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusPending, tx.Status)
	assert.True(t, d("30000").Equal(tx.PaidAmount), "pagado %s", tx.PaidAmount)

	// El saldo exacto con tarjeta sí completa, sin vueltas, y la venta queda
	// contabilizada con asiento balanceado.
	tx, err = env.sales.AddPayment(ctx, tx.ID, sales.PaymentInput{
		Method: entity.PaymentMethodCard, Amount: d("25000"),
	}, cashier)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusCompleted, tx.Status)
	assert.True(t, tx.ChangeAmount.IsZero())

	err = memory.NewTxRunner(env.store).Run(ctx, func(r repository.Repos) error {
		entry, err := r.Journal.GetBySource(ctx, entity.EntrySourceTransaction, tx.ID)
		if err != nil {
			return err
		}
		assert.True(t, entry.TotalDebit.Equal(entry.TotalCredit))
		return nil
	})
	require.NoError(t, err)
}

// El mismo contrato en la venta de contado: sobrepago con tarjeta rechazado
// desde la validación de pagos.
func TestCreateTransaction_SobrepagoConTarjeta(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")

	_, err := env.sales.CreateTransaction(context.Background(), sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("2")}},
		Payments:    []sales.PaymentInput{{Method: entity.PaymentMethodCard, Amount: d("60000")}},
	}, cashier)
	require.ErrorIs(t, err, domain.ErrChangeExceedsCash)
	assert.True(t, d("10").Equal(env.onHand(t)), "el rechazo no debe tocar el stock")
}

// ──────────────────────────────────────────────────────────────────────────────
// Hold de carrito
// ──────────────────────────────────────────────────────────────────────────────

func TestHoldTransaction_ReservaYLibera(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")
	ctx := context.Background()

	draft, err := env.sales.CreateTransaction(ctx, sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("6")}},
		SaveAsDraft: true,
	}, cashier)
	require.NoError(t, err)

	held, err := env.sales.HoldTransaction(ctx, draft.ID, cashier)
	require.NoError(t, err)
	assert.True(t, held.IsHeld())

	// La reserva aparta disponible sin mover la cantidad en mano: otra venta
	// que necesite más del disponible restante falla.
	_, err = env.sales.CreateTransaction(ctx, sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("5")}},
		Payments:    []sales.PaymentInput{{Method: entity.PaymentMethodCash, Amount: d("200000")}},
	}, cashier)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	released, err := env.sales.ReleaseHold(ctx, draft.ID, cashier)
	require.NoError(t, err)
	assert.False(t, released.IsHeld())

	// Liberada la reserva, la misma venta pasa.
	_, err = env.sales.CreateTransaction(ctx, sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("5")}},
		Payments:    []sales.PaymentInput{{Method: entity.PaymentMethodCash, Amount: d("200000")}},
	}, cashier)
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

func TestVoidTransaction_RestauraStockYCaja(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")
	ctx := context.Background()

	tx, err := env.sales.CreateTransaction(ctx, sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("2")}},
		Payments:    []sales.PaymentInput{{Method: entity.PaymentMethodCash, Amount: d("55000")}},
	}, cashier)
	require.NoError(t, err)
	assert.True(t, d("8").Equal(env.onHand(t)))

	// El cajero sin permiso no puede anular.
	_, err = env.sales.VoidTransaction(ctx, tx.ID, "error de digitación", cashier)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	voided, err := env.sales.VoidTransaction(ctx, tx.ID, "error de digitación", supervisor)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusCancelled, voided.Status)
	assert.Equal(t, "error de digitación", voided.VoidReason)
	require.NotNil(t, voided.VoidedAt)

	// El stock vuelve y el efectivo sale de la sesión.
	assert.True(t, d("10").Equal(env.onHand(t)))
	session, _, err := env.cashbox.GetSession(ctx, mustOpenSessionID(t, env))
	require.NoError(t, err)
	assert.True(t, session.CashSales.IsZero(), "ventas en efectivo tras anular: %s", session.CashSales)

	// Anular dos veces no es una transición válida.
	_, err = env.sales.VoidTransaction(ctx, tx.ID, "otra vez", supervisor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Devoluciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateReturn_DevolucionParcial(t *testing.T) {
	env := newTestEnv(t)
	env.seedStock(t, "10", "12000")
	ctx := context.Background()

	tx, err := env.sales.CreateTransaction(ctx, sales.CreateTransactionInput{
		BranchID:    branchID,
		WarehouseID: warehouseID,
		RegisterID:  registerID,
		Lines:       []sales.LineInput{{ItemID: itemID, Quantity: d("2")}},
		Payments:    []sales.PaymentInput{{Method: entity.PaymentMethodCash, Amount: d("55000")}},
	}, cashier)
	require.NoError(t, err)

	_, items, _, err := env.sales.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	ret, err := env.sales.CreateReturn(ctx, tx.ID, []sales.ReturnLineInput{
		{TransactionItemID: items[0].ID, Quantity: d("1")},
	}, cashier)
	require.NoError(t, err)

	assert.Equal(t, entity.TxTypeReturn, ret.Type)
	assert.Equal(t, entity.TxStatusCompleted, ret.Status)
	assert.Equal(t, tx.ID, ret.RefTransactionID)
	// Prorrateo de la mitad de la venta: 27500.
	assert.True(t, d("27500").Equal(ret.Total), "total devuelto %s", ret.Total)

	// La unidad devuelta reingresa al inventario.
	assert.True(t, d("9").Equal(env.onHand(t)))

	// La venta original queda REFUNDED, nunca editada en sus montos.
	original, _, _, err := env.sales.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusRefunded, original.Status)
	assert.True(t, d("55000").Equal(original.Total))

	// Devolver más de lo vendido es inválido.
	_, err = env.sales.CreateReturn(ctx, tx.ID, []sales.ReturnLineInput{
		{TransactionItemID: items[0].ID, Quantity: d("5")},
	}, cashier)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "la venta ya no está COMPLETED")
}
