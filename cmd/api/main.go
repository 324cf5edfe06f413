package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	"github.com/tu-usuario/pos-ledger/internal/application/cashbox"
	"github.com/tu-usuario/pos-ledger/internal/application/journal"
	appledger "github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/application/reports"
	"github.com/tu-usuario/pos-ledger/internal/application/sales"
	infracache "github.com/tu-usuario/pos-ledger/internal/infrastructure/cache"
	infrapdf "github.com/tu-usuario/pos-ledger/internal/infrastructure/pdf"
	"github.com/tu-usuario/pos-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/pos-ledger/internal/interfaces/http"
	"github.com/tu-usuario/pos-ledger/pkg/config"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)

	// Repos de solo lectura atados al pool: datos de referencia y reportes
	// no necesitan correr dentro del TxRunner.
	catalogRepo := postgres.NewCatalogRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	branchRepo := postgres.NewBranchRepository(pool)
	reportsRepo := postgres.NewReportsRepository(pool)

	// Caché de reportes: Redis si está configurado, si no Noop (consulta directa).
	var reportCache reports.Cache
	if cfg.Redis.Addr != "" {
		redisCache := infracache.NewRedisReportCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, reportes sin caché")
			reportCache = infracache.NewNoopCache()
		} else {
			defer redisCache.Close()
			reportCache = redisCache
		}
	} else {
		reportCache = infracache.NewNoopCache()
	}

	auditor := audit.NewRecorder()

	stockUC := appledger.NewStockLedgerUseCase(txRunner, catalogRepo, auditor, appledger.Config{
		AllowNegativeStock: cfg.POS.AllowNegativeStock,
		MaxRetries:         cfg.POS.MaxRetries,
	})

	poster := journal.NewPoster(txRunner, journal.AccountMapping{
		Cash:            cfg.Accounts.Cash,
		CardReceivable:  cfg.Accounts.CardReceivable,
		OtherReceivable: cfg.Accounts.OtherReceivable,
		Revenue:         cfg.Accounts.Revenue,
		TaxPayable:      cfg.Accounts.TaxPayable,
		COGS:            cfg.Accounts.COGS,
		Inventory:       cfg.Accounts.Inventory,
	}, auditor, log)

	zreportGen := infrapdf.NewMarotoZReportGenerator()
	cashboxUC := cashbox.NewUseCase(txRunner, auditor, zreportGen, cfg.POS.MaxRetries, log)

	salesUC := sales.NewUseCase(
		txRunner, catalogRepo, customerRepo, branchRepo,
		stockUC, cashboxUC, poster, auditor,
		sales.Config{
			MaxDiscountPct: decimal.NewFromInt(int64(cfg.POS.MaxDiscountPct)).Div(decimal.NewFromInt(100)),
			VoidWindow:     time.Duration(cfg.POS.VoidWindowHours) * time.Hour,
			MaxRetries:     cfg.POS.MaxRetries,
		},
		log,
	)

	reportsUC := reports.NewUseCase(
		reportsRepo, reportCache,
		time.Duration(cfg.POS.ReportCacheTTLSeconds)*time.Second,
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SalesUC:   salesUC,
		StockUC:   stockUC,
		CashboxUC: cashboxUC,
		ReportsUC: reportsUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
