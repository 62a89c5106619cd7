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

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ports agrupa los adaptadores de almacenamiento según LEDGER_STORAGE.
type ports struct {
	txRunner   inventory.TxRunner
	items      repository.ItemRepository
	locations  repository.LocationRepository
	levels     repository.StockLevelRepository
	movements  repository.MovementRepository
	stockQuery repository.StockQueryRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Ledger.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	p, err := buildPorts(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer p.close()

	idempotency := cache.NewIdempotencyStore(ctx, cfg.Redis, log.Zerolog())
	defer idempotency.Close()

	ledgerUC := inventory.NewLedgerUseCase(
		p.txRunner, p.items, p.locations, p.levels, p.movements, idempotency,
		inventory.LedgerConfig{
			MaxRetries:     cfg.Ledger.MaxRetries,
			RetryBackoff:   cfg.Ledger.RetryBackoff,
			IdempotencyTTL: cfg.Ledger.IdempotencyTTL,
		},
		log.With().Str("component", "ledger").Logger(),
	)
	statusUC := inventory.NewStockStatusUseCase(p.stockQuery)
	movementsUC := inventory.NewMovementQueryUseCase(p.movements)
	statisticsUC := analytics.NewStatisticsUseCase(p.stockQuery)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Zerolog()))

	// Swagger UI en local: http://localhost:<port>/docs (solo si existe el swagger.json generado)
	if _, err := os.Stat(cfg.Swagger.FilePath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Swagger.FilePath,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Ledger.Storage})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:     ledgerUC,
		Status:     statusUC,
		Movements:  movementsUC,
		Statistics: statisticsUC,
		JWTSecret:  cfg.JWT.Secret,
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

func buildPorts(ctx context.Context, cfg *config.Config) (*ports, error) {
	if cfg.Ledger.Storage == "memory" {
		store := memory.NewStore(memory.WithLockTimeout(cfg.Ledger.LockTimeout))
		seedDemo(store)
		return &ports{
			txRunner:   memory.NewTxRunner(store),
			items:      store.Items(),
			locations:  store.Locations(),
			levels:     store.Levels(),
			movements:  store.Movements(),
			stockQuery: store.StockQuery(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &ports{
		txRunner:   postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
		items:      postgres.NewItemRepository(pool),
		locations:  postgres.NewLocationRepository(pool),
		levels:     postgres.NewStockLevelRepository(pool),
		movements:  postgres.NewMovementRepository(pool),
		stockQuery: postgres.NewStockQueryRepository(pool),
		close:      pool.Close,
	}, nil
}

// seedDemo carga un catálogo pequeño para probar la API sin base de datos.
func seedDemo(store *memory.Store) {
	store.Seed(
		[]entity.Item{
			{ID: "ITEM-001", SKU: "TOR-M6", Name: "Tornillo M6", UnitCost: decimal.RequireFromString("0.12"), UnitPrice: decimal.RequireFromString("0.25"), MinQuantity: 100, Active: true},
			{ID: "ITEM-002", SKU: "TUE-M6", Name: "Tuerca M6", UnitCost: decimal.RequireFromString("0.05"), UnitPrice: decimal.RequireFromString("0.10"), MinQuantity: 100, Active: true},
		},
		[]entity.Location{
			{ID: "LOC-CENTRAL", Name: "Bodega central", Active: true},
			{ID: "LOC-TIENDA", Name: "Tienda", Active: true},
		},
		map[string]map[string]int64{
			"ITEM-001": {"LOC-CENTRAL": 500, "LOC-TIENDA": 80},
			"ITEM-002": {"LOC-CENTRAL": 300},
		},
		"seed",
	)
}
