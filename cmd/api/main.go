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
	"golang.org/x/text/language"

	"github.com/jhoicas/billmaster-api/internal/application/analytics"
	"github.com/jhoicas/billmaster-api/internal/application/auth"
	"github.com/jhoicas/billmaster-api/internal/application/billing"
	"github.com/jhoicas/billmaster-api/internal/application/inventory"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
	"github.com/jhoicas/billmaster-api/internal/infrastructure/cache"
	"github.com/jhoicas/billmaster-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/billmaster-api/internal/infrastructure/pdf"
	"github.com/jhoicas/billmaster-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/billmaster-api/internal/interfaces/http"
	"github.com/jhoicas/billmaster-api/pkg/config"
	"github.com/jhoicas/billmaster-api/pkg/logger"
)

// storage puertos de persistencia elegidos por STORAGE_DRIVER.
type storage struct {
	txRunner  billing.BillingTxRunner
	invoices  repository.InvoiceRepository
	stock     repository.StockRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	settings  repository.SettingsRepository
	sequences repository.InvoiceSequenceRepository
	reporting repository.ReportingRepository
	closers   []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
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
		Str("storage", cfg.Storage.Driver).
		Str("sequence", cfg.Billing.SequenceBackend).
		Msg("iniciando aplicación")

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria")
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// ── Casos de uso ──────────────────────────────────────────────────────────
	clock := analytics.NewClock(loc, nil)
	reportingUC := analytics.NewReportingUseCase(store.reporting, clock)
	stockAdjuster := inventory.NewStockAdjuster(store.stock)

	allocator := billing.NewNumberAllocator(
		store.sequences, store.settings,
		cfg.Billing.InvoicePrefix, cfg.Billing.AllocationAttempts, loc,
	)
	createInvoiceUC := billing.NewCreateInvoiceUseCase(
		store.txRunner, allocator, stockAdjuster,
		store.customers, store.settings, cfg.Billing.AllocationAttempts,
	)
	invoiceQueryUC := billing.NewInvoiceQueryUseCase(store.invoices, store.customers, reportingUC)

	// PDF: comprobante de venta
	receiptUC := billing.NewReceiptUseCase(invoiceQueryUC, store.settings, infrapdf.NewMarotoPDFGenerator(language.English))

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// ── HTTP ──────────────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "BillMaster API",
		}))
	} else {
		log.Warn().Msg("docs/swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		CreateInvoice: createInvoiceUC,
		InvoiceQuery:  invoiceQueryUC,
		Receipt:       receiptUC,
		Reporting:     reportingUC,
		StockAdjuster: stockAdjuster,
		JWTSecret:     cfg.JWT.Secret,
		// Igual al WriteTimeout del servidor: una factura que no alcanza a responder no queda a medias.
		RequestTimeout: 10 * time.Second,
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

// openStorage construye los repositorios según STORAGE_DRIVER y el contador
// según BILLING_SEQUENCE_BACKEND.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	s := &storage{}
	storeLog := log.Component("storage")

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		mem := memory.NewStore()
		seedMemory(mem, log)
		s.txRunner = mem
		s.invoices = mem.Invoices()
		s.stock = mem.Stock()
		s.customers = mem.Customers()
		s.users = mem.Users()
		s.settings = mem.Settings()
		s.sequences = mem.Sequences()
		s.reporting = mem.Reporting()

	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		s.txRunner = postgres.NewTxRunner(pool)
		s.invoices = postgres.NewInvoiceRepository(pool)
		s.stock = postgres.NewStockRepository(pool)
		s.customers = postgres.NewCustomerRepository(pool)
		s.users = postgres.NewUserRepository(pool)
		s.settings = postgres.NewSettingsRepository(pool)
		s.sequences = postgres.NewSequenceRepository(pool)
		s.reporting = postgres.NewReportingRepository(pool)
	}
	storeLog.Info().Str("driver", cfg.Storage.Driver).Msg("repositorios listos")

	if cfg.Billing.SequenceBackend == config.DriverRedis {
		seq := cache.NewRedisSequence(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := seq.Ping(ctx); err != nil {
			_ = seq.Close()
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = seq.Close() })
		s.sequences = seq
		storeLog.Info().Str("addr", cfg.Redis.Addr).Msg("consecutivo de facturas en Redis")
	}
	return s, nil
}

// seedMemory deja la tienda en memoria usable: settings por defecto y un admin.
func seedMemory(mem *memory.Store, log *logger.Logger) {
	mem.SetSetting(entity.SettingTaxRate, "0")
	mem.SetSetting(entity.SettingCurrencySymbol, billing.DefaultCurrencySymbol)
	mem.SetSetting(entity.SettingStoreName, billing.DefaultStoreName)

	hash, err := auth.HashPassword("admin123")
	if err != nil {
		log.Error().Err(err).Msg("seed: hash de contraseña")
		return
	}
	mem.AddUser(entity.User{
		Username:     "admin",
		PasswordHash: hash,
		FullName:     "Administrator",
		Role:         entity.RoleAdmin,
		Active:       true,
	})
	log.Warn().Msg("almacenamiento en memoria: usuario admin/admin123 creado, los datos se pierden al reiniciar")
}
