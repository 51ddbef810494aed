package main

import (
	"context"
	"errors"
	"image"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/application/service"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/config"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	domainRepo "github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/infrastructure/database"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/infrastructure/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/handler"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/middleware"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/routes"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/billing"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/circuitbreaker"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/events"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/formrender"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/logger"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/metrics"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/oauth"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/printer"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/storage"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/tracing"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/utils"
)

const (
	shutdownTimeout        = 15 * time.Second
	idempotencySweepPeriod = time.Hour
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Env,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatal("failed to initialise tracing", zap.Error(err))
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get database handle", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if cfg.Database.Seed {
		if err := database.SeedDefaultData(db, log); err != nil {
			log.Warn("failed to seed default data", zap.Error(err))
		}
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	m := metrics.New()

	// Initialize repositories
	doctorRepo := repository.NewDoctorRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	billRepo := repository.NewBillRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	formRepo := repository.NewFormRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	store, err := storage.New(storage.Options{
		Driver:   cfg.Storage.Driver,
		Path:     cfg.Storage.Path,
		S3Region: cfg.Storage.S3Region,
		S3Bucket: cfg.Storage.S3Bucket,
		S3Prefix: cfg.Storage.S3Prefix,
	})
	if err != nil {
		log.Fatal("failed to initialise form storage", zap.Error(err))
	}

	renderer := formrender.New(formrender.Assets{
		ClinicName:    cfg.Clinic.Name,
		ClinicAddress: cfg.Clinic.Address,
		LogoURL:       cfg.Clinic.LogoURL,
		Logo:          loadLogo(cfg.Clinic.LogoPath, log),
	})

	breakerConfig := func(name string) circuitbreaker.Config {
		bc := circuitbreaker.DefaultConfig(name)
		bc.OnStateChange = func(name string, to circuitbreaker.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(to.Gauge())
		}
		return bc
	}

	var verifier service.PasswordVerifier
	if cfg.Auth.Enabled() {
		verifier = oauth.NewPasswordVerifier(oauth.Config{
			TokenURL:     cfg.Auth.TokenURL,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
		}, circuitbreaker.New(breakerConfig("identity-provider"), log))
	}

	// Live events go to connected browsers and, when configured, to Kafka
	hub := events.NewHub(log, middleware.AllowOriginFunc(&cfg.CORS))
	go hub.Run(ctx)

	publisher := events.Multi{hub}
	var kafka *events.KafkaPublisher
	if cfg.Kafka.Enabled() {
		kafka, err = events.NewKafkaPublisher(events.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, circuitbreaker.New(breakerConfig("kafka"), log), log)
		if err != nil {
			log.Fatal("failed to create kafka publisher", zap.Error(err))
		}
		publisher = append(publisher, kafka)
	}

	// Initialize services
	authService := service.NewAuthService(doctorRepo, verifier, jwtManager, log)
	dashboardService := service.NewDashboardService(appointmentRepo, doctorRepo, cfg.App.Location)
	patientService := service.NewPatientService(appointmentRepo, billRepo)
	billingService := service.NewBillingService(
		billRepo, doctorRepo, appointmentRepo,
		billing.NewIdentifierGenerator(time.Now().UnixNano()),
		service.BillingOptions{
			DueDays:            cfg.Billing.DueDays,
			MaxNumberAttempts:  cfg.Billing.MaxNumberAttempts,
			DefaultCategory:    cfg.Billing.DefaultCategory,
			DefaultDepartment:  cfg.Billing.DefaultDepartment,
			CreatedByStaffName: cfg.Billing.CreatedByStaffName,
			Location:           cfg.App.Location,
		},
		publisher, m, log,
	)
	formService := service.NewFormService(
		formRepo, appointmentRepo, doctorRepo, catalogRepo,
		store, renderer, cfg.App.Location, publisher, m, log,
	)

	// Initialize thermal printer
	thermalPrinter, err := printer.NewFromConfig(cfg.Printer.Type, cfg.Printer.DevicePath, cfg.Printer.Address)
	if err != nil {
		log.Warn("failed to initialise printer, receipts will not be printed", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
	}
	printerService := service.NewPrinterService(
		thermalPrinter,
		billRepo,
		entity.ReceiptHeader{ClinicName: cfg.Clinic.Name, Address: cfg.Clinic.Address},
		cfg.Printer.PaperWidth,
		cfg.App.Location,
		log,
	)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Patient:   handler.NewPatientHandler(patientService),
		Bill:      handler.NewBillHandler(billingService),
		Printer:   handler.NewPrinterHandler(printerService),
		Catalog:   handler.NewCatalogHandler(formService),
		Form:      handler.NewFormHandler(formService),
		Event:     handler.NewEventHandler(hub, log),
		Health:    handler.NewHealthHandler(cfg.App.Name, cfg.App.Version, sqlDB),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          log,
		Metrics:         m.Handler(),
		Ctx:             ctx,
	})

	go sweepIdempotencyKeys(ctx, idempotencyRepo, log)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server",
			zap.String("name", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if kafka != nil {
		kafka.Close(shutdownCtx)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close failed", zap.Error(err))
	}
}

// loadLogo reads the clinic logo drawn on saved forms. A missing logo only
// leaves the header slot empty.
func loadLogo(path string, log *zap.Logger) image.Image {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Warn("clinic logo not loaded", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer f.Close()

	logo, err := formrender.LoadLogo(f)
	if err != nil {
		log.Warn("clinic logo not loaded", zap.String("path", path), zap.Error(err))
		return nil
	}
	return logo
}

func sweepIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *zap.Logger) {
	ticker := time.NewTicker(idempotencySweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := repo.DeleteExpired(ctx, now); err != nil {
				log.Warn("failed to delete expired idempotency keys", zap.Error(err))
			}
		}
	}
}
