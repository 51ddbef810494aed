package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/config"
	domainRepo "github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/handler"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/middleware"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Patient   *handler.PatientHandler
	Bill      *handler.BillHandler
	Printer   *handler.PrinterHandler
	Catalog   *handler.CatalogHandler
	Form      *handler.FormHandler
	Event     *handler.EventHandler
	Health    *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *zap.Logger
	// Metrics serves /metrics; nil leaves the route out
	Metrics http.Handler
	// Ctx bounds background work such as rate limiter cleanup
	Ctx context.Context
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	ctx := deps.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.TracingMiddleware(deps.Cfg.App.Name))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Health)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	rateLimiter := middleware.NewClientRateLimiter(ctx, middleware.RateLimiterConfigFromWindow(
		deps.Cfg.RateLimit.Requests,
		time.Duration(deps.Cfg.RateLimit.Duration)*time.Second,
	))

	v1 := router.Group("/api/v1")
	{
		// Public routes, limited per client IP
		public := v1.Group("")
		public.Use(rateLimiter.Middleware())
		registerAuthRoutes(public, h)

		// Protected routes, limited per doctor
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/profile", h.Auth.GetProfile)

	// Dashboard and bill form lookups
	protected.GET("/dashboard", h.Dashboard.GetDashboard)
	protected.GET("/doctors", h.Dashboard.ListDoctors)
	protected.GET("/appointments", h.Dashboard.ListAppointments)

	// Patients
	protected.GET("/patients", h.Patient.ListPatients)
	protected.GET("/patients/:mrno", h.Patient.GetPatient)

	idempotency := middleware.IdempotencyRequired(middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		Logger: deps.Logger,
	})

	registerBillRoutes(protected, h, idempotency)

	protected.GET("/printer/status", h.Printer.GetStatus)

	catalog := protected.Group("/catalog")
	{
		catalog.GET("/medicines", h.Catalog.SearchMedicines)
		catalog.GET("/tests", h.Catalog.SearchTests)
	}

	registerFormRoutes(protected, h, idempotency, middleware.BodyLimit(deps.Cfg.Storage.UploadMaxSize))

	// Live events
	protected.GET("/ws", h.Event.Stream)
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	bills := protected.Group("/bills")
	{
		bills.GET("", h.Bill.ListBills)
		bills.GET("/stats", h.Bill.GetStats)
		bills.POST("/preview", h.Bill.PreviewAmounts)
		bills.POST("", idempotency, h.Bill.CreateBill)
		bills.GET("/:id", h.Bill.GetBill)
		bills.POST("/:id/payments", h.Bill.RecordPayment)
		bills.POST("/:id/cancel", h.Bill.CancelBill)
		bills.POST("/:id/print", h.Printer.PrintBill)
	}
}

func registerFormRoutes(protected *gin.RouterGroup, h *Handlers, idempotency, bodyLimit gin.HandlerFunc) {
	forms := protected.Group("/forms")
	{
		forms.POST("/preview", h.Form.Preview)
		forms.POST("", bodyLimit, idempotency, h.Form.SaveForm)
		forms.GET("", h.Form.ListForms)
		forms.GET("/:id/image", h.Form.GetFormImage)
	}
}
