package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/marsone/crew-api/docs"
	"github.com/marsone/crew-api/internal/api/handler"
	"github.com/marsone/crew-api/internal/api/middleware"
	"github.com/marsone/crew-api/internal/core/ports"
	"github.com/marsone/crew-api/internal/core/validation"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Logger     zerolog.Logger
	Validator  *validation.Validator
	Jobs       ports.JobService
	Users      ports.UserService
	Categories ports.CategoryService
	// History is optional; the history routes are only registered when set.
	History ports.AuditReader
	// Health lists the dependencies checked by /health/ready.
	Health map[string]handler.Pinger
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	registerer := d.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger, StatusCode))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "crew",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Operational routes ---
	healthHandler := handler.NewHealthHandler(d.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Resource routes ---
	api := e.Group("/api")

	jobs := handler.NewJobHandler(d.Jobs, d.Validator)
	api.GET("/jobs", jobs.List)
	api.POST("/jobs", jobs.Create)
	api.GET("/jobs/:id", jobs.Get)
	api.PUT("/jobs/:id", jobs.Replace)
	api.DELETE("/jobs/:id", jobs.Delete)

	users := handler.NewUserHandler(d.Users, d.Validator)
	api.GET("/users", users.List)
	api.POST("/users", users.Create)
	api.GET("/users/:id", users.Get)
	api.PUT("/users/:id", users.Replace)
	api.DELETE("/users/:id", users.Delete)

	categories := handler.NewCategoryHandler(d.Categories)
	api.GET("/categories", categories.List)
	api.POST("/categories", categories.Create)
	api.GET("/categories/:id", categories.Get)

	if d.History != nil {
		history := handler.NewAuditHandler(d.History)
		api.GET("/jobs/:id/history", history.JobHistory)
		api.GET("/users/:id/history", history.UserHistory)
		api.GET("/categories/:id/history", history.CategoryHistory)
	}

	return e
}
