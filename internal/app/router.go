package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/laundrydesk/laundrydesk/internal/auth"
	"github.com/laundrydesk/laundrydesk/internal/catalog"
	"github.com/laundrydesk/laundrydesk/internal/customers"
	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/export"
	"github.com/laundrydesk/laundrydesk/internal/invoice"
	"github.com/laundrydesk/laundrydesk/internal/observability"
	"github.com/laundrydesk/laundrydesk/internal/orders"
	"github.com/laundrydesk/laundrydesk/internal/reports"
	"github.com/laundrydesk/laundrydesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Metrics          *observability.Metrics
	AuthHandler      *auth.Handler
	CustomersHandler *customers.Handler
	CatalogHandler   *catalog.Handler
	OrdersHandler    *orders.Handler
	ExpensesHandler  *expenses.Handler
	ReportsHandler   *reports.Handler
	ExportHandler    *export.Handler
	InvoiceHandler   *invoice.Handler
	JobHandler       *jobs.Handler
	Health           HealthCheck
}

// NewRouter constructs the chi.Router with laundrydesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", healthHandler(params.Logger, params.Health))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(loginLimit(params.Config), time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthHandler.RequireBearer)
		params.AuthHandler.MountProtected(r)
		params.CustomersHandler.MountRoutes(r)
		params.CatalogHandler.MountRoutes(r)
		params.OrdersHandler.MountRoutes(r)
		params.ExpensesHandler.MountRoutes(r)
		params.ReportsHandler.MountRoutes(r)
		params.ExportHandler.MountRoutes(r)
		if params.InvoiceHandler != nil {
			params.InvoiceHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}

func loginLimit(cfg *Config) int {
	if cfg != nil && cfg.LoginRateLimit > 0 {
		return cfg.LoginRateLimit
	}
	return 10
}
