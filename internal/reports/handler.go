package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/dashboard", h.Dashboard)
		r.Get("/revenue", h.Revenue)
		r.Get("/summary", h.Summary)
		r.Get("/services", h.Services)
		r.Get("/monthly", h.Monthly)
		r.Get("/top-customers", h.TopCustomers)
		r.Get("/payment-methods", h.PaymentMethods)
		r.Get("/expenses", h.Expenses)
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Dashboard(r.Context())
	h.respond(w, "dashboard", out, err)
}

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	days := httpx.IntParam(r.URL.Query(), "days", 30, 366)
	out, err := h.service.RevenueByDay(r.Context(), days)
	h.respond(w, "revenue", map[string]any{"data": out}, err)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}
	out, err := h.service.Summary(r.Context(), rng)
	h.respond(w, "summary", out, err)
}

func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}
	out, err := h.service.ServiceDistribution(r.Context(), rng)
	h.respond(w, "services", map[string]any{"data": out}, err)
}

func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	months := httpx.IntParam(r.URL.Query(), "months", 12, 60)
	out, err := h.service.MonthlyTrend(r.Context(), months)
	h.respond(w, "monthly", map[string]any{"data": out}, err)
}

func (h *Handler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}
	limit := httpx.IntParam(r.URL.Query(), "limit", 10, 100)
	out, err := h.service.TopCustomers(r.Context(), rng, limit)
	h.respond(w, "top customers", map[string]any{"data": out}, err)
}

func (h *Handler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}
	out, err := h.service.PaymentMethods(r.Context(), rng)
	h.respond(w, "payment methods", map[string]any{"data": out}, err)
}

func (h *Handler) Expenses(w http.ResponseWriter, r *http.Request) {
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}
	out, err := h.service.Expenses(r.Context(), rng)
	h.respond(w, "expenses", map[string]any{"data": out}, err)
}

func (h *Handler) respond(w http.ResponseWriter, report string, body any, err error) {
	if err != nil {
		h.logger.Error("report failed", slog.String("report", report), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, body)
}

func parseRange(w http.ResponseWriter, r *http.Request) (Range, bool) {
	from, to, err := httpx.DateRange(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return Range{}, false
	}
	return Range{From: from, To: to}, true
}
