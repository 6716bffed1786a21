package invoice

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/laundrydesk/laundrydesk/internal/orders"
	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

// OrderReader loads the order aggregate printed on a receipt.
type OrderReader interface {
	Get(ctx context.Context, id uuid.UUID) (*orders.Details, error)
}

var _ OrderReader = (*orders.Service)(nil)

// PDFRenderer converts HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// Handler serves receipt downloads.
type Handler struct {
	logger   *slog.Logger
	orders   OrderReader
	renderer *Renderer
	pdf      PDFRenderer
}

// NewHandler constructs the receipt HTTP handler. pdf may be nil.
func NewHandler(logger *slog.Logger, orders OrderReader, renderer *Renderer, pdf PDFRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, orders: orders, renderer: renderer, pdf: pdf}
}

// MountRoutes registers receipt endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/{id}", h.PDF)
		r.Get("/{id}/html", h.HTML)
	})
}

// HTML renders the printable receipt page.
func (h *Handler) HTML(w http.ResponseWriter, r *http.Request) {
	details, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, details); err != nil {
		h.fail(w, "render receipt", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// PDF renders the receipt through the PDF service.
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF unavailable", ErrRendererUnavailable.Error())
		return
	}
	details, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, details); err != nil {
		h.fail(w, "render receipt", err)
		return
	}
	doc, err := h.pdf.RenderHTML(r.Context(), buf.Bytes())
	if err != nil {
		if errors.Is(err, ErrRendererUnavailable) {
			httpx.Problem(w, http.StatusServiceUnavailable, "PDF unavailable", err.Error())
			return
		}
		h.logger.Error("pdf render failed", slog.String("order", details.OrderNumber), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF render failed", "pdf service error")
		return
	}
	httpx.Attachment(w, Filename(details.OrderNumber), "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// Filename names the downloaded receipt.
func Filename(orderNumber string) string {
	return "nota-" + orderNumber + ".pdf"
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*orders.Details, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid order id", err.Error())
		return nil, false
	}
	details, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "load order", err)
		return nil, false
	}
	return details, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, httpx.ErrNotFound) {
		h.logger.Error("invoice failed", slog.String("op", op), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
