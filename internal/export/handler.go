package export

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/orders"
	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
	"github.com/laundrydesk/laundrydesk/internal/reports"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeJSON = "application/json"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler serves file downloads.
type Handler struct {
	logger  *slog.Logger
	service *Service
	bufPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the export HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, service: service, now: time.Now}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// MountRoutes registers export endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/export", func(r chi.Router) {
		r.Get("/customers.csv", h.Customers)
		r.Get("/orders.csv", h.Orders)
		r.Get("/payments.csv", h.Payments)
		r.Get("/expenses.csv", h.Expenses)
		r.Get("/summary.csv", h.SummaryCSV)
		r.Get("/summary.xlsx", h.SummaryXLSX)
		r.Get("/backup.json", h.Backup)
	})
}

func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.customers.ListAll(r.Context())
	if err != nil {
		h.fail(w, "load customers", err)
		return
	}
	h.stream(w, CSVFilename("pelanggan", h.now()), contentTypeCSV, func(buf io.Writer) error {
		return WriteCustomersCSV(buf, list)
	})
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	from, to, err := httpx.DateRange(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.orders.List(r.Context(), orders.ListFilter{
		Status: orders.Status(r.URL.Query().Get("status")),
		From:   from,
		To:     to,
	})
	if err != nil {
		h.fail(w, "load orders", err)
		return
	}
	h.stream(w, CSVFilename("pesanan", h.now()), contentTypeCSV, func(buf io.Writer) error {
		return WriteOrdersCSV(buf, list)
	})
}

func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	from, to, err := httpx.DateRange(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.orders.ListPayments(r.Context(), orders.PaymentFilter{From: from, To: to})
	if err != nil {
		h.fail(w, "load payments", err)
		return
	}
	h.stream(w, CSVFilename("pembayaran", h.now()), contentTypeCSV, func(buf io.Writer) error {
		return WritePaymentsCSV(buf, list)
	})
}

func (h *Handler) Expenses(w http.ResponseWriter, r *http.Request) {
	from, to, err := httpx.DateRange(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.expenses.List(r.Context(), expenses.Filter{
		Category: expenses.Category(r.URL.Query().Get("category")),
		From:     from,
		To:       to,
	})
	if err != nil {
		h.fail(w, "load expenses", err)
		return
	}
	h.stream(w, CSVFilename("pengeluaran", h.now()), contentTypeCSV, func(buf io.Writer) error {
		return WriteExpensesCSV(buf, list)
	})
}

func (h *Handler) SummaryCSV(w http.ResponseWriter, r *http.Request) {
	rng, payments, spent, ok := h.loadLedger(w, r)
	if !ok {
		return
	}
	h.stream(w, SummaryFilename(rng, h.now(), ".csv"), contentTypeCSV, func(buf io.Writer) error {
		return WriteSummaryCSV(buf, payments, spent, rng)
	})
}

func (h *Handler) SummaryXLSX(w http.ResponseWriter, r *http.Request) {
	rng, payments, spent, ok := h.loadLedger(w, r)
	if !ok {
		return
	}
	h.stream(w, SummaryFilename(rng, h.now(), ".xlsx"), contentTypeXLSX, func(buf io.Writer) error {
		return WriteSummaryWorkbook(buf, payments, spent, rng)
	})
}

func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.fail(w, "build backup", err)
		return
	}
	h.stream(w, BackupFilename(h.now()), contentTypeJSON, func(buf io.Writer) error {
		return WriteBackup(buf, snap)
	})
}

func (h *Handler) loadLedger(w http.ResponseWriter, r *http.Request) (reports.Range, []orders.PaymentRecord, []expenses.Expense, bool) {
	from, to, err := httpx.DateRange(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return reports.Range{}, nil, nil, false
	}
	rng := reports.Range{From: from, To: to}
	payments, err := h.service.orders.ListPayments(r.Context(), orders.PaymentFilter{From: from, To: to})
	if err != nil {
		h.fail(w, "load payments", err)
		return rng, nil, nil, false
	}
	spent, err := h.service.expenses.List(r.Context(), expenses.Filter{From: from, To: to})
	if err != nil {
		h.fail(w, "load expenses", err)
		return rng, nil, nil, false
	}
	return rng, payments, spent, true
}

// stream renders into a pooled buffer first so a render failure still
// produces a problem response instead of a truncated file.
func (h *Handler) stream(w http.ResponseWriter, filename, contentType string, render func(io.Writer) error) {
	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()
	if err := render(buf); err != nil {
		h.fail(w, "render "+filename, err)
		return
	}
	httpx.Attachment(w, filename, contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("stream export", slog.String("file", filename), slog.Any("error", err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("export failed", slog.String("op", op), slog.Any("error", err))
	httpx.RespondError(w, err)
}
