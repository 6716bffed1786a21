package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laundrydesk/laundrydesk/internal/notify"
	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

// Notifier composes customer messages and queues them for delivery.
type Notifier interface {
	Compose(kind notify.Kind, o notify.Order) (notify.Message, error)
	Dispatch(ctx context.Context, msg notify.Message) (bool, error)
}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	notifier  Notifier
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, notifier Notifier) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, notifier: notifier, validator: httpx.NewValidator()}
}

type listResponse struct {
	Data  []Details `json:"data"`
	Total int       `json:"total"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := httpx.DateRange(q)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter := ListFilter{Status: Status(q.Get("status")), From: from, To: to}
	if raw := q.Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid customer ID", err.Error())
			return
		}
		filter.CustomerID = &id
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list orders failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Details{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: items, Total: len(items)})
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := httpx.IntParam(r.URL.Query(), "limit", 5, 50)
	items, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("recent orders failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Summary{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create order failed", slog.Any("error", err), slog.String("customer_id", req.CustomerID.String()))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("order created", slog.String("order_number", order.OrderNumber), slog.String("total", order.TotalAmount.String()))
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete order failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

type notificationResponse struct {
	Kind   notify.Kind `json:"kind"`
	Phone  string      `json:"phone"`
	Text   string      `json:"text"`
	Link   string      `json:"link"`
	Queued bool        `json:"queued"`
}

type statusResponse struct {
	Order        *Details              `json:"order"`
	Notification *notificationResponse `json:"notification,omitempty"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update order status failed", slog.Any("error", err), slog.String("id", id.String()), slog.String("status", string(req.Status)))
		httpx.RespondError(w, err)
		return
	}

	resp := statusResponse{Order: order}
	if req.Notify && req.Status == StatusReady {
		resp.Notification = h.notify(r.Context(), notify.KindPickupReminder, order, true)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// InvoiceMessage composes a message for the order and optionally queues it
// when send=true. The default template is the invoice.
func (h *Handler) InvoiceMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}
	kind := notify.KindInvoice
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind = notify.Kind(raw)
	}
	if !kind.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Invalid message kind", string(kind))
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	note := h.notify(r.Context(), kind, order, r.URL.Query().Get("send") == "true")
	if note == nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Message unavailable", "customer phone number is not usable")
		return
	}
	httpx.JSON(w, http.StatusOK, note)
}

// notify never fails the request; the status change has already committed.
func (h *Handler) notify(ctx context.Context, kind notify.Kind, order *Details, send bool) *notificationResponse {
	if h.notifier == nil {
		return nil
	}
	msg, err := h.notifier.Compose(kind, notifyOrder(order))
	if err != nil {
		h.logger.Warn("compose notification failed", slog.Any("error", err), slog.String("order_number", order.OrderNumber))
		return nil
	}
	out := &notificationResponse{Kind: msg.Kind, Phone: msg.Phone, Text: msg.Text, Link: msg.Link}
	if send {
		queued, err := h.notifier.Dispatch(ctx, msg)
		if err != nil {
			h.logger.Warn("dispatch notification failed", slog.Any("error", err), slog.String("order_number", order.OrderNumber))
		}
		out.Queued = queued
	}
	return out
}

func notifyOrder(d *Details) notify.Order {
	lines := make([]notify.Line, 0, len(d.Items))
	for _, item := range d.Items {
		name := item.ServiceID.String()
		if item.Service != nil {
			name = item.Service.Name
		}
		lines = append(lines, notify.Line{Name: name, Quantity: item.Quantity, Price: item.UnitPrice})
	}
	return notify.Order{
		Number:        d.OrderNumber,
		CustomerName:  d.Customer.Name,
		CustomerPhone: d.Customer.Phone,
		StatusLabel:   d.Status.Label(),
		Total:         d.TotalAmount,
		PickupDate:    d.PickupDate,
		Lines:         lines,
	}
}

type paymentsResponse struct {
	Data  []PaymentRecord `json:"data"`
	Total decimal.Decimal `json:"total"`
}

func newPaymentsResponse(items []PaymentRecord) paymentsResponse {
	if items == nil {
		items = []PaymentRecord{}
	}
	total := decimal.Zero
	for _, p := range items {
		total = total.Add(p.Amount)
	}
	return paymentsResponse{Data: items, Total: total}
}

func (h *Handler) OrderPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}
	items, err := h.service.PaymentsForOrder(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newPaymentsResponse(items))
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.RecordPayment(r.Context(), id, req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.logger.Error("record payment failed", slog.Any("error", err), slog.String("order_id", id.String()), slog.String("amount", req.Amount.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := httpx.DateRange(q)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter := PaymentFilter{Method: PaymentMethod(q.Get("method")), From: from, To: to}
	if raw := q.Get("order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid order ID", err.Error())
			return
		}
		filter.OrderID = &id
	}
	items, err := h.service.ListPayments(r.Context(), filter)
	if err != nil {
		h.logger.Error("list payments failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newPaymentsResponse(items))
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid payment ID")
	if !ok {
		return
	}
	if err := h.service.DeletePayment(r.Context(), id); err != nil {
		h.logger.Error("delete payment failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func parseID(w http.ResponseWriter, r *http.Request, param, title string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, title, err.Error())
		return uuid.Nil, false
	}
	return id, true
}
