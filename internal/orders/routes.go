package orders

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/recent", h.Recent)
		r.Get("/{id}", h.Show)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Get("/{id}/payments", h.OrderPayments)
		r.Post("/{id}/payments", h.RecordPayment)
		r.Get("/{id}/invoice-message", h.InvoiceMessage)
	})
	r.Get("/payments", h.ListPayments)
	r.Delete("/payments/{id}", h.DeletePayment)
}
