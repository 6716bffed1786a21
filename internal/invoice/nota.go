// Package invoice renders printable order receipts (nota) as HTML and PDF.
package invoice

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/laundrydesk/laundrydesk/internal/notify"
	"github.com/laundrydesk/laundrydesk/internal/orders"
	"github.com/laundrydesk/laundrydesk/web"
)

const notaTemplate = "templates/invoice/nota.html"

// Business is printed in the receipt header and signature.
type Business struct {
	Name    string
	Address string
	Phone   string
}

type notaView struct {
	Business  Business
	Order     *orders.Details
	PrintedAt time.Time
}

// Renderer executes the receipt template.
type Renderer struct {
	tmpl     *template.Template
	business Business
	now      func() time.Time
}

// NewRenderer parses the embedded receipt template.
func NewRenderer(business Business) (*Renderer, error) {
	tmpl, err := template.New("nota.html").Funcs(template.FuncMap{
		"date":        formatDate,
		"rupiah":      notify.FormatRupiah,
		"qty":         notify.FormatQuantity,
		"phone":       notify.FormatPhone,
		"serviceName": serviceName,
		"inc":         func(i int) int { return i + 1 },
	}).ParseFS(web.Templates, notaTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	return &Renderer{tmpl: tmpl, business: business, now: time.Now}, nil
}

// Render writes the receipt for d as HTML.
func (r *Renderer) Render(w io.Writer, d *orders.Details) error {
	return r.tmpl.Execute(w, notaView{Business: r.business, Order: d, PrintedAt: r.now()})
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return notify.FormatDate(t)
	case *time.Time:
		if t == nil {
			return "-"
		}
		return notify.FormatDate(*t)
	default:
		return "-"
	}
}

func serviceName(item orders.Item) string {
	if item.Service == nil || item.Service.Name == "" {
		return "Unknown Service"
	}
	return item.Service.Name
}
