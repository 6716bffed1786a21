package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind names a message template.
type Kind string

const (
	KindInvoice        Kind = "invoice"
	KindPickupReminder Kind = "pickup_reminder"
	KindStatusUpdate   Kind = "status_update"
)

// Valid reports whether k names a known template.
func (k Kind) Valid() bool {
	switch k {
	case KindInvoice, KindPickupReminder, KindStatusUpdate:
		return true
	}
	return false
}

// Line is one priced entry on an invoice message.
type Line struct {
	Name     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// Order carries everything the templates need about an order.
type Order struct {
	Number        string
	CustomerName  string
	CustomerPhone string
	StatusLabel   string
	Total         decimal.Decimal
	PickupDate    *time.Time
	Lines         []Line
}

func greeting(name string) string {
	return fmt.Sprintf("Halo Bapak/Ibu *%s*,\n\n", name)
}

// InvoiceText lists the order lines and total.
func InvoiceText(o Order) string {
	var b strings.Builder
	b.WriteString(greeting(o.CustomerName))
	b.WriteString("Terima kasih telah menggunakan layanan kami!\n\n")
	b.WriteString("*Detail Pesanan*\n")
	fmt.Fprintf(&b, "No. Order: %s\n\n", o.Number)
	b.WriteString("*Item Pesanan:*\n")
	for i, l := range o.Lines {
		fmt.Fprintf(&b, "%d. %s - %s x %s\n", i+1, l.Name, FormatQuantity(l.Quantity), FormatRupiah(l.Price))
	}
	fmt.Fprintf(&b, "\n*Total: %s*\n\n", FormatRupiah(o.Total))
	if o.PickupDate != nil {
		fmt.Fprintf(&b, "Tanggal Pickup: %s\n\n", o.PickupDate.Format("02/01/2006"))
	}
	b.WriteString("Terima kasih!")
	return b.String()
}

// PickupReminderText tells the customer the laundry is ready.
func PickupReminderText(o Order) string {
	var b strings.Builder
	b.WriteString(greeting(o.CustomerName))
	fmt.Fprintf(&b, "Pesanan Anda (%s) sudah *selesai* dan siap diambil!\n\n", o.Number)
	b.WriteString("Silakan datang ke laundry kami untuk mengambil cucian Anda.\n\n")
	b.WriteString("Terima kasih!")
	return b.String()
}

// StatusUpdateText reports the current status label.
func StatusUpdateText(o Order) string {
	var b strings.Builder
	b.WriteString(greeting(o.CustomerName))
	b.WriteString("Update status pesanan Anda:\n\n")
	fmt.Fprintf(&b, "No. Order: %s\n", o.Number)
	fmt.Fprintf(&b, "Status: *%s*\n\n", o.StatusLabel)
	b.WriteString("Terima kasih!")
	return b.String()
}
