// Package export renders business data as CSV, XLSX and JSON backup files.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laundrydesk/laundrydesk/internal/customers"
	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/notify"
	"github.com/laundrydesk/laundrydesk/internal/orders"
	"github.com/laundrydesk/laundrydesk/internal/reports"
)

const missing = "-"

var (
	customerHeader = []string{"Nama", "Telepon", "Email", "Alamat", "Kota", "Kode Pos", "Catatan Khusus", "Tanggal Bergabung"}
	orderHeader    = []string{"No. Order", "Tanggal", "Pelanggan", "Total", "Dibayar", "Sisa", "Status", "Items", "Catatan"}
	paymentHeader  = []string{"Tanggal", "No. Order", "Pelanggan", "Jumlah", "Metode", "Status", "Catatan"}
	expenseHeader  = []string{"Tanggal", "Kategori", "Deskripsi", "Jumlah", "Metode Pembayaran", "Catatan"}
	summaryHeader  = []string{"Keterangan", "Jumlah"}
)

// WriteCustomersCSV emits the customer directory.
func WriteCustomersCSV(w io.Writer, list []customers.Customer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(customerHeader); err != nil {
		return err
	}
	for _, c := range list {
		if err := writer.Write([]string{
			c.Name,
			c.Phone,
			orMissing(c.Email),
			orMissing(c.Address),
			orMissing(c.City),
			orMissing(c.PostalCode),
			orMissing(c.Notes),
			notify.FormatDate(c.CreatedAt),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteOrdersCSV emits one row per order with its balance and item count.
func WriteOrdersCSV(w io.Writer, list []orders.Details) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(orderHeader); err != nil {
		return err
	}
	for _, o := range list {
		customer := o.Customer.Name
		if customer == "" {
			customer = missing
		}
		if err := writer.Write([]string{
			o.OrderNumber,
			notify.FormatDate(o.OrderDate),
			customer,
			o.TotalAmount.String(),
			o.PaidAmount.String(),
			o.Remaining().String(),
			string(o.Status),
			strconv.Itoa(len(o.Items)),
			orMissing(o.Notes),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePaymentsCSV emits the payment ledger.
func WritePaymentsCSV(w io.Writer, list []orders.PaymentRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(paymentHeader); err != nil {
		return err
	}
	for _, p := range list {
		if err := writer.Write([]string{
			notify.FormatDate(p.PaymentDate),
			orDash(p.OrderNumber),
			orDash(p.CustomerName),
			p.Amount.String(),
			p.PaymentMethod.Label(),
			string(p.Status),
			orMissing(p.Notes),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteExpensesCSV emits the expense ledger.
func WriteExpensesCSV(w io.Writer, list []expenses.Expense) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(expenseHeader); err != nil {
		return err
	}
	for _, e := range list {
		if err := writer.Write([]string{
			notify.FormatDate(e.ExpenseDate),
			e.Category.Label(),
			e.Description,
			e.Amount.String(),
			orMissing(e.PaymentMethod),
			orMissing(e.Notes),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSummaryCSV emits the financial summary for the window: totals first,
// then revenue per payment method and spend per expense category.
func WriteSummaryCSV(w io.Writer, payments []orders.PaymentRecord, spent []expenses.Expense, r reports.Range) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(summaryHeader); err != nil {
		return err
	}
	for _, record := range summaryRows(payments, spent, r) {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func summaryRows(payments []orders.PaymentRecord, spent []expenses.Expense, r reports.Range) [][]string {
	totals := reports.Summarize(payments, spent, r)
	rows := [][]string{
		{"Total Pendapatan", notify.FormatRupiah(totals.Revenue)},
		{"Total Pengeluaran", notify.FormatRupiah(totals.Expenses)},
		{"Keuntungan Bersih", formatSigned(totals.Profit)},
		{"", ""},
	}
	for _, share := range reports.PaymentMethodDistribution(completed(payments), r) {
		rows = append(rows, []string{"Pendapatan (" + share.Label + ")", notify.FormatRupiah(share.Amount)})
	}
	rows = append(rows, []string{"", ""})
	for _, share := range reports.ExpensesByCategory(spent, r) {
		rows = append(rows, []string{"Pengeluaran (" + share.Label + ")", notify.FormatRupiah(share.Amount)})
	}
	return rows
}

func completed(payments []orders.PaymentRecord) []orders.PaymentRecord {
	out := make([]orders.PaymentRecord, 0, len(payments))
	for _, p := range payments {
		if p.Status == orders.PaymentCompleted {
			out = append(out, p)
		}
	}
	return out
}

// CSVFilename returns prefix_YYYY-MM-DD.csv.
func CSVFilename(prefix string, now time.Time) string {
	return prefix + "_" + now.Format(time.DateOnly) + ".csv"
}

// SummaryFilename names the financial report after its window, or after
// today when the window is open on either side.
func SummaryFilename(r reports.Range, now time.Time, ext string) string {
	if r.From != nil && r.To != nil {
		return "laporan_keuangan_" + r.From.Format(time.DateOnly) + "_to_" + r.To.Format(time.DateOnly) + ext
	}
	return "laporan_keuangan_" + now.Format(time.DateOnly) + ext
}

func formatSigned(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + notify.FormatRupiah(d.Abs())
	}
	return notify.FormatRupiah(d)
}

func orMissing(v *string) string {
	if v == nil {
		return missing
	}
	return orDash(*v)
}

func orDash(v string) string {
	if v == "" {
		return missing
	}
	return v
}
