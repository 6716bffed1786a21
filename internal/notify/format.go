package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatNumber groups thousands the Indonesian way: 25000 -> 25.000.
func FormatNumber(d decimal.Decimal) string {
	return idPrinter.Sprintf("%d", d.Round(0).IntPart())
}

// FormatRupiah renders an amount as "Rp 25.000" without decimals.
func FormatRupiah(d decimal.Decimal) string {
	return "Rp " + FormatNumber(d)
}

// FormatQuantity uses a decimal comma for fractional quantities.
func FormatQuantity(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1)
}

var idMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDate renders a date in long Indonesian form: 15 Maret 2024.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), idMonths[t.Month()-1], t.Year())
}

// FormatPhone groups a local number for display: 081234567890 -> 0812-3456-7890.
// Numbers shorter than ten digits are returned unchanged.
func FormatPhone(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) < 10 {
		return raw
	}
	return digits[:4] + "-" + digits[4:8] + "-" + digits[8:]
}
