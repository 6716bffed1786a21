package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/orders"
	"github.com/laundrydesk/laundrydesk/internal/reports"
)

const (
	sheetSummary  = "Ringkasan"
	sheetPayments = "Pembayaran"
	sheetExpenses = "Pengeluaran"

	// built-in "#,##0"
	numFmtThousands = 3
)

// WriteSummaryWorkbook renders the financial report for the window as an
// XLSX workbook with summary, payment and expense sheets.
func WriteSummaryWorkbook(w io.Writer, payments []orders.PaymentRecord, spent []expenses.Expense, r reports.Range) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetPayments, sheetExpenses} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtThousands})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	summary := [][]any{toRow(summaryHeader)}
	for _, row := range summaryRows(payments, spent, r) {
		summary = append(summary, []any{row[0], row[1]})
	}
	if err := writeSheet(f, sheetSummary, summary); err != nil {
		return err
	}

	paymentRows := [][]any{toRow(paymentHeader)}
	for _, p := range payments {
		if !r.Contains(p.PaymentDate) {
			continue
		}
		paymentRows = append(paymentRows, []any{
			p.PaymentDate.Format("2006-01-02"),
			orDash(p.OrderNumber),
			orDash(p.CustomerName),
			p.Amount.InexactFloat64(),
			p.PaymentMethod.Label(),
			string(p.Status),
			orMissing(p.Notes),
		})
	}
	if err := writeSheet(f, sheetPayments, paymentRows); err != nil {
		return err
	}

	expenseRows := [][]any{toRow(expenseHeader)}
	for _, e := range spent {
		if !r.Contains(e.ExpenseDate) {
			continue
		}
		expenseRows = append(expenseRows, []any{
			e.ExpenseDate.Format("2006-01-02"),
			e.Category.Label(),
			e.Description,
			e.Amount.InexactFloat64(),
			orMissing(e.PaymentMethod),
			orMissing(e.Notes),
		})
	}
	if err := writeSheet(f, sheetExpenses, expenseRows); err != nil {
		return err
	}

	for _, name := range []string{sheetSummary, sheetPayments, sheetExpenses} {
		if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
			return fmt.Errorf("style %s: %w", name, err)
		}
		if err := f.SetColWidth(name, "A", "G", 20); err != nil {
			return fmt.Errorf("width %s: %w", name, err)
		}
	}
	if len(paymentRows) > 1 {
		if err := f.SetCellStyle(sheetPayments, "D2", fmt.Sprintf("D%d", len(paymentRows)), money); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}
	if len(expenseRows) > 1 {
		if err := f.SetCellStyle(sheetExpenses, "D2", fmt.Sprintf("D%d", len(expenseRows)), money); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toRow(values []string) []any {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
