// Package report builds downloadable invoice reports.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"billora/internal/domain"
)

const (
	sheetName         = "Invoices"
	scheduleSheetName = "Payment Schedules"
)

var excelHeaders = []string{
	"Invoice Number", "Client", "Company", "Project", "PO Number",
	"Issue Date", "Due Date", "Status",
	"Subtotal", "Tax Rate", "Tax Amount", "Total", "Paid", "Balance Due",
}

var scheduleHeaders = []string{
	"Invoice Number", "Payment #", "Description",
	"Amount", "Paid", "Status", "Due Date", "Paid Date",
}

// WriteExcel renders invoice views as an xlsx workbook: a summary sheet plus
// a schedule detail sheet with one row per installment. Monetary cells carry
// a 2-decimal number format so spreadsheet software treats them as numbers
// rather than text.
func WriteExcel(w io.Writer, views []domain.InvoiceView) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("report.WriteExcel: %w", err)
	}
	f.SetActiveSheet(index)
	if _, err := f.NewSheet(scheduleSheetName); err != nil {
		return fmt.Errorf("report.WriteExcel: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("report.WriteExcel: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return fmt.Errorf("report.WriteExcel: %w", err)
	}
	moneyFormat := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return fmt.Errorf("report.WriteExcel: %w", err)
	}

	for col, h := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("report.WriteExcel: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "N1", headerStyle); err != nil {
		return fmt.Errorf("report.WriteExcel: %w", err)
	}

	for i := range views {
		v := &views[i]
		rowNum := i + 2
		sub, _ := v.Invoice.Subtotal.Float64()
		rate, _ := v.Invoice.TaxRate.Float64()
		tax, _ := v.Invoice.TaxAmount.Float64()
		total, _ := v.Invoice.TotalAmount.Float64()
		paid, _ := v.Invoice.PaidAmount.Float64()
		balance, _ := v.Invoice.BalanceDue.Float64()

		row := []interface{}{
			v.Invoice.InvoiceNumber,
			v.Client.Name,
			v.Client.CompanyName,
			v.Invoice.ProjectName,
			v.Invoice.PONumber,
			v.Invoice.IssueDate.Format("2006-01-02"),
			v.Invoice.DueDate.Format("2006-01-02"),
			string(v.Invoice.Status),
			sub, rate, tax, total, paid, balance,
		}
		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheetName, start, &row); err != nil {
			return fmt.Errorf("report.WriteExcel: %w", err)
		}
		first, _ := excelize.CoordinatesToCellName(9, rowNum)
		last, _ := excelize.CoordinatesToCellName(14, rowNum)
		if err := f.SetCellStyle(sheetName, first, last, moneyStyle); err != nil {
			return fmt.Errorf("report.WriteExcel: %w", err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "N", 16); err != nil {
		return fmt.Errorf("report.WriteExcel: %w", err)
	}

	if err := writeScheduleSheet(f, views, headerStyle, moneyStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report.WriteExcel: %w", err)
	}
	return nil
}

func writeScheduleSheet(f *excelize.File, views []domain.InvoiceView, headerStyle, moneyStyle int) error {
	for col, h := range scheduleHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(scheduleSheetName, cell, h); err != nil {
			return fmt.Errorf("report.writeScheduleSheet: %w", err)
		}
	}
	if err := f.SetCellStyle(scheduleSheetName, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("report.writeScheduleSheet: %w", err)
	}

	rowNum := 2
	for i := range views {
		v := &views[i]
		for j := range v.Schedule {
			e := &v.Schedule[j]
			amount, _ := e.Amount.Float64()
			paid, _ := e.PaidAmount.Float64()
			paidDate := ""
			if e.PaidDate != nil {
				paidDate = e.PaidDate.Format("2006-01-02")
			}

			row := []interface{}{
				v.Invoice.InvoiceNumber,
				e.PaymentNumber,
				e.Description,
				amount, paid,
				string(e.Status),
				e.DueDate.Format("2006-01-02"),
				paidDate,
			}
			start, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := f.SetSheetRow(scheduleSheetName, start, &row); err != nil {
				return fmt.Errorf("report.writeScheduleSheet: %w", err)
			}
			first, _ := excelize.CoordinatesToCellName(4, rowNum)
			last, _ := excelize.CoordinatesToCellName(5, rowNum)
			if err := f.SetCellStyle(scheduleSheetName, first, last, moneyStyle); err != nil {
				return fmt.Errorf("report.writeScheduleSheet: %w", err)
			}
			rowNum++
		}
	}

	if err := f.SetColWidth(scheduleSheetName, "A", "H", 16); err != nil {
		return fmt.Errorf("report.writeScheduleSheet: %w", err)
	}
	return nil
}

// ExcelFilename returns the download filename for an Excel export.
func ExcelFilename(now time.Time) string {
	return fmt.Sprintf("invoices_%s.xlsx", now.Format("2006-01-02"))
}
