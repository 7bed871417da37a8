package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"billora/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (15 columns).
var columns = []string{
	"Invoice Number",
	"Client",
	"Company",
	"Project",
	"PO Number",
	"Issue Date",
	"Due Date",
	"Status",
	"Subtotal",
	"Tax Rate",
	"Tax Amount",
	"Total",
	"Paid",
	"Balance Due",
	"Line Item Count",
}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices converts a batch of invoice views to CSV rows and writes them.
func (w *Writer) WriteInvoices(views []domain.InvoiceView) error {
	for i := range views {
		if err := w.csv.Write(invoiceToRow(&views[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func invoiceToRow(v *domain.InvoiceView) []string {
	row := make([]string, len(columns))
	row[0] = v.Invoice.InvoiceNumber
	row[1] = v.Client.Name
	row[2] = v.Client.CompanyName
	row[3] = v.Invoice.ProjectName
	row[4] = v.Invoice.PONumber
	row[5] = formatDate(v.Invoice.IssueDate)
	row[6] = formatDate(v.Invoice.DueDate)
	row[7] = string(v.Invoice.Status)
	row[8] = formatMoney(v.Invoice.Subtotal)
	row[9] = v.Invoice.TaxRate.StringFixed(2)
	row[10] = formatMoney(v.Invoice.TaxAmount)
	row[11] = formatMoney(v.Invoice.TotalAmount)
	row[12] = formatMoney(v.Invoice.PaidAmount)
	row[13] = formatMoney(v.Invoice.BalanceDue)
	row[14] = strconv.Itoa(len(v.Items))
	return row
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", SanitizeFilename(name), now.Format("2006-01-02"))
}
