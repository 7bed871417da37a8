// Package html renders invoices as self-contained printable HTML documents.
package html

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"billora/internal/domain"
	"billora/internal/port"
)

type htmlRenderer struct {
	tmpl *template.Template
}

// NewRenderer creates a DocumentRenderer that emits a standalone HTML page.
func NewRenderer() (port.DocumentRenderer, error) {
	tmpl, err := template.New("invoice").
		Funcs(template.FuncMap{"unitLabel": domain.UnitLabel}).
		Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing invoice template: %w", err)
	}
	return &htmlRenderer{tmpl: tmpl}, nil
}

type templateData struct {
	View    *domain.InvoiceView
	Company *domain.CompanySettings
}

func (r *htmlRenderer) RenderInvoice(_ context.Context, view *domain.InvoiceView, company *domain.CompanySettings) (*port.RenderedDocument, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, templateData{View: view, Company: company}); err != nil {
		return nil, fmt.Errorf("rendering invoice %s: %w", view.Invoice.InvoiceNumber, err)
	}
	return &port.RenderedDocument{
		Data:        buf.Bytes(),
		ContentType: "text/html; charset=utf-8",
		FileExt:     ".html",
	}, nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Invoice {{.View.Invoice.InvoiceNumber}}</title>
<style>
body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 24px; color: #333; }
table { width: 100%; border-collapse: collapse; margin: 16px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background: #f5f5f5; }
.num { text-align: right; }
.totals td { border: none; }
</style>
</head>
<body>
<h1>Invoice {{.View.Invoice.InvoiceNumber}}</h1>
<p><strong>{{.Company.Name}}</strong><br>{{.Company.Address}}</p>
<p>Bill to:<br><strong>{{.View.Client.Name}}</strong>{{if .View.Client.CompanyName}}<br>{{.View.Client.CompanyName}}{{end}}{{if .View.Client.Address}}<br>{{.View.Client.Address}}{{end}}</p>
<p>Issue date: {{.View.Invoice.IssueDate.Format "2006-01-02"}}<br>
Due date: {{.View.Invoice.DueDate.Format "2006-01-02"}}<br>
Status: {{.View.Invoice.Status}}</p>
<table>
<tr><th>#</th><th>Description</th><th>Unit</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">VAT %</th><th class="num">Total</th></tr>
{{range .View.Items}}
<tr><td>{{.Position}}</td><td>{{.Description}}</td><td>{{unitLabel .Unit}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice.StringFixed 2}}</td><td class="num">{{.VATRate.StringFixed 2}}</td><td class="num">{{.TotalPriceWTax.StringFixed 2}}</td></tr>
{{end}}
</table>
<table class="totals">
<tr><td>Subtotal</td><td class="num">{{.View.Invoice.Subtotal.StringFixed 2}}</td></tr>
<tr><td>Tax ({{.View.Invoice.TaxRate.StringFixed 2}}%)</td><td class="num">{{.View.Invoice.TaxAmount.StringFixed 2}}</td></tr>
<tr><td><strong>Total</strong></td><td class="num"><strong>{{.View.Invoice.TotalAmount.StringFixed 2}}</strong></td></tr>
<tr><td>Paid</td><td class="num">{{.View.Invoice.PaidAmount.StringFixed 2}}</td></tr>
<tr><td><strong>Balance due</strong></td><td class="num"><strong>{{.View.Invoice.BalanceDue.StringFixed 2}}</strong></td></tr>
</table>
{{if .View.Schedule}}
<h2>Payment schedule</h2>
<table>
<tr><th>#</th><th>Description</th><th>Due</th><th class="num">Amount</th><th class="num">Paid</th><th>Status</th></tr>
{{range .View.Schedule}}
<tr><td>{{.PaymentNumber}}</td><td>{{.Description}}</td><td>{{.DueDate.Format "2006-01-02"}}</td><td class="num">{{.Amount.StringFixed 2}}</td><td class="num">{{.PaidAmount.StringFixed 2}}</td><td>{{.Status}}</td></tr>
{{end}}
</table>
{{end}}
{{if .View.Invoice.Notes}}<p>{{.View.Invoice.Notes}}</p>{{end}}
{{if .View.Invoice.Terms}}<p><em>{{.View.Invoice.Terms}}</em></p>{{end}}
</body>
</html>`
