package port

import (
	"context"

	"billora/internal/domain"
)

// RenderedDocument is a printable rendering of an invoice.
type RenderedDocument struct {
	Data        []byte
	ContentType string
	FileExt     string
}

// DocumentRenderer turns an invoice read model into a printable document.
// Layout is a collaborator concern; the core only passes the view through.
type DocumentRenderer interface {
	RenderInvoice(ctx context.Context, view *domain.InvoiceView, company *domain.CompanySettings) (*RenderedDocument, error)
}
