package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billora/internal/domain"
	"billora/internal/port"
)

// MockRenderer is a mock implementation of port.DocumentRenderer.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderInvoice(ctx context.Context, view *domain.InvoiceView, company *domain.CompanySettings) (*port.RenderedDocument, error) {
	args := m.Called(ctx, view, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RenderedDocument), args.Error(1)
}
