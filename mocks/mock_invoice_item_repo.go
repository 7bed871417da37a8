package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billora/internal/domain"
)

// MockInvoiceItemRepo is a mock implementation of port.InvoiceItemRepository.
type MockInvoiceItemRepo struct {
	mock.Mock
}

func (m *MockInvoiceItemRepo) CreateBatch(ctx context.Context, items []domain.InvoiceItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockInvoiceItemRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceItem), args.Error(1)
}

func (m *MockInvoiceItemRepo) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}
