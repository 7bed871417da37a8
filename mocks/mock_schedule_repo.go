package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"billora/internal/domain"
)

// MockScheduleRepo is a mock implementation of port.ScheduleRepository.
type MockScheduleRepo struct {
	mock.Mock
}

func (m *MockScheduleRepo) CreateBatch(ctx context.Context, entries []domain.PaymentScheduleEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentScheduleEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.PaymentScheduleEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.PaymentScheduleEntry, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepo) Update(ctx context.Context, entry *domain.PaymentScheduleEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockScheduleRepo) UpdateDerived(ctx context.Context, id uuid.UUID, status domain.ScheduleStatus, paid decimal.Decimal, paidDate *time.Time) error {
	args := m.Called(ctx, id, status, paid, paidDate)
	return args.Error(0)
}

func (m *MockScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
