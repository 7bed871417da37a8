package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billora/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendInvoiceEmail(ctx context.Context, to, subject, htmlBody, textBody string, attachment *port.EmailAttachment) error {
	args := m.Called(ctx, to, subject, htmlBody, textBody, attachment)
	return args.Error(0)
}
