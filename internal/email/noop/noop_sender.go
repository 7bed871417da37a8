package noop

import (
	"context"
	"log"

	"billora/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendInvoiceEmail(_ context.Context, to, subject, _, _ string, attachment *port.EmailAttachment) error {
	if attachment != nil {
		log.Printf("[NOOP EMAIL] to=%s subject=%q attachment=%s (%d bytes)", to, subject, attachment.Filename, len(attachment.Data))
		return nil
	}
	log.Printf("[NOOP EMAIL] to=%s subject=%q", to, subject)
	return nil
}
