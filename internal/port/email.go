package port

import "context"

// EmailAttachment is a rendered document attached to an outgoing email.
type EmailAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailSender defines the contract for sending invoice emails.
type EmailSender interface {
	SendInvoiceEmail(ctx context.Context, to, subject, htmlBody, textBody string, attachment *EmailAttachment) error
}
