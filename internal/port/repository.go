package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billora/internal/domain"
)

// TxManager runs a function inside a database transaction. The transaction
// travels in the context; repository methods called with that context join
// it. Ledger mutations and their reconciliation must share one transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ClientRepository defines the contract for client persistence.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, search string, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	ClientID *uuid.UUID
	Status   *domain.InvoiceStatus
	Search   string // matches invoice_number or client name
}

// InvoiceStats is the aggregate block shown with invoice listings.
type InvoiceStats struct {
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	DraftCount     int             `db:"draft_count" json:"draft_count"`
	PendingCount   int             `db:"pending_count" json:"pending_count"`
	OverdueCount   int             `db:"overdue_count" json:"overdue_count"`
	PaidCount      int             `db:"paid_count" json:"paid_count"`
	ReceivedAmount decimal.Decimal `db:"received_amount" json:"received_amount"`
	PendingAmount  decimal.Decimal `db:"pending_amount" json:"pending_amount"`
	OverdueAmount  decimal.Decimal `db:"overdue_amount" json:"overdue_amount"`
}

// InvoiceRepository defines the contract for invoice header persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error
	UpdatePaymentTotals(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus, paid, balance decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountCreatedInMonth(ctx context.Context, year int, month time.Month) (int, error)
	Stats(ctx context.Context) (*InvoiceStats, error)
}

// InvoiceItemRepository defines the contract for line item persistence.
// Items are replaced wholesale on invoice edit, never merged.
type InvoiceItemRepository interface {
	CreateBatch(ctx context.Context, items []domain.InvoiceItem) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error)
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

// ScheduleRepository defines the contract for payment schedule persistence.
type ScheduleRepository interface {
	CreateBatch(ctx context.Context, entries []domain.PaymentScheduleEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentScheduleEntry, error)
	// GetByIDForUpdate locks the entry row for the duration of the enclosing
	// transaction, serializing capacity checks per schedule entry.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.PaymentScheduleEntry, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.PaymentScheduleEntry, error)
	Update(ctx context.Context, entry *domain.PaymentScheduleEntry) error
	UpdateDerived(ctx context.Context, id uuid.UUID, status domain.ScheduleStatus, paid decimal.Decimal, paidDate *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the contract for the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	List(ctx context.Context, offset, limit int) ([]domain.Payment, int, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByInvoice removes the whole ledger for an invoice. Only the
	// invoice aggregate's own delete may call it.
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
	// SumBySchedule returns the live sum of payments against a schedule
	// entry, optionally excluding one payment (for capacity checks on edit;
	// pass uuid.Nil to exclude nothing).
	SumBySchedule(ctx context.Context, scheduleID, excludePaymentID uuid.UUID) (decimal.Decimal, error)
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	CountBySchedule(ctx context.Context, scheduleID uuid.UUID) (int, error)
}
