package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client represents a billable customer.
type Client struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	Address     string    `db:"address" json:"address"`
	City        string    `db:"city" json:"city"`
	State       string    `db:"state" json:"state"`
	PostalCode  string    `db:"postal_code" json:"postal_code"`
	Country     string    `db:"country" json:"country"`
	Notes       string    `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Invoice is the aggregate root tying line items, schedule entries, and
// derived money totals together. Monetary caches (paid_amount, balance_due)
// are refreshed from the payment ledger transactionally; the ledger is the
// source of truth.
type Invoice struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	InvoiceNumber  string          `db:"invoice_number" json:"invoice_number"`
	ClientID       uuid.UUID       `db:"client_id" json:"client_id"`
	ProjectName    string          `db:"project_name" json:"project_name"`
	PONumber       string          `db:"po_number" json:"po_number"`
	IssueDate      time.Time       `db:"issue_date" json:"issue_date"`
	DueDate        time.Time       `db:"due_date" json:"due_date"`
	Status         InvoiceStatus   `db:"status" json:"status"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxRate        decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaidAmount     decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	BalanceDue     decimal.Decimal `db:"balance_due" json:"balance_due"`
	Notes          string          `db:"notes" json:"notes"`
	Terms          string          `db:"terms" json:"terms"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// InvoiceItem is one line on an invoice. Items have no independent
// lifecycle: edits replace the full set.
type InvoiceItem struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	InvoiceID       uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Position        int             `db:"position" json:"position"`
	Description     string          `db:"description" json:"description"`
	Unit            string          `db:"unit" json:"unit"`
	Quantity        decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	VATRate         decimal.Decimal `db:"vat_rate" json:"vat_rate"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"total_price"`
	TotalPriceWTax  decimal.Decimal `db:"total_price_w_tax" json:"total_price_w_tax"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// PaymentScheduleEntry is one installment of an invoice's total, due by a
// specific date and independently trackable for payment.
type PaymentScheduleEntry struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	InvoiceID     uuid.UUID        `db:"invoice_id" json:"invoice_id"`
	PaymentNumber int              `db:"payment_number" json:"payment_number"`
	Description   string           `db:"description" json:"description"`
	Percentage    *decimal.Decimal `db:"percentage" json:"percentage"`
	Amount        decimal.Decimal  `db:"amount" json:"amount"`
	DueDate       time.Time        `db:"due_date" json:"due_date"`
	Status        ScheduleStatus   `db:"status" json:"status"`
	PaidAmount    decimal.Decimal  `db:"paid_amount" json:"paid_amount"`
	PaidDate      *time.Time       `db:"paid_date" json:"paid_date"`
	Attachments   StringSlice      `db:"attachments" json:"attachments"`
	Notes         string           `db:"notes" json:"notes"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// RemainingAmount is the entry's fixed amount minus its cached paid amount,
// floored at zero.
func (e *PaymentScheduleEntry) RemainingAmount() decimal.Decimal {
	return BalanceDue(e.Amount, e.PaidAmount)
}

// IsOverdue reports whether the entry is unpaid past its due date. Overdue
// is derived at read time and never stored by reconciliation.
func (e *PaymentScheduleEntry) IsOverdue(now time.Time) bool {
	return e.Status == ScheduleStatusPending && e.DueDate.Before(now)
}

// IsOverdue reports whether the invoice is past its due date with payment
// still outstanding. Derived at read time, like entry overdue.
func (i *Invoice) IsOverdue(now time.Time) bool {
	switch i.Status {
	case InvoiceStatusPending, InvoiceStatusSent, InvoiceStatusPartiallyPaid:
		return i.DueDate.Before(now)
	}
	return false
}

// Payment is one recorded payment against a schedule entry.
type Payment struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	InvoiceID     uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	ScheduleID    uuid.UUID       `db:"schedule_id" json:"schedule_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate   time.Time       `db:"payment_date" json:"payment_date"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	Notes         string          `db:"notes" json:"notes"`
	Status        PaymentStatus   `db:"status" json:"status"`
	ReceiptPath   string          `db:"receipt_path" json:"receipt_path"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// InvoiceView is the read model combining an invoice with its client, line
// items, schedule entries, and payments. Exports, document rendering, and
// email consume it.
type InvoiceView struct {
	Invoice  Invoice                `json:"invoice"`
	Client   Client                 `json:"client"`
	Items    []InvoiceItem          `json:"items"`
	Schedule []PaymentScheduleEntry `json:"schedule"`
	Payments []Payment              `json:"payments"`
}

// ApplyOverdue stamps the read-time overdue status onto the view's invoice
// and schedule entries. Stored statuses are left untouched; only this copy
// of the data changes.
func (v *InvoiceView) ApplyOverdue(now time.Time) {
	for i := range v.Schedule {
		if v.Schedule[i].IsOverdue(now) {
			v.Schedule[i].Status = ScheduleStatusOverdue
		}
	}
	if v.Invoice.IsOverdue(now) {
		v.Invoice.Status = InvoiceStatusOverdue
	}
}

// CompanySettings holds the issuing company's profile. It is loaded from
// configuration and injected into collaborators that need it; core logic
// never fetches it from storage.
type CompanySettings struct {
	Name          string
	Address       string
	Email         string
	Phone         string
	TaxNumber     string
	BankDetails   string
	InvoicePrefix string
}

// StringSlice is a []string stored as a JSON array column.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", src)
	}
}
