package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleSpec describes one requested installment when creating or editing
// an invoice. Amount wins over Percentage when both are set.
type ScheduleSpec struct {
	Description string
	Percentage  *decimal.Decimal
	Amount      *decimal.Decimal
	DueDate     time.Time
	Attachments []string
	Notes       string
}

// DefaultScheduleDescription is used for the auto-generated single entry.
const DefaultScheduleDescription = "Full Payment"

// scheduleSumTolerance is the rounding slack allowed per entry when checking
// that percentage-derived amounts sum to the invoice total (33.33% three
// ways of 100.00 legitimately loses a cent).
var scheduleSumTolerance = decimal.New(1, -2)

// BuildSchedule materializes schedule entries for an invoice.
//
// With no specs it produces exactly one entry for the full total. Otherwise
// each spec becomes an entry in input order with payment_number = index+1;
// an explicit amount is used verbatim, else amount = total * percentage/100.
// Entries must sum to total within the per-entry rounding tolerance.
func BuildSchedule(invoiceID uuid.UUID, total decimal.Decimal, invoiceDueDate time.Time, specs []ScheduleSpec) ([]PaymentScheduleEntry, error) {
	if len(specs) == 0 {
		pct := oneHundred
		return []PaymentScheduleEntry{{
			ID:            uuid.New(),
			InvoiceID:     invoiceID,
			PaymentNumber: 1,
			Description:   DefaultScheduleDescription,
			Percentage:    &pct,
			Amount:        MoneyRound(total),
			DueDate:       invoiceDueDate,
			Status:        ScheduleStatusPending,
			PaidAmount:    decimal.Zero,
		}}, nil
	}

	entries := make([]PaymentScheduleEntry, 0, len(specs))
	sum := decimal.Zero
	for i, spec := range specs {
		field := "payment_schedules." + strconv.Itoa(i)
		if spec.DueDate.IsZero() {
			return nil, NewValidationError(field+".due_date", "due date is required")
		}

		var amount decimal.Decimal
		switch {
		case spec.Amount != nil:
			amount = MoneyRound(*spec.Amount)
		case spec.Percentage != nil:
			amount = MoneyRound(total.Mul(*spec.Percentage).Div(oneHundred))
		default:
			return nil, NewValidationError(field+".amount", "amount or percentage is required")
		}
		if amount.IsNegative() {
			return nil, NewValidationError(field+".amount", "amount must not be negative")
		}
		if spec.Percentage != nil && (spec.Percentage.IsNegative() || spec.Percentage.GreaterThan(oneHundred)) {
			return nil, NewValidationError(field+".percentage", "percentage must be between 0 and 100")
		}

		entries = append(entries, PaymentScheduleEntry{
			ID:            uuid.New(),
			InvoiceID:     invoiceID,
			PaymentNumber: i + 1,
			Description:   spec.Description,
			Percentage:    spec.Percentage,
			Amount:        amount,
			DueDate:       spec.DueDate,
			Status:        ScheduleStatusPending,
			PaidAmount:    decimal.Zero,
			Attachments:   spec.Attachments,
			Notes:         spec.Notes,
		})
		sum = sum.Add(amount)
	}

	tolerance := scheduleSumTolerance.Mul(decimal.NewFromInt(int64(len(specs))))
	if sum.Sub(MoneyRound(total)).Abs().GreaterThan(tolerance) {
		return nil, ErrScheduleSumMismatch
	}
	return entries, nil
}

// DeriveEntryStatus computes a schedule entry's status from the live sum of
// its payments.
func DeriveEntryStatus(entryAmount, totalPaid decimal.Decimal) ScheduleStatus {
	switch {
	case totalPaid.GreaterThanOrEqual(entryAmount):
		return ScheduleStatusPaid
	case totalPaid.IsPositive():
		return ScheduleStatusPartial
	default:
		return ScheduleStatusPending
	}
}

// DeriveInvoiceStatus computes an invoice's payment status from the statuses
// of all its schedule entries: paid iff every entry is paid, partially_paid
// iff any entry is partial or paid, otherwise sent.
func DeriveInvoiceStatus(entries []PaymentScheduleEntry) InvoiceStatus {
	if len(entries) == 0 {
		return InvoiceStatusSent
	}
	allPaid := true
	anyProgress := false
	for _, e := range entries {
		if e.Status != ScheduleStatusPaid {
			allPaid = false
		}
		if e.Status == ScheduleStatusPaid || e.Status == ScheduleStatusPartial {
			anyProgress = true
		}
	}
	switch {
	case allPaid:
		return InvoiceStatusPaid
	case anyProgress:
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusSent
	}
}

// BalanceDue floors total minus paid at zero.
func BalanceDue(total, paid decimal.Decimal) decimal.Decimal {
	bal := total.Sub(paid)
	if bal.IsNegative() {
		return decimal.Zero
	}
	return bal
}
