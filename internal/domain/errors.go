package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound                 = errors.New("resource not found")
	ErrClientNotFound           = errors.New("client not found")
	ErrInvoiceNotFound          = errors.New("invoice not found")
	ErrScheduleNotFound         = errors.New("payment schedule not found")
	ErrPaymentNotFound          = errors.New("payment not found")
	ErrDuplicateInvoiceNumber   = errors.New("invoice number already exists")
	ErrScheduleSumMismatch      = errors.New("schedule amounts do not sum to invoice total")
	ErrScheduleEntryHasPayments = errors.New("schedule entry has recorded payments and cannot be removed")
	ErrScheduleFullyPaid        = errors.New("payment schedule is already fully paid")
	ErrStorage                  = errors.New("attachment storage operation failed")
)

// ValidationError carries field-level validation messages. It is never
// partially applied: a mutation that fails validation changes nothing.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// OverpaymentError is returned when a payment would push a schedule entry's
// cumulative payments past its fixed amount. Remaining is what the entry can
// still accept and is included in the message for user display.
type OverpaymentError struct {
	ScheduleID string
	Remaining  decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment amount cannot exceed remaining amount of %s", e.Remaining.StringFixed(2))
}
