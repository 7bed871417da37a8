package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pctPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func TestBuildSchedule_DefaultFullPayment(t *testing.T) {
	invoiceID := uuid.New()
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	entries, err := BuildSchedule(invoiceID, dec(t, "1236.25"), due, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, 1, e.PaymentNumber)
	assert.Equal(t, DefaultScheduleDescription, e.Description)
	require.NotNil(t, e.Percentage)
	assert.True(t, e.Percentage.Equal(dec(t, "100")))
	assert.True(t, e.Amount.Equal(dec(t, "1236.25")))
	assert.Equal(t, due, e.DueDate)
	assert.Equal(t, ScheduleStatusPending, e.Status)
	assert.True(t, e.PaidAmount.IsZero())
}

func TestBuildSchedule_DefaultCoversTotalExactly(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	totals := []string{
		"0.01", "0.99", "1.00", "9.99", "33.33", "66.67", "99.99",
		"100.00", "100.01", "123.45", "249.99", "333.33", "500.00",
		"999.99", "1000.00", "1075.00", "1155.63", "1236.25", "4999.95",
		"10000.01", "33333.33", "99999.99", "123456.78",
	}

	for _, total := range totals {
		t.Run(total, func(t *testing.T) {
			entries, err := BuildSchedule(uuid.New(), dec(t, total), due, nil)
			require.NoError(t, err)
			require.Len(t, entries, 1)

			sum := decimal.Zero
			for _, e := range entries {
				sum = sum.Add(e.Amount)
			}
			assert.True(t, sum.Equal(dec(t, total)), "sum %s != total %s", sum, total)
		})
	}
}

func TestBuildSchedule_PercentageSplit(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	specs := []ScheduleSpec{
		{Description: "Deposit", Percentage: pctPtr(t, "30"), DueDate: due},
		{Description: "Delivery", Percentage: pctPtr(t, "40"), DueDate: due.AddDate(0, 0, 14)},
		{Description: "Final", Percentage: pctPtr(t, "30"), DueDate: due.AddDate(0, 0, 30)},
	}

	entries, err := BuildSchedule(uuid.New(), dec(t, "1000.00"), due, specs)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.True(t, entries[0].Amount.Equal(dec(t, "300.00")))
	assert.True(t, entries[1].Amount.Equal(dec(t, "400.00")))
	assert.True(t, entries[2].Amount.Equal(dec(t, "300.00")))
	assert.Equal(t, 1, entries[0].PaymentNumber)
	assert.Equal(t, 2, entries[1].PaymentNumber)
	assert.Equal(t, 3, entries[2].PaymentNumber)
}

func TestBuildSchedule_ThirdsToleratesRounding(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	specs := []ScheduleSpec{
		{Percentage: pctPtr(t, "33.33"), DueDate: due},
		{Percentage: pctPtr(t, "33.33"), DueDate: due},
		{Percentage: pctPtr(t, "33.34"), DueDate: due},
	}

	// With 100.01 the rounded parts sum to 100.00; the per-entry tolerance
	// absorbs the lost cent.
	_, err := BuildSchedule(uuid.New(), dec(t, "100.00"), due, specs)
	assert.NoError(t, err)

	_, err = BuildSchedule(uuid.New(), dec(t, "100.01"), due, specs)
	assert.NoError(t, err)
}

func TestBuildSchedule_ExplicitAmountWinsOverPercentage(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	amt := dec(t, "600.00")
	specs := []ScheduleSpec{
		{Amount: &amt, Percentage: pctPtr(t, "30"), DueDate: due},
		{Percentage: pctPtr(t, "40"), DueDate: due},
	}

	entries, err := BuildSchedule(uuid.New(), dec(t, "1000.00"), due, specs)
	require.NoError(t, err)
	assert.True(t, entries[0].Amount.Equal(dec(t, "600.00")))
	assert.True(t, entries[1].Amount.Equal(dec(t, "400.00")))
}

func TestBuildSchedule_SumMismatch(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	specs := []ScheduleSpec{
		{Percentage: pctPtr(t, "30"), DueDate: due},
		{Percentage: pctPtr(t, "30"), DueDate: due},
	}

	_, err := BuildSchedule(uuid.New(), dec(t, "1000.00"), due, specs)
	assert.ErrorIs(t, err, ErrScheduleSumMismatch)
}

func TestBuildSchedule_ValidationErrors(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		specs []ScheduleSpec
		field string
	}{
		{
			name:  "missing due date",
			specs: []ScheduleSpec{{Percentage: pctPtr(t, "100")}},
			field: "payment_schedules.0.due_date",
		},
		{
			name:  "missing amount and percentage",
			specs: []ScheduleSpec{{DueDate: due}},
			field: "payment_schedules.0.amount",
		},
		{
			name: "percentage out of range",
			specs: []ScheduleSpec{
				{Percentage: pctPtr(t, "100"), DueDate: due},
				{Percentage: pctPtr(t, "101"), DueDate: due},
			},
			field: "payment_schedules.1.percentage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSchedule(uuid.New(), dec(t, "1000.00"), due, tt.specs)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestDeriveEntryStatus(t *testing.T) {
	amount := dec(t, "500.00")

	assert.Equal(t, ScheduleStatusPending, DeriveEntryStatus(amount, decimal.Zero))
	assert.Equal(t, ScheduleStatusPartial, DeriveEntryStatus(amount, dec(t, "0.01")))
	assert.Equal(t, ScheduleStatusPartial, DeriveEntryStatus(amount, dec(t, "499.99")))
	assert.Equal(t, ScheduleStatusPaid, DeriveEntryStatus(amount, dec(t, "500.00")))
	assert.Equal(t, ScheduleStatusPaid, DeriveEntryStatus(amount, dec(t, "500.01")))
}

func TestDeriveInvoiceStatus(t *testing.T) {
	entry := func(s ScheduleStatus) PaymentScheduleEntry {
		return PaymentScheduleEntry{Status: s}
	}

	tests := []struct {
		name    string
		entries []PaymentScheduleEntry
		want    InvoiceStatus
	}{
		{"no entries", nil, InvoiceStatusSent},
		{"all pending", []PaymentScheduleEntry{entry(ScheduleStatusPending), entry(ScheduleStatusPending)}, InvoiceStatusSent},
		{"one partial", []PaymentScheduleEntry{entry(ScheduleStatusPartial), entry(ScheduleStatusPending)}, InvoiceStatusPartiallyPaid},
		{"one paid one pending", []PaymentScheduleEntry{entry(ScheduleStatusPaid), entry(ScheduleStatusPending)}, InvoiceStatusPartiallyPaid},
		{"all paid", []PaymentScheduleEntry{entry(ScheduleStatusPaid), entry(ScheduleStatusPaid)}, InvoiceStatusPaid},
		{"overdue counts as no progress", []PaymentScheduleEntry{entry(ScheduleStatusOverdue)}, InvoiceStatusSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveInvoiceStatus(tt.entries))
		})
	}
}

func TestScheduleEntry_RemainingAmount(t *testing.T) {
	e := PaymentScheduleEntry{Amount: dec(t, "500.00"), PaidAmount: dec(t, "120.50")}
	assert.True(t, e.RemainingAmount().Equal(dec(t, "379.50")))

	e.PaidAmount = dec(t, "600.00")
	assert.True(t, e.RemainingAmount().IsZero())
}

func TestInvoiceView_ApplyOverdue(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

	view := InvoiceView{
		Invoice: Invoice{Status: InvoiceStatusSent, DueDate: past},
		Schedule: []PaymentScheduleEntry{
			{Status: ScheduleStatusPending, DueDate: past},
			{Status: ScheduleStatusPaid, DueDate: past},
			{Status: ScheduleStatusPending, DueDate: future},
		},
	}
	view.ApplyOverdue(now)

	assert.Equal(t, InvoiceStatusOverdue, view.Invoice.Status)
	assert.Equal(t, ScheduleStatusOverdue, view.Schedule[0].Status)
	assert.Equal(t, ScheduleStatusPaid, view.Schedule[1].Status)
	assert.Equal(t, ScheduleStatusPending, view.Schedule[2].Status)
}

func TestInvoiceView_ApplyOverdue_SparesDraftAndCancelled(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	for _, status := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusCancelled, InvoiceStatusPaid} {
		view := InvoiceView{Invoice: Invoice{Status: status, DueDate: past}}
		view.ApplyOverdue(now)
		assert.Equal(t, status, view.Invoice.Status)
	}
}

func TestScheduleEntry_IsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	e := PaymentScheduleEntry{
		Amount:  dec(t, "500.00"),
		DueDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:  ScheduleStatusPending,
	}

	assert.True(t, e.IsOverdue(now))

	e.Status = ScheduleStatusPaid
	assert.False(t, e.IsOverdue(now))

	e.Status = ScheduleStatusPending
	e.DueDate = time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)
	assert.False(t, e.IsOverdue(now))
}
