package domain

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusPending       InvoiceStatus = "pending"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// ValidInvoiceStatuses enumerates the statuses accepted on manual overrides.
var ValidInvoiceStatuses = map[InvoiceStatus]bool{
	InvoiceStatusDraft:         true,
	InvoiceStatusPending:       true,
	InvoiceStatusSent:          true,
	InvoiceStatusPaid:          true,
	InvoiceStatusPartiallyPaid: true,
	InvoiceStatusOverdue:       true,
	InvoiceStatusCancelled:     true,
}

// ScheduleStatus represents the payment state of a single schedule entry.
type ScheduleStatus string

const (
	ScheduleStatusPending ScheduleStatus = "pending"
	ScheduleStatusPartial ScheduleStatus = "partial"
	ScheduleStatusPaid    ScheduleStatus = "paid"
	ScheduleStatusOverdue ScheduleStatus = "overdue"
)

// PaymentStatus represents the state of a recorded payment.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
)

// TaxMode selects how the invoice-level tax rate interacts with per-line VAT.
type TaxMode string

const (
	// TaxModePerLine accumulates per-line VAT into the invoice totals and
	// additionally applies the invoice-level tax rate on top of the
	// line-taxed total when deriving the schedule base amount. This mirrors
	// the historical create path; see ComputeTotals.
	TaxModePerLine TaxMode = "per_line"
	// TaxModeFlat ignores per-line VAT at the invoice level and applies a
	// single flat tax rate to the untaxed subtotal.
	TaxModeFlat TaxMode = "flat"
)

// DefaultUnit is the fallback unit of measure for invoice line items.
const DefaultUnit = "pcs"

// PredefinedUnits maps unit codes to display labels for line items.
var PredefinedUnits = map[string]string{
	"pcs":    "Pieces",
	"kg":     "Kilogram",
	"gm":     "Gram",
	"ltr":    "Liter",
	"ml":     "Milliliter",
	"mtr":    "Meter",
	"cm":     "Centimeter",
	"mm":     "Millimeter",
	"sq_mtr": "Square Meter",
	"cu_mtr": "Cubic Meter",
	"ft":     "Feet",
	"inch":   "Inch",
	"box":    "Box",
	"pack":   "Pack",
	"set":    "Set",
	"pair":   "Pair",
	"doz":    "Dozen",
	"roll":   "Roll",
	"bundle": "Bundle",
	"lot":    "Lot",
	"unit":   "Unit",
	"hour":   "Hour",
	"day":    "Day",
	"month":  "Month",
	"year":   "Year",
}

// UnitLabel returns the display label for a unit code. Free-form units fall
// back to the code itself.
func UnitLabel(code string) string {
	if label, ok := PredefinedUnits[code]; ok {
		return label
	}
	return code
}
