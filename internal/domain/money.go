package domain

import "github.com/shopspring/decimal"

// LineItemInput is the raw material for the money calculator: one line as
// submitted by the caller, before any totals are derived.
type LineItemInput struct {
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
}

// LineTotals holds the derived amounts for one line item.
type LineTotals struct {
	Base    decimal.Decimal // quantity * unit_price
	VAT     decimal.Decimal // base * vat_rate/100
	WithTax decimal.Decimal // base + vat
}

// Totals holds the derived invoice-level amounts.
//
// TotalAmount always equals Subtotal + TaxAmount. ScheduleBase is the figure
// schedule entry amounts derive from: in flat mode it equals TotalAmount; in
// per-line mode the invoice-level tax rate is applied a second time on top
// of the already line-taxed total, which is how the historical create path
// computed it. Callers that consider that double application a bug should
// run in flat mode; both behaviors are pinned by tests.
type Totals struct {
	Subtotal     decimal.Decimal
	TaxAmount    decimal.Decimal
	TotalAmount  decimal.Decimal
	ScheduleBase decimal.Decimal
	Lines        []LineTotals
}

var oneHundred = decimal.NewFromInt(100)

// MoneyRound normalizes a monetary value to 2 fractional digits, half up.
func MoneyRound(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeTotals derives invoice totals from line items and the invoice-level
// tax rate. Pure: deterministic for identical inputs, no side effects. All
// arithmetic is fixed-point decimal; each line is rounded to 2 digits before
// accumulation so repeated summation cannot drift.
func ComputeTotals(items []LineItemInput, taxRate decimal.Decimal, mode TaxMode) Totals {
	subtotal := decimal.Zero
	lineVAT := decimal.Zero
	lines := make([]LineTotals, 0, len(items))

	for _, it := range items {
		base := MoneyRound(it.Quantity.Mul(it.UnitPrice))
		vat := MoneyRound(base.Mul(it.VATRate).Div(oneHundred))
		lines = append(lines, LineTotals{Base: base, VAT: vat, WithTax: base.Add(vat)})
		subtotal = subtotal.Add(base)
		lineVAT = lineVAT.Add(vat)
	}

	switch mode {
	case TaxModeFlat:
		tax := MoneyRound(subtotal.Mul(taxRate).Div(oneHundred))
		total := subtotal.Add(tax)
		return Totals{
			Subtotal:     subtotal,
			TaxAmount:    tax,
			TotalAmount:  total,
			ScheduleBase: total,
			Lines:        lines,
		}
	default: // TaxModePerLine
		total := subtotal.Add(lineVAT)
		levelTax := MoneyRound(total.Mul(taxRate).Div(oneHundred))
		return Totals{
			Subtotal:     subtotal,
			TaxAmount:    lineVAT,
			TotalAmount:  total,
			ScheduleBase: total.Add(levelTax),
			Lines:        lines,
		}
	}
}
