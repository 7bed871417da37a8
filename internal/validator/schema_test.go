package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billora/internal/domain"
)

var testSchema = Schema{
	Fields: map[string]Constraint{
		"name":     {Required: true, MaxLen: 10},
		"amount":   {Required: true, Min: Dec("0.01"), Max: Dec("100")},
		"status":   {OneOf: []string{"draft", "sent"}},
		"rate":     {Min: Dec("0")},
		"sent_at":  {Required: true},
		"ended_at": {},
	},
	Cross: []CrossField{
		{Field: "ended_at", After: "sent_at"},
	},
}

func validValues() Values {
	return Values{
		"name":     "ok",
		"amount":   decimal.RequireFromString("50"),
		"status":   "draft",
		"sent_at":  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		"ended_at": time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestSchema_Valid(t *testing.T) {
	assert.NoError(t, testSchema.Validate(validValues()))
}

func TestSchema_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(Values)
		field   string
		message string
	}{
		{
			name:    "missing required string",
			mutate:  func(v Values) { v["name"] = "" },
			field:   "name",
			message: "is required",
		},
		{
			name:    "string too long",
			mutate:  func(v Values) { v["name"] = "this name is far too long" },
			field:   "name",
			message: "must be at most 10 characters",
		},
		{
			name:    "amount below minimum",
			mutate:  func(v Values) { v["amount"] = decimal.Zero },
			field:   "amount",
			message: "must be at least 0.01",
		},
		{
			name:    "amount above maximum",
			mutate:  func(v Values) { v["amount"] = decimal.RequireFromString("100.01") },
			field:   "amount",
			message: "must be at most 100",
		},
		{
			name:    "value outside enum",
			mutate:  func(v Values) { v["status"] = "archived" },
			field:   "status",
			message: "is not a valid value",
		},
		{
			name:    "zero required date",
			mutate:  func(v Values) { v["sent_at"] = time.Time{} },
			field:   "sent_at",
			message: "is required",
		},
		{
			name:    "cross field ordering",
			mutate:  func(v Values) { v["ended_at"] = v["sent_at"] },
			field:   "ended_at",
			message: "must be after sent_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := validValues()
			tt.mutate(values)

			err := testSchema.Validate(values)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, ve.Fields[tt.field])
		})
	}
}

func TestSchema_CollectsAllFailures(t *testing.T) {
	values := validValues()
	values["name"] = ""
	values["status"] = "archived"

	err := testSchema.Validate(values)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
}

func TestSchema_OptionalFieldsMaySkip(t *testing.T) {
	values := validValues()
	delete(values, "status")
	delete(values, "rate")
	delete(values, "ended_at")

	assert.NoError(t, testSchema.Validate(values))
}

func TestSchema_PointerDecimal(t *testing.T) {
	values := validValues()
	neg := decimal.RequireFromString("-1")
	values["rate"] = &neg

	err := testSchema.Validate(values)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "rate")

	values["rate"] = (*decimal.Decimal)(nil)
	assert.NoError(t, testSchema.Validate(values))
}
