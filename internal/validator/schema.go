// Package validator implements declarative input validation: constraints are
// data attached to field names, not conditionals scattered through services.
package validator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"billora/internal/domain"
)

// Constraint describes the checks applied to one field.
type Constraint struct {
	Required bool
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	MaxLen   int
	OneOf    []string
}

// CrossField is a relation between two date fields, checked after the
// per-field constraints pass.
type CrossField struct {
	Field string
	After string // Field's value must be strictly after this field's value
}

// Schema is a set of named constraints plus cross-field relations.
type Schema struct {
	Fields map[string]Constraint
	Cross  []CrossField
}

// Values carries the submitted values keyed by field name. Supported types:
// string, decimal.Decimal, *decimal.Decimal, time.Time.
type Values map[string]interface{}

// Validate applies the schema and returns a *domain.ValidationError listing
// every failing field, or nil when all constraints hold.
func (s Schema) Validate(values Values) error {
	fields := map[string]string{}

	for name, c := range s.Fields {
		v, present := values[name]
		if !present || isEmpty(v) {
			if c.Required {
				fields[name] = "is required"
			}
			continue
		}
		if msg := checkConstraint(c, v); msg != "" {
			fields[name] = msg
		}
	}

	for _, cf := range s.Cross {
		a, aok := values[cf.Field].(time.Time)
		b, bok := values[cf.After].(time.Time)
		if aok && bok && !a.IsZero() && !b.IsZero() && !a.After(b) {
			if _, taken := fields[cf.Field]; !taken {
				fields[cf.Field] = fmt.Sprintf("must be after %s", cf.After)
			}
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case time.Time:
		return t.IsZero()
	case *decimal.Decimal:
		return t == nil
	case nil:
		return true
	default:
		return false
	}
}

func checkConstraint(c Constraint, v interface{}) string {
	switch t := v.(type) {
	case string:
		if c.MaxLen > 0 && len(t) > c.MaxLen {
			return fmt.Sprintf("must be at most %d characters", c.MaxLen)
		}
		if len(c.OneOf) > 0 && !contains(c.OneOf, t) {
			return "is not a valid value"
		}
	case decimal.Decimal:
		return checkRange(c, t)
	case *decimal.Decimal:
		return checkRange(c, *t)
	}
	return ""
}

func checkRange(c Constraint, d decimal.Decimal) string {
	if c.Min != nil && d.LessThan(*c.Min) {
		return fmt.Sprintf("must be at least %s", c.Min.String())
	}
	if c.Max != nil && d.GreaterThan(*c.Max) {
		return fmt.Sprintf("must be at most %s", c.Max.String())
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Dec is a convenience constructor for constraint bounds.
func Dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
