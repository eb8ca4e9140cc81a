package tabular

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType is the expected type of a column
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
)

// DateLayouts are accepted by date columns, tried in order
var DateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	"02 Jan 2006",
	"2 January 2006",
	"01-02-06",
}

// FieldRule defines validation for one column
type FieldRule struct {
	Column     string
	Type       FieldType
	Required   bool
	MaxLength  int
	MinValue   *decimal.Decimal
	CustomFunc func(value string) error
}

// FieldRuleBuilder builds field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for a column
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator checks rows against rules and collects the failures
type FieldValidator struct {
	rules  []FieldRule
	errors *ErrorCollection
}

// NewFieldValidator creates a validator. Rules are checked in the given
// order so errors come out in column order.
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{rules: rules, errors: NewErrorCollection(maxErrors)}
}

// Errors returns the collected errors
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

// ValidateRow reports whether every rule passed for the row
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		if err := v.check(row, rule); err != nil {
			v.errors.Add(*err)
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) check(row *Row, rule FieldRule) *RowError {
	value := row.Get(rule.Column)
	if value == "" {
		if rule.Required {
			e := NewRowError(row.LineNumber, rule.Column, ErrCodeRequiredField, "field is required")
			return &e
		}
		return nil
	}

	fail := func(code, msg string) *RowError {
		e := NewRowError(row.LineNumber, rule.Column, code, msg)
		e.Value = value
		return &e
	}

	switch rule.Type {
	case TypeDecimal:
		d, err := ParseAmount(value)
		if err != nil {
			return fail(ErrCodeInvalidType, "expected a number")
		}
		if rule.MinValue != nil && d.LessThan(*rule.MinValue) {
			return fail(ErrCodeInvalidRange, fmt.Sprintf("must be at least %s", rule.MinValue.String()))
		}
	case TypeDate:
		if _, err := ParseDate(value); err != nil {
			return fail(ErrCodeInvalidType, "expected a date such as 2026-01-31")
		}
	}

	if rule.MaxLength > 0 && len([]rune(value)) > rule.MaxLength {
		return fail(ErrCodeInvalidLength, fmt.Sprintf("must be at most %d characters", rule.MaxLength))
	}
	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			return fail(ErrCodeValidation, err.Error())
		}
	}
	return nil
}

// ParseAmount parses a money cell. Thousands separators, spaces and a
// leading currency symbol are ignored.
func ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '₦', '$', '£', '€':
			return -1
		}
		return r
	}, value)
	cleaned = strings.TrimPrefix(cleaned, "NGN")
	return decimal.NewFromString(cleaned)
}

// ParseDate parses a date cell using DateLayouts
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
