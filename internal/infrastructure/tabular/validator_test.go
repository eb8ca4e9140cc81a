package tabular

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValidator(t *testing.T) {
	rules := []FieldRule{
		Field("client").Required().MaxLength(5).Build(),
		Field("amount").Required().Decimal().MinValue(decimal.NewFromInt(1)).Build(),
		Field("due").Date().Build(),
		Field("plots").Custom(func(v string) error {
			if v == "bad" {
				return errors.New("plots are malformed")
			}
			return nil
		}).Build(),
	}

	row := func(line int, data map[string]string) *Row {
		return &Row{LineNumber: line, Data: data}
	}

	v := NewFieldValidator(rules, 10)
	assert.True(t, v.ValidateRow(row(2, map[string]string{"client": "Ada", "amount": "₦1,500.50", "due": "31/01/2026"})))
	assert.False(t, v.ValidateRow(row(3, map[string]string{"client": "Adeyemi", "amount": "0", "due": "soon", "plots": "bad"})))
	assert.False(t, v.ValidateRow(row(4, map[string]string{"amount": "x"})))

	errs := v.Errors().Errors()
	require.Len(t, errs, 6)
	assert.Equal(t, ErrCodeInvalidLength, errs[0].Code)
	assert.Equal(t, ErrCodeInvalidRange, errs[1].Code)
	assert.Equal(t, ErrCodeInvalidType, errs[2].Code)
	assert.Equal(t, "soon", errs[2].Value)
	assert.Equal(t, ErrCodeValidation, errs[3].Code)
	assert.Equal(t, RowError{Row: 4, Column: "client", Code: ErrCodeRequiredField, Message: "field is required"}, errs[4])
	assert.Equal(t, "row 4, column 'amount': expected a number", errs[5].Error())
}

func TestErrorCollection_Truncates(t *testing.T) {
	ec := NewErrorCollection(2)
	for i := range 3 {
		ec.Add(NewRowError(i+2, "", ErrCodeMalformedRow, "bad"))
	}
	assert.Len(t, ec.Errors(), 2)
	assert.Equal(t, 3, ec.TotalCount())
	assert.True(t, ec.IsTruncated())
	assert.Equal(t, "row 2: bad", ec.Errors()[0].Error())
}

func TestParseAmountAndDate(t *testing.T) {
	d, err := ParseAmount("NGN 2,500,000.00")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(2500000)))

	_, err = ParseAmount("two")
	assert.Error(t, err)

	for _, in := range []string{"2026-03-05", "05/03/2026", "5/3/2026", "05 Mar 2026"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), got, in)
	}
}
