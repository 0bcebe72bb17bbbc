package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Type      string          `validate:"required,transaction_type"`
	Method    string          `validate:"required,payment_method"`
	Date      string          `validate:"required,calendar_date"`
	Month     string          `validate:"omitempty,year_month"`
	Amount    decimal.Decimal `validate:"dpositive"`
	Limit     decimal.Decimal `validate:"dnonnegative"`
	Operation string          `validate:"omitempty,investment_operation"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	RegisterOn(v)
	return v
}

func valid() sample {
	return sample{
		Type:   "expense",
		Method: "instant_transfer",
		Date:   "2024-02-29",
		Month:  "2024-02",
		Amount: decimal.RequireFromString("10.50"),
		Limit:  decimal.Zero,
	}
}

func TestCustomTags(t *testing.T) {
	v := newValidate()
	assert.NoError(t, v.Struct(valid()))

	cases := map[string]func(s *sample){
		"transfer_type":     func(s *sample) { s.Type = "transfer" },
		"unknown_method":    func(s *sample) { s.Method = "cheque" },
		"impossible_date":   func(s *sample) { s.Date = "2023-02-29" },
		"bad_month":         func(s *sample) { s.Month = "2024-13" },
		"zero_amount":       func(s *sample) { s.Amount = decimal.Zero },
		"negative_amount":   func(s *sample) { s.Amount = decimal.NewFromInt(-1) },
		"negative_limit":    func(s *sample) { s.Limit = decimal.NewFromInt(-5) },
		"unknown_operation": func(s *sample) { s.Operation = "dividend" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := valid()
			mutate(&s)
			assert.Error(t, v.Struct(s))
		})
	}
}
