// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"finova/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom tags on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("transaction_type", oneOf(string(models.TransactionTypeIncome), string(models.TransactionTypeExpense)))
	_ = v.RegisterValidation("category_type", oneOf(string(models.CategoryTypeIncome), string(models.CategoryTypeExpense)))
	_ = v.RegisterValidation("payment_method", oneOf(
		string(models.PaymentMethodCash),
		string(models.PaymentMethodInstantTransfer),
		string(models.PaymentMethodCard),
		string(models.PaymentMethodInvoice),
	))
	_ = v.RegisterValidation("investment_type", oneOf(string(models.InvestmentTypeGeneral), string(models.InvestmentTypeEmergency)))
	_ = v.RegisterValidation("investment_operation", oneOf(string(models.OperationContribution), string(models.OperationWithdrawal)))
	_ = v.RegisterValidation("calendar_date", validateCalendarDate)
	_ = v.RegisterValidation("year_month", validateYearMonth)
	_ = v.RegisterValidation("dpositive", validateDecimalPositive)
	_ = v.RegisterValidation("dnonnegative", validateDecimalNonNegative)

	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

func oneOf(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

func validateYearMonth(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 7 || s[4] != '-' {
		return false
	}
	_, err := models.ParseDate(s + "-01")
	return err == nil
}

// decimalValue exposes a decimal to the validator as its string form so
// the dpositive/dnonnegative tags can parse it back.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateDecimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

func validateDecimalNonNegative(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}
