package finance

import (
	"testing"

	"finova/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const (
	ana   models.Owner = "Ana"
	bruno models.Owner = "Bruno"
)

var household = models.Household{MemberA: ana, MemberB: bruno}

func day(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(desc, amount, date, category string) models.Transaction {
	return models.Transaction{
		Description:   desc,
		Amount:        dec(amount),
		Type:          models.TransactionTypeExpense,
		Category:      category,
		Owner:         ana,
		Date:          day(date),
		PaymentMethod: models.PaymentMethodCard,
	}
}

func income(desc, amount, date string) models.Transaction {
	return models.Transaction{
		Description:   desc,
		Amount:        dec(amount),
		Type:          models.TransactionTypeIncome,
		Category:      "Salary",
		Owner:         ana,
		Date:          day(date),
		PaymentMethod: models.PaymentMethodInstantTransfer,
		IsPaid:        true,
	}
}

func recurring(tx models.Transaction, months int) models.Transaction {
	tx.IsRecurring = true
	tx.RecurringMonths = months
	return tx
}

func owned(tx models.Transaction, owner models.Owner) models.Transaction {
	tx.Owner = owner
	return tx
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}
