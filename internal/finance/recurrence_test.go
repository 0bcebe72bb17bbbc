package finance

import (
	"fmt"
	"testing"
	"time"

	"finova/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID(id string) func() string {
	return func() string { return id }
}

func TestExpand(t *testing.T) {
	t.Run("count_and_dating", func(t *testing.T) {
		tx := recurring(expense("Rent", "1500", "2024-01-31", "Housing"), 4)
		got := Expand(tx, 4, ExpandOptions{NewID: fixedID("group-1")})
		require.Len(t, got, 4)

		want := []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}
		for i, inst := range got {
			assert.Equal(t, want[i], inst.Date.String())
			assert.Equal(t, tx.Date.AddMonthsClamped(i), inst.Date)
			assert.Equal(t, "Rent", inst.Description)
			assertDecimal(t, "1500", inst.Amount)
			require.NotNil(t, inst.RecurrenceGroupID)
			assert.Equal(t, "group-1", *inst.RecurrenceGroupID)
			assert.Empty(t, inst.ID)
		}
	})

	t.Run("non_recurring_yields_one", func(t *testing.T) {
		tx := expense("Coffee", "5", "2024-05-10", "Restaurants")
		got := Expand(tx, 12, ExpandOptions{})
		require.Len(t, got, 1)
		assert.Equal(t, tx.Date, got[0].Date)
		assert.Nil(t, got[0].RecurrenceGroupID)
	})

	t.Run("months_below_one", func(t *testing.T) {
		tx := recurring(expense("Gym", "80", "2024-05-10", "Health"), 0)
		assert.Len(t, Expand(tx, 0, ExpandOptions{}), 1)
		assert.Len(t, Expand(tx, -3, ExpandOptions{}), 1)
	})

	t.Run("label_installments", func(t *testing.T) {
		tx := recurring(expense("Laptop", "300", "2024-11-15", "Shopping"), 3)
		got := Expand(tx, 4, ExpandOptions{LabelInstallments: true})
		require.Len(t, got, 4)
		assert.Equal(t, "Laptop", got[0].Description)
		for i, inst := range got[1:] {
			assert.Equal(t, fmt.Sprintf("Laptop (%d/3)", i+1), inst.Description)
		}
		assert.Equal(t, "2025-02-15", got[3].Date.String())
	})

	t.Run("instances_are_independent", func(t *testing.T) {
		tx := recurring(expense("Rent", "1500", "2024-01-10", "Housing"), 2)
		got := Expand(tx, 2, ExpandOptions{})
		got[0].Description = "changed"
		assert.Equal(t, "Rent", got[1].Description)
		assert.Equal(t, "Rent", tx.Description)
	})
}

func TestReconcileMonth(t *testing.T) {
	feb := Month{Year: 2024, Month: time.February}

	t.Run("carries_recurring_forward_with_clamp", func(t *testing.T) {
		all := []models.Transaction{
			recurring(expense("Rent", "1500", "2024-01-31", "Housing"), 0),
			expense("One-off", "20", "2024-01-05", "Market"),
			recurring(expense("Old", "10", "2023-12-05", "Market"), 0),
		}
		got := ReconcileMonth(all, feb, "")
		require.Len(t, got, 1)
		assert.Equal(t, "Rent", got[0].Description)
		assert.Equal(t, "2024-02-29", got[0].Date.String())
		assert.True(t, got[0].IsRecurring)
	})

	t.Run("idempotent", func(t *testing.T) {
		group := "g-1"
		withGroup := recurring(expense("Internet", "100", "2024-01-10", "Utilities"), 0)
		withGroup.RecurrenceGroupID = &group
		all := []models.Transaction{
			withGroup,
			recurring(expense("Rent", "1500", "2024-01-31", "Housing"), 0),
			recurring(owned(income("Allowance", "200", "2024-01-01"), bruno), 0),
		}

		first := ReconcileMonth(all, feb, "")
		require.Len(t, first, 3)

		persisted := append(append([]models.Transaction{}, all...), first...)
		assert.Empty(t, ReconcileMonth(persisted, feb, ""))
	})

	t.Run("matches_by_description_and_amount", func(t *testing.T) {
		all := []models.Transaction{
			recurring(expense("Rent", "1500", "2024-01-31", "Housing"), 0),
			recurring(expense("Gym", "80", "2024-01-10", "Health"), 0),
			expense("Rent", "1500", "2024-02-01", "Housing"),
			expense("Gym", "90", "2024-02-10", "Health"),
		}
		got := ReconcileMonth(all, feb, "")
		require.Len(t, got, 1)
		assert.Equal(t, "Gym", got[0].Description)
		assertDecimal(t, "80", got[0].Amount)
	})

	t.Run("matches_by_group_id", func(t *testing.T) {
		group := "g-2"
		source := recurring(expense("Streaming", "30", "2024-01-03", "Subscriptions"), 3)
		source.RecurrenceGroupID = &group
		existing := source
		existing.Date = day("2024-02-03")
		existing.Description = "Streaming (renamed)"
		existing.Amount = dec("35")

		assert.Empty(t, ReconcileMonth([]models.Transaction{source, existing}, feb, ""))
	})

	t.Run("carries_installment_rows_once", func(t *testing.T) {
		plan := Expand(recurring(expense("Sofa", "300", "2023-10-20", "Shopping"), 3), 4, ExpandOptions{NewID: fixedID("g-sofa")})
		require.Equal(t, "2024-01-20", plan[3].Date.String())

		got := ReconcileMonth(plan, feb, "")
		require.Len(t, got, 1)
		assert.Equal(t, "2024-02-20", got[0].Date.String())
		require.NotNil(t, got[0].RecurrenceGroupID)
		assert.Equal(t, "g-sofa", *got[0].RecurrenceGroupID)

		persisted := append(append([]models.Transaction{}, plan...), got...)
		assert.Empty(t, ReconcileMonth(persisted, feb, ""))
	})

	t.Run("owner_filter_scopes_sources", func(t *testing.T) {
		all := []models.Transaction{
			recurring(expense("Ana gym", "80", "2024-01-10", "Health"), 0),
			recurring(owned(expense("Bruno gym", "90", "2024-01-10", "Health"), bruno), 0),
		}
		got := ReconcileMonth(all, feb, bruno)
		require.Len(t, got, 1)
		assert.Equal(t, "Bruno gym", got[0].Description)
	})

	t.Run("paid_status_reset_by_payment_method", func(t *testing.T) {
		card := recurring(expense("Insurance", "60", "2024-01-15", "Health"), 0)
		card.IsPaid = true
		cash := recurring(expense("Cleaner", "120", "2024-01-15", "Housing"), 0)
		cash.PaymentMethod = models.PaymentMethodCash

		got := ReconcileMonth([]models.Transaction{card, cash}, feb, "")
		require.Len(t, got, 2)
		assert.False(t, got[0].IsPaid)
		assert.True(t, got[1].IsPaid)
	})

	t.Run("year_boundary", func(t *testing.T) {
		all := []models.Transaction{recurring(expense("Rent", "1500", "2023-12-31", "Housing"), 0)}
		got := ReconcileMonth(all, Month{Year: 2024, Month: time.January}, "")
		require.Len(t, got, 1)
		assert.Equal(t, "2024-01-31", got[0].Date.String())
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ReconcileMonth(nil, feb, ""))
	})
}
