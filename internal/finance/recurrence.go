package finance

import (
	"fmt"

	"finova/internal/models"
	"finova/internal/uuid"
)

// ExpandOptions tunes Expand.
type ExpandOptions struct {
	// LabelInstallments appends " (i/N)" to the description of every copy
	// after the first, where N is the number of copies.
	LabelInstallments bool
	// NewID generates the shared recurrence group id. Defaults to uuid.New.
	NewID func() string
}

// Expand turns one transaction into months instances dated 0..months-1
// calendar months after tx.Date. Each offset is computed from the original
// date and days past the end of a month are clamped to its last day.
// A non-recurring transaction, or months < 1, yields a single instance.
// Instances are independent copies without ids; recurring batches share one
// new recurrence group id.
func Expand(tx models.Transaction, months int, opts ExpandOptions) []models.Transaction {
	if !tx.IsRecurring || months < 1 {
		months = 1
	}

	var groupID *string
	if tx.IsRecurring {
		newID := opts.NewID
		if newID == nil {
			newID = uuid.New
		}
		id := newID()
		groupID = &id
	}

	out := make([]models.Transaction, 0, months)
	for i := 0; i < months; i++ {
		inst := tx
		inst.Base = models.Base{}
		inst.Date = tx.Date.AddMonthsClamped(i)
		inst.RecurrenceGroupID = groupID
		if opts.LabelInstallments && i > 0 {
			inst.Description = fmt.Sprintf("%s (%d/%d)", tx.Description, i, months-1)
		}
		out = append(out, inst)
	}
	return out
}

// ReconcileMonth returns the recurring instances missing from target. Every
// recurring transaction of the previous month visible under owner produces a
// copy dated in target, with the day carried over and clamped, unless target
// already holds an instance of it: the same recurrence group when the source
// has one, otherwise the same description and amount.
// Running it again after persisting the result yields nothing.
func ReconcileMonth(all []models.Transaction, target Month, owner models.Owner) []models.Transaction {
	source := target.Prev()

	existingGroups := make(map[string]struct{})
	existingKeys := make(map[string]struct{})
	for _, tx := range all {
		if !target.Contains(tx.Date) {
			continue
		}
		if tx.RecurrenceGroupID != nil {
			existingGroups[*tx.RecurrenceGroupID] = struct{}{}
		}
		existingKeys[reconcileKey(tx)] = struct{}{}
	}

	out := make([]models.Transaction, 0)
	for _, tx := range all {
		if !tx.IsRecurring || !source.Contains(tx.Date) || !tx.Owner.Matches(owner) {
			continue
		}
		if tx.RecurrenceGroupID != nil {
			if _, ok := existingGroups[*tx.RecurrenceGroupID]; ok {
				continue
			}
			existingGroups[*tx.RecurrenceGroupID] = struct{}{}
		} else {
			key := reconcileKey(tx)
			if _, ok := existingKeys[key]; ok {
				continue
			}
			existingKeys[key] = struct{}{}
		}

		inst := tx
		inst.Base = models.Base{}
		inst.Date = target.Day(tx.Date.Day())
		inst.IsPaid = tx.PaymentMethod.DefaultPaid()
		out = append(out, inst)
	}
	return out
}

func reconcileKey(tx models.Transaction) string {
	return tx.Description + "\x00" + tx.Amount.StringFixed(2)
}
