package finance

import (
	"fmt"
	"time"

	"finova/internal/models"
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthLayout is the "YYYY-MM" wire format of a Month.
const MonthLayout = "2006-01"

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing d.
func MonthOf(d models.Date) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// CurrentMonth returns the month containing now in now's location.
func CurrentMonth(now time.Time) Month {
	return MonthOf(models.DateOf(now))
}

// Contains reports whether d falls in m by calendar fields.
func (m Month) Contains(d models.Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// Add returns the month n months after m.
func (m Month) Add(n int) Month {
	t := time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the month before m.
func (m Month) Prev() Month { return m.Add(-1) }

// FirstDay returns the first calendar day of m.
func (m Month) FirstDay() models.Date { return models.NewDate(m.Year, m.Month, 1) }

// LastDay returns the last calendar day of m.
func (m Month) LastDay() models.Date {
	return models.NewDate(m.Year, m.Month, models.DaysIn(m.Year, m.Month))
}

// Day returns the given day of m, clamped to the month's last day.
func (m Month) Day(day int) models.Date {
	if last := models.DaysIn(m.Year, m.Month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return models.NewDate(m.Year, m.Month, day)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
