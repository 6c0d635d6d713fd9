// Package calendar assembles the month view of a masjid's prayer times: the
// full day sequence of a month merged with the sparse set of stored records,
// the current day located within it, and every time formatted for display.
// Everything here is pure; loading records is the caller's job.
package calendar

import (
	"fmt"
	"time"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// Month identifies a calendar month. The zero value is not valid.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth accepts "YYYY-MM" or any "YYYY-MM-DD" inside the month.
func ParseMonth(s string) (Month, error) {
	if t, err := time.Parse("2006-01", s); err == nil {
		return MonthOf(t), nil
	}
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return MonthOf(t), nil
	}
	return Month{}, fmt.Errorf("%w: invalid month reference %q", domain.ErrValidation, s)
}

// MonthOf returns the month containing t's calendar date in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Valid reports whether m names a real month.
func (m Month) Valid() bool {
	return m.Month >= time.January && m.Month <= time.December && m.Year > 0
}

// String returns "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label returns "January 2025", the month selector label.
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// first returns midnight UTC on the first day of the month.
func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Prev returns the month before m.
func (m Month) Prev() Month { return MonthOf(m.first().AddDate(0, -1, 0)) }

// Next returns the month after m.
func (m Month) Next() Month { return MonthOf(m.first().AddDate(0, 1, 0)) }

// DayCount returns the number of days in m.
func (m Month) DayCount() int {
	return m.first().AddDate(0, 1, -1).Day()
}

// Bounds returns the first and last ISO dates of the month.
func (m Month) Bounds() (start, end string) {
	first := m.first()
	return first.Format(domain.DateLayout), first.AddDate(0, 1, -1).Format(domain.DateLayout)
}

// Days returns every date of the month in ascending order. Day arithmetic
// runs in UTC so no local offset can shift a date across midnight.
func (m Month) Days() []string {
	n := m.DayCount()
	first := m.first()
	days := make([]string, n)
	for i := 0; i < n; i++ {
		days[i] = first.AddDate(0, 0, i).Format(domain.DateLayout)
	}
	return days
}

// Options returns the month selector entries: the previous month, the
// current month and the twelve after it.
func (m Month) Options() []Month {
	out := make([]Month, 0, 14)
	cur := m.Prev()
	for i := 0; i < 14; i++ {
		out = append(out, cur)
		cur = cur.Next()
	}
	return out
}

// BuildMonthSequence returns every ISO date of the month referenced by ref
// ("YYYY-MM" or "YYYY-MM-DD"). An unparseable reference is an error.
func BuildMonthSequence(ref string) ([]string, error) {
	m, err := ParseMonth(ref)
	if err != nil {
		return nil, err
	}
	return m.Days(), nil
}
