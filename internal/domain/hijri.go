package domain

import (
	"fmt"
	"time"

	"github.com/hablullah/go-hijri"
)

// hijriMonths are single-token transliterations so a formatted Hijri date
// always splits into exactly "day month year" on whitespace.
var hijriMonths = [12]string{
	"Muharram", "Safar", "Rabi-I", "Rabi-II", "Jumada-I", "Jumada-II",
	"Rajab", "Shaban", "Ramadan", "Shawwal", "Dhul-Qadah", "Dhul-Hijjah",
}

// HijriDate is a date in the tabular Islamic calendar.
type HijriDate struct {
	Year  int
	Month int // 1-12
	Day   int
}

// String renders the date as "<day> <Month> <year>", e.g. "1 Ramadan 1445".
func (h HijriDate) String() string {
	return fmt.Sprintf("%d %s %d", h.Day, hijriMonths[h.Month-1], h.Year)
}

// ToHijri converts the calendar date of t (in t's own location) to the
// arithmetic Islamic calendar, shifted by adjustDays. Local moon sighting
// usually differs from the tabular result by at most a day, which is what
// the adjustment is for. Dates before 1 Muharram 1 AH are an error.
func ToHijri(t time.Time, adjustDays int) (HijriDate, error) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, adjustDays)

	h, err := hijri.CreateHijriDate(day, hijri.Default)
	if err != nil {
		return HijriDate{}, fmt.Errorf("%w: %s: %v", ErrValidation, day.Format(DateLayout), err)
	}
	return HijriDate{Year: int(h.Year), Month: int(h.Month), Day: int(h.Day)}, nil
}

// HijriString parses an ISO date and returns its formatted Hijri date.
func HijriString(isoDate string, adjustDays int) (string, error) {
	t, err := time.Parse(DateLayout, isoDate)
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q", ErrValidation, isoDate)
	}
	h, err := ToHijri(t, adjustDays)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}
