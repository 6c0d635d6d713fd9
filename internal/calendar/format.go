package calendar

import (
	"strings"
	"time"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// Placeholder is shown wherever a value is missing.
const Placeholder = "-"

// FormatTime renders a 24-hour clock string as "HH:mm" when use24Hour is
// set, otherwise as "h:mm AM/PM". Missing or unparseable input renders as
// Placeholder.
func FormatTime(s string, use24Hour bool) string {
	t, ok := domain.ParseClock(s)
	if !ok {
		return Placeholder
	}
	if use24Hour {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// FormatOptionalTime is FormatTime for nullable values.
func FormatOptionalTime(s *string, use24Hour bool) string {
	if s == nil {
		return Placeholder
	}
	return FormatTime(*s, use24Hour)
}

// FormatHijri keeps only the day and month of a "day month year" Hijri
// string; the year is dropped to keep the column narrow.
func FormatHijri(s string) string {
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return Placeholder
	case 1:
		return parts[0]
	default:
		return parts[0] + " " + parts[1]
	}
}

// FormatDate renders an ISO date for the date column, e.g. "Mon 3 Feb".
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("Mon 2 Jan")
}
