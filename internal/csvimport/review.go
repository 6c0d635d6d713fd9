package csvimport

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// PreviewSize is the number of projected rows shown before submit.
const PreviewSize = 5

// DateRange is the span of the parseable dates in an upload.
type DateRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// Summary is what the review step shows before the batch is written.
type Summary struct {
	Preview   []domain.PrayerTimeInput `json:"preview"`
	Total     int                      `json:"total"`
	DateRange *DateRange               `json:"date_range,omitempty"`
	Warnings  []RowWarning             `json:"warnings,omitempty"`
}

// RowWarning flags a data-quality problem in one uploaded row. Row is
// 1-based over the data rows.
type RowWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// dateLayouts are the date spellings the import rewrites to ISO. Numeric
// day/month orders such as 03/01/2025 are left out: the same cell reads as
// 3 January or 1 March depending on the exporting locale.
var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ambiguousDate matches numeric dates with the year last.
var ambiguousDate = regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}[/.-]\d{4}$`)

// ParseDate tries every accepted layout in turn.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dateWarning(d string) string {
	if ambiguousDate.MatchString(strings.TrimSpace(d)) {
		return fmt.Sprintf("date %q is ambiguous; use YYYY-MM-DD", d)
	}
	return fmt.Sprintf("date %q is not recognised", d)
}

// Range returns the earliest and latest parseable date among rows, or nil
// when no row has one. Rows with unparseable dates are skipped.
func Range(dates []string) *DateRange {
	var lo, hi time.Time
	found := false
	for _, d := range dates {
		t, ok := ParseDate(d)
		if !ok {
			continue
		}
		if !found || t.Before(lo) {
			lo = t
		}
		if !found || t.After(hi) {
			hi = t
		}
		found = true
	}
	if !found {
		return nil
	}
	return &DateRange{Min: lo.Format(domain.DateLayout), Max: hi.Format(domain.DateLayout)}
}

// Review projects the session's rows and summarises them.
func (s *Session) Review() (Summary, error) {
	rows, err := s.Project()
	if err != nil {
		return Summary{}, fmt.Errorf("csvimport.Session.Review: %w", err)
	}

	dates := make([]string, len(rows))
	var warnings []RowWarning
	for i, r := range rows {
		dates[i] = r.Date
		if _, ok := ParseDate(r.Date); !ok {
			warnings = append(warnings, RowWarning{Row: i + 1, Message: dateWarning(r.Date)})
		}
		for _, w := range domain.JamaatWarnings(r.Slots()) {
			warnings = append(warnings, RowWarning{Row: i + 1, Message: w})
		}
	}

	return Summary{
		Preview:   rows[:min(PreviewSize, len(rows))],
		Total:     len(rows),
		DateRange: Range(dates),
		Warnings:  warnings,
	}, nil
}
