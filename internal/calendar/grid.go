package calendar

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// EmptyMessage replaces the grid when a month has no records at all.
const EmptyMessage = "There are no prayer times available for this month. " +
	"Please upload prayer times using the CSV upload feature."

// HanafiLabel marks the second Asr start time.
const HanafiLabel = "(H)"

// Slot is one prayer cell: jamaat time first, start time underneath.
type Slot struct {
	Jamaat string `json:"jamaat"`
	Start  string `json:"start"`
}

// AsrSlot additionally carries the optional second start time.
type AsrSlot struct {
	Slot
	Start2      string `json:"start2,omitempty"`
	Start2Label string `json:"start2_label,omitempty"`
}

// Row is the display form of one day.
type Row struct {
	Date      string     `json:"date"`
	DateLabel string     `json:"date_label"`
	Hijri     string     `json:"hijri"`
	Fajr      Slot       `json:"fajr"`
	Sunrise   string     `json:"sunrise"`
	Dhuhr     Slot       `json:"dhuhr"`
	Asr       AsrSlot    `json:"asr"`
	Maghrib   Slot       `json:"maghrib"`
	Isha      Slot       `json:"isha"`
	RecordID  *uuid.UUID `json:"record_id,omitempty"`
	Editable  bool       `json:"editable"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// Day pairs a date of the month with its record, if any.
type Day struct {
	Date    string             `json:"date"`
	Record  *domain.PrayerTime `json:"-"`
	IsToday bool               `json:"is_today"`
	Row     Row                `json:"row"`
}

// Grid is the assembled month view.
type Grid struct {
	Month     Month  `json:"-"`
	Use24Hour bool   `json:"use_24_hour"`
	Days      []Day  `json:"days"`
	Empty     bool   `json:"empty"`
	Message   string `json:"message,omitempty"`
	// Today is the index into Days of the current day, -1 when the current
	// day is outside the month or the grid is empty.
	Today int `json:"today"`
}

// IndexRecordsByDate keys records by date. When two records share a date
// the later one wins.
func IndexRecordsByDate(records []domain.PrayerTime) map[string]domain.PrayerTime {
	out := make(map[string]domain.PrayerTime, len(records))
	for _, r := range records {
		out[r.Date] = r
	}
	return out
}

// IsCurrentDay reports whether the ISO date falls on now's calendar day in
// now's location, whatever the time of day.
func IsCurrentDay(date string, now time.Time) bool {
	d, err := time.ParseInLocation(domain.DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	y, m, dd := now.Date()
	return d.Year() == y && d.Month() == m && d.Day() == dd
}

// RenderRow formats one day. A nil record yields a placeholder row that
// cannot be edited.
func RenderRow(date string, rec *domain.PrayerTime, use24Hour bool) Row {
	row := Row{
		Date:      date,
		DateLabel: FormatDate(date),
		Hijri:     Placeholder,
		Sunrise:   Placeholder,
		Fajr:      Slot{Jamaat: Placeholder, Start: Placeholder},
		Dhuhr:     Slot{Jamaat: Placeholder, Start: Placeholder},
		Asr:       AsrSlot{Slot: Slot{Jamaat: Placeholder, Start: Placeholder}},
		Maghrib:   Slot{Jamaat: Placeholder, Start: Placeholder},
		Isha:      Slot{Jamaat: Placeholder, Start: Placeholder},
	}
	if rec == nil {
		return row
	}

	slot := func(start, jamaat string) Slot {
		return Slot{Jamaat: FormatTime(jamaat, use24Hour), Start: FormatTime(start, use24Hour)}
	}

	row.Hijri = FormatHijri(rec.HijriDate)
	row.Fajr = slot(rec.FajrStart, rec.FajrJammat)
	row.Sunrise = FormatTime(rec.Sunrise, use24Hour)
	row.Dhuhr = slot(rec.DhurStart, rec.DhurJammat)
	row.Asr = AsrSlot{Slot: slot(rec.AsrStart, rec.AsrJammat)}
	if rec.AsrStart1 != nil && *rec.AsrStart1 != "" {
		row.Asr.Start2 = FormatTime(*rec.AsrStart1, use24Hour)
		row.Asr.Start2Label = HanafiLabel
	}
	row.Maghrib = slot(rec.MagribStart, rec.MagribJammat)
	row.Isha = slot(rec.IshaStart, rec.IshaJammat)

	id := rec.ID
	row.RecordID = &id
	row.Editable = true
	row.Warnings = domain.JamaatWarnings(rec.Slots())
	return row
}

// Assemble merges the month's day sequence with records and locates today.
// now should already be in the viewer's location.
func Assemble(m Month, records []domain.PrayerTime, now time.Time, use24Hour bool) Grid {
	g := Grid{Month: m, Use24Hour: use24Hour, Today: -1}

	byDate := IndexRecordsByDate(records)
	start, end := m.Bounds()
	inMonth := 0
	for d := range byDate {
		if d >= start && d <= end {
			inMonth++
		}
	}
	if inMonth == 0 {
		g.Empty = true
		g.Message = EmptyMessage
		return g
	}

	days := m.Days()
	g.Days = make([]Day, len(days))
	for i, date := range days {
		day := Day{Date: date, IsToday: IsCurrentDay(date, now)}
		if rec, ok := byDate[date]; ok {
			day.Record = &rec
		}
		day.Row = RenderRow(date, day.Record, use24Hour)
		if day.IsToday {
			g.Today = i
		}
		g.Days[i] = day
	}
	return g
}

// Scroller brings a row into view beneath the fixed header.
type Scroller interface {
	ScrollTo(date string)
}

// ScrollToToday is the post-render step of the month view: if the grid
// contains today's row, scroll it into view. It reports whether a scroll
// happened.
func ScrollToToday(g Grid, s Scroller) bool {
	if g.Empty || g.Today < 0 || g.Today >= len(g.Days) {
		return false
	}
	s.ScrollTo(g.Days[g.Today].Date)
	return true
}
