package domain

import (
	"strings"
	"time"
)

// Slot is one prayer's start and jamaat times as stored strings.
type Slot struct {
	Name   string
	Start  string
	Jamaat string
}

// Slots returns the five prayers that carry a jamaat.
func (p PrayerTime) Slots() []Slot {
	return []Slot{
		{"fajr", p.FajrStart, p.FajrJammat},
		{"dhuhr", p.DhurStart, p.DhurJammat},
		{"asr", p.AsrStart, p.AsrJammat},
		{"maghrib", p.MagribStart, p.MagribJammat},
		{"isha", p.IshaStart, p.IshaJammat},
	}
}

// Slots returns the five prayers that carry a jamaat.
func (in PrayerTimeInput) Slots() []Slot {
	return []Slot{
		{"fajr", in.FajrStart, in.FajrJammat},
		{"dhuhr", in.DhurStart, in.DhurJammat},
		{"asr", in.AsrStart, in.AsrJammat},
		{"maghrib", in.MagribStart, in.MagribJammat},
		{"isha", in.IshaStart, in.IshaJammat},
	}
}

// ParseClock parses "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// JamaatWarnings lists the prayers whose jamaat time is earlier than their
// start time. The check is advisory; such records are still stored.
// Slots with an unparseable time are skipped.
func JamaatWarnings(slots []Slot) []string {
	var out []string
	for _, sl := range slots {
		s, ok1 := ParseClock(sl.Start)
		j, ok2 := ParseClock(sl.Jamaat)
		if ok1 && ok2 && j.Before(s) {
			out = append(out, sl.Name+" jamaat is before start")
		}
	}
	return out
}
