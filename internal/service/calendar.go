package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/calendar"
	"github.com/pkordes/masjid-admin/internal/domain"
)

// MonthLoader loads one month of a masjid's records.
// *PrayerTimeService satisfies it.
type MonthLoader interface {
	Month(ctx context.Context, masjidID uuid.UUID, m calendar.Month) ([]domain.PrayerTime, error)
}

// GridRequest carries the optional month view parameters. Empty fields take
// their defaults: the current month, the 24-hour clock and the server zone.
type GridRequest struct {
	Month string
	Clock string
	TZ    string
}

// MonthOption is one entry of the month selector.
type MonthOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MonthView is an assembled grid plus the navigation around it.
type MonthView struct {
	calendar.Grid
	Key      string        `json:"month"`
	Label    string        `json:"label"`
	Prev     string        `json:"prev"`
	Next     string        `json:"next"`
	Options  []MonthOption `json:"options"`
	Timezone string        `json:"timezone"`
}

// CalendarService builds month views.
type CalendarService struct {
	months MonthLoader
	loc    *time.Location
	now    func() time.Time
}

// NewCalendarService constructs a CalendarService. loc decides "today" when a
// request names no zone.
func NewCalendarService(months MonthLoader, loc *time.Location) *CalendarService {
	return &CalendarService{months: months, loc: loc, now: time.Now}
}

// Grid assembles the month view for masjidID.
func (s *CalendarService) Grid(ctx context.Context, masjidID uuid.UUID, req GridRequest) (MonthView, error) {
	loc := s.loc
	if req.TZ != "" {
		l, err := time.LoadLocation(req.TZ)
		if err != nil {
			return MonthView{}, fmt.Errorf("service.CalendarService.Grid: %w: unknown time zone %q", domain.ErrValidation, req.TZ)
		}
		loc = l
	}
	now := s.now().In(loc)

	m := calendar.MonthOf(now)
	if req.Month != "" {
		var err error
		if m, err = calendar.ParseMonth(req.Month); err != nil {
			return MonthView{}, fmt.Errorf("service.CalendarService.Grid: %w", err)
		}
	}

	var use24Hour bool
	switch req.Clock {
	case "", "24h":
		use24Hour = true
	case "12h":
	default:
		return MonthView{}, fmt.Errorf("service.CalendarService.Grid: %w: clock must be 12h or 24h", domain.ErrValidation)
	}

	recs, err := s.months.Month(ctx, masjidID, m)
	if err != nil {
		return MonthView{}, fmt.Errorf("service.CalendarService.Grid: %w", err)
	}

	view := MonthView{
		Grid:     calendar.Assemble(m, recs, now, use24Hour),
		Key:      m.String(),
		Label:    m.Label(),
		Prev:     m.Prev().String(),
		Next:     m.Next().String(),
		Timezone: loc.String(),
	}
	for _, o := range calendar.MonthOf(now).Options() {
		view.Options = append(view.Options, MonthOption{Value: o.String(), Label: o.Label()})
	}
	return view, nil
}
