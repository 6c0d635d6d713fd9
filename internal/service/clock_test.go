package service

import "time"

// SetCalendarClock pins the time a CalendarService treats as now.
func SetCalendarClock(s *CalendarService, now time.Time) {
	s.now = func() time.Time { return now }
}
