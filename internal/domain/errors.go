package domain

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. malformed clock time, date outside the calendar).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrParse is returned when an uploaded timetable file cannot be read:
// malformed CSV quoting, an unreadable encoding, or no header row.
// Handlers should map this to HTTP 422 with code "parse_error".
var ErrParse = errors.New("parse error")

// ErrStep is returned when an import session is asked to do something its
// current step does not allow (e.g. submit while still in mapping).
// Handlers should map this to HTTP 409 Conflict.
var ErrStep = errors.New("step not allowed")

// ErrConflict is returned when a write is already in flight for the same
// import session. Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller's session does not cover the
// requested masjid. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// opPrefix matches the "pkg.Type.Method: " wrapping added on the way up.
var opPrefix = regexp.MustCompile(`^([a-z]\w*\.[\w.]+: )+`)

// Message extracts the human-readable part of a wrapped sentinel error.
// e.g. "service.PrayerTimeService.Update: validation error: sunrise is required"
// → "sunrise is required", and
// "csvimport.Session.Continue: unmapped fields date: validation error"
// → "unmapped fields date".
func Message(err error, sentinel error) string {
	msg := opPrefix.ReplaceAllString(err.Error(), "")
	text := sentinel.Error()
	switch {
	case msg == text:
		return msg
	case strings.HasPrefix(msg, text+": "):
		return strings.TrimPrefix(msg, text+": ")
	case strings.HasSuffix(msg, ": "+text):
		return strings.TrimSuffix(msg, ": "+text)
	}
	return msg
}
