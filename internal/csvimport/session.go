package csvimport

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// Step is the position of a session in the import workflow.
type Step string

const (
	StepUpload  Step = "upload"
	StepMapping Step = "mapping"
	StepReview  Step = "review"
)

// Session is one in-progress import for one masjid. It is plain data so it
// can be stored between requests; every transition is a method that either
// applies fully or leaves the session untouched and returns an error.
type Session struct {
	ID        uuid.UUID           `json:"id"`
	MasjidID  uuid.UUID           `json:"masjid_id"`
	Filename  string              `json:"filename,omitempty"`
	Headers   []string            `json:"headers"`
	Rows      []map[string]string `json:"rows"`
	Mapping   map[string]string   `json:"field_mapping"`
	Step      Step                `json:"step"`
	Error     string              `json:"error,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewSession starts an empty session in the upload step.
func NewSession(masjidID uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		MasjidID:  masjidID,
		Mapping:   map[string]string{},
		Step:      StepUpload,
		CreatedAt: now.UTC(),
	}
}

// Upload parses a file and loads it. A parse failure resets the session to
// an empty upload step with Error set and returns an error wrapping
// domain.ErrParse.
func (s *Session) Upload(r io.Reader, filename string) error {
	if s.Step != StepUpload {
		return fmt.Errorf("csvimport.Session.Upload: in %s step: %w", s.Step, domain.ErrStep)
	}
	t, err := Parse(r, filename)
	if err != nil {
		s.reset()
		s.Error = "Failed to parse file: " + strings.TrimPrefix(err.Error(), domain.ErrParse.Error()+": ")
		return fmt.Errorf("csvimport.Session.Upload: %w", err)
	}
	return s.Load(filename, t)
}

// Load installs a parsed table. When every required field is present by
// name the mapping is built 1:1 and the session goes straight to review;
// otherwise it moves to mapping with the same-name matches pre-assigned.
func (s *Session) Load(filename string, t Table) error {
	if s.Step != StepUpload {
		return fmt.Errorf("csvimport.Session.Load: in %s step: %w", s.Step, domain.ErrStep)
	}
	s.Filename = filename
	s.Headers = t.Headers
	s.Rows = t.Rows
	s.Error = ""
	s.Mapping = make(map[string]string)
	for _, h := range t.Headers {
		if domain.IsImportField(h) {
			s.Mapping[h] = h
		}
	}

	if len(MissingFields(t.Headers)) == 0 {
		s.Step = StepReview
	} else {
		s.Step = StepMapping
	}
	return nil
}

// MissingFields returns the required fields that do not appear in headers,
// in required-field order.
func MissingFields(headers []string) []string {
	var out []string
	for _, f := range domain.RequiredImportFields {
		if !slices.Contains(headers, f) {
			out = append(out, f)
		}
	}
	return out
}

// Unmapped returns the required fields that have no header assigned.
func (s *Session) Unmapped() []string {
	var out []string
	for _, f := range domain.RequiredImportFields {
		if s.Mapping[f] == "" {
			out = append(out, f)
		}
	}
	return out
}

// Assign maps field to one of the discovered headers. An empty header
// removes the assignment.
func (s *Session) Assign(field, header string) error {
	if s.Step != StepMapping {
		return fmt.Errorf("csvimport.Session.Assign: in %s step: %w", s.Step, domain.ErrStep)
	}
	if !domain.IsImportField(field) {
		return fmt.Errorf("csvimport.Session.Assign: unknown field %q: %w", field, domain.ErrValidation)
	}
	if header == "" {
		delete(s.Mapping, field)
		return nil
	}
	if !slices.Contains(s.Headers, header) {
		return fmt.Errorf("csvimport.Session.Assign: unknown header %q: %w", header, domain.ErrValidation)
	}
	s.Mapping[field] = header
	return nil
}

// CanContinue reports whether the mapping step may advance.
func (s *Session) CanContinue() bool {
	return s.Step == StepMapping && len(s.Unmapped()) == 0
}

// Continue moves mapping to review once every required field is mapped.
func (s *Session) Continue() error {
	if s.Step != StepMapping {
		return fmt.Errorf("csvimport.Session.Continue: in %s step: %w", s.Step, domain.ErrStep)
	}
	if missing := s.Unmapped(); len(missing) > 0 {
		return fmt.Errorf("csvimport.Session.Continue: unmapped fields %s: %w",
			strings.Join(missing, ", "), domain.ErrValidation)
	}
	s.Step = StepReview
	return nil
}

// Back moves review to mapping, or mapping to upload. Leaving mapping
// discards the parsed file.
func (s *Session) Back() error {
	switch s.Step {
	case StepReview:
		s.Step = StepMapping
		s.Error = ""
	case StepMapping:
		s.reset()
	default:
		return fmt.Errorf("csvimport.Session.Back: in %s step: %w", s.Step, domain.ErrStep)
	}
	return nil
}

// RecordSubmitError keeps the session in review and notes the failure.
// Rows and mapping are left as they are so the submit can be retried.
func (s *Session) RecordSubmitError(err error) {
	if err == nil {
		return
	}
	msg := "Failed to upload prayer times"
	if errors.Is(err, domain.ErrValidation) {
		msg += ": " + domain.Message(err, domain.ErrValidation)
	}
	s.Error = msg
}

func (s *Session) reset() {
	s.Filename = ""
	s.Headers = nil
	s.Rows = nil
	s.Mapping = map[string]string{}
	s.Step = StepUpload
	s.Error = ""
}

// Resolve returns the value for field in row under mapping. An unmapped
// field, or a mapped header the row does not carry, yields "".
func Resolve(field string, mapping map[string]string, row map[string]string) string {
	header, ok := mapping[field]
	if !ok {
		return ""
	}
	return row[header]
}

// Project turns every row into a batch input for the session's masjid.
// Only valid in the review step.
func (s *Session) Project() ([]domain.PrayerTimeInput, error) {
	if s.Step != StepReview {
		return nil, fmt.Errorf("csvimport.Session.Project: in %s step: %w", s.Step, domain.ErrStep)
	}
	out := make([]domain.PrayerTimeInput, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = ProjectRow(s.MasjidID, s.Mapping, row)
	}
	return out, nil
}

// ProjectRow builds one batch input from a raw row. The record is always
// tagged with masjidID and marked active. A date in any accepted layout is
// rewritten as ISO; anything else is passed through for the batch
// validation to reject.
func ProjectRow(masjidID uuid.UUID, mapping, row map[string]string) domain.PrayerTimeInput {
	get := func(field string) string { return Resolve(field, mapping, row) }

	in := domain.PrayerTimeInput{
		MasjidID:     masjidID,
		Active:       true,
		Date:         get(domain.FieldDate),
		FajrStart:    get(domain.FieldFajrStart),
		FajrJammat:   get(domain.FieldFajrJammat),
		Sunrise:      get(domain.FieldSunrise),
		DhurStart:    get(domain.FieldDhurStart),
		DhurJammat:   get(domain.FieldDhurJammat),
		AsrStart:     get(domain.FieldAsrStart),
		AsrJammat:    get(domain.FieldAsrJammat),
		MagribStart:  get(domain.FieldMagribStart),
		MagribJammat: get(domain.FieldMagribJammat),
		IshaStart:    get(domain.FieldIshaStart),
		IshaJammat:   get(domain.FieldIshaJammat),
	}
	if t, ok := ParseDate(in.Date); ok {
		in.Date = t.Format(domain.DateLayout)
	}
	if v := get(domain.FieldAsrStart1); v != "" {
		in.AsrStart1 = &v
	}
	return in
}
