// Package service contains the business logic for the masjid admin API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/calendar"
	"github.com/pkordes/masjid-admin/internal/domain"
	"github.com/pkordes/masjid-admin/internal/repo"
)

// MonthStore caches one month of a masjid's records. Entries are keyed by a
// version that invalidation bumps, so the version must be read before the
// database query whose result is stored.
type MonthStore interface {
	Version(ctx context.Context, masjidID uuid.UUID) (int64, error)
	Get(ctx context.Context, masjidID uuid.UUID, month string, version int64) ([]domain.PrayerTime, bool, error)
	Set(ctx context.Context, masjidID uuid.UUID, month string, version int64, recs []domain.PrayerTime) error
}

// Invalidator is told when a masjid's prayer times change.
type Invalidator interface {
	Invalidate(ctx context.Context, inv domain.Invalidation) error
}

// Invalidators fans one invalidation out to every member in order. A failing
// member does not stop the rest; all failures are returned joined.
type Invalidators []Invalidator

// Invalidate implements Invalidator.
func (is Invalidators) Invalidate(ctx context.Context, inv domain.Invalidation) error {
	var errs []error
	for _, i := range is {
		if err := i.Invalidate(ctx, inv); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PrayerTimeService implements business logic for prayer time operations.
type PrayerTimeService struct {
	prayers     repo.PrayerTimeRepo
	masjids     repo.MasjidRepo
	cache       MonthStore
	invalidator Invalidator
	hijriAdjust int
	validate    *validator.Validate
}

// NewPrayerTimeService constructs a PrayerTimeService. cache and inv may be
// nil, in which case months are always read from the repo and writes notify
// nobody.
func NewPrayerTimeService(prayers repo.PrayerTimeRepo, masjids repo.MasjidRepo, cache MonthStore, inv Invalidator, hijriAdjust int) *PrayerTimeService {
	return &PrayerTimeService{
		prayers:     prayers,
		masjids:     masjids,
		cache:       cache,
		invalidator: inv,
		hijriAdjust: hijriAdjust,
		validate:    newValidator(),
	}
}

// List returns the masjid's records within the query's optional date bounds.
// Always returns a non-nil slice.
func (s *PrayerTimeService) List(ctx context.Context, masjidID uuid.UUID, q domain.PrayerTimeQuery) ([]domain.PrayerTime, error) {
	var problems []string
	for name, d := range map[string]*string{"date": q.StartDate, "end_date": q.EndDate} {
		if d != nil && s.validate.Var(*d, "isodate") != nil {
			problems = append(problems, fmt.Sprintf("%s must be a date (YYYY-MM-DD), got %q", name, *d))
		}
	}
	if len(problems) == 0 && q.StartDate != nil && q.EndDate != nil && *q.EndDate < *q.StartDate {
		problems = append(problems, "end_date must not be before date")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("service.PrayerTimeService.List: %w", validationError(problems))
	}

	recs, err := s.prayers.List(ctx, masjidID, q)
	if err != nil {
		return nil, fmt.Errorf("service.PrayerTimeService.List: %w", err)
	}
	if recs == nil {
		return []domain.PrayerTime{}, nil
	}
	return recs, nil
}

// GetByID returns a single record of the masjid.
func (s *PrayerTimeService) GetByID(ctx context.Context, masjidID, id uuid.UUID) (domain.PrayerTime, error) {
	rec, err := s.prayers.GetByID(ctx, masjidID, id)
	if err != nil {
		return domain.PrayerTime{}, fmt.Errorf("service.PrayerTimeService.GetByID: %w", err)
	}
	return rec, nil
}

// BatchCreate validates every input, then writes them all in one transaction.
// Dates that already exist for the masjid are overwritten. On success the
// masjid is flagged as having times and the written date range is
// invalidated; invalidation never happens for a failed write.
func (s *PrayerTimeService) BatchCreate(ctx context.Context, masjidID uuid.UUID, inputs []domain.PrayerTimeInput) (domain.BatchResult, error) {
	if len(inputs) == 0 {
		return domain.BatchResult{}, fmt.Errorf("service.PrayerTimeService.BatchCreate: %w",
			validationError([]string{"at least one prayer time is required"}))
	}
	if _, err := s.masjids.GetByID(ctx, masjidID); err != nil {
		return domain.BatchResult{}, fmt.Errorf("service.PrayerTimeService.BatchCreate: %w", err)
	}

	var problems []string
	records := make([]domain.PrayerTime, 0, len(inputs))
	for i, in := range inputs {
		if in.AsrStart1 != nil && strings.TrimSpace(*in.AsrStart1) == "" {
			in.AsrStart1 = nil
		}
		if in.MasjidID != uuid.Nil && in.MasjidID != masjidID {
			problems = append(problems, fmt.Sprintf("row %d: masjid_id does not match the masjid", i+1))
		}
		if err := s.validate.Struct(in); err != nil {
			for _, p := range describe(err) {
				problems = append(problems, fmt.Sprintf("row %d: %s", i+1, p))
			}
			continue
		}
		rec, err := s.fromInput(masjidID, in)
		if err != nil {
			problems = append(problems, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		records = append(records, rec)
	}
	if len(problems) > 0 {
		return domain.BatchResult{}, fmt.Errorf("service.PrayerTimeService.BatchCreate: %w", validationError(problems))
	}

	n, err := s.prayers.BatchUpsert(ctx, masjidID, records)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("service.PrayerTimeService.BatchCreate: %w", err)
	}
	if err := s.masjids.MarkHasTimes(ctx, masjidID); err != nil {
		slog.WarnContext(ctx, "mark has_times failed", "masjid_id", masjidID, "error", err)
	}

	start, end := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		start, end = min(start, r.Date), max(end, r.Date)
	}
	s.invalidate(ctx, domain.Invalidation{MasjidID: masjidID, Start: start, End: end})

	return domain.BatchResult{Count: n, StartDate: start, EndDate: end}, nil
}

// Update applies patch to an existing record. A changed date recomputes the
// Hijri date. Both the old and new dates are invalidated.
func (s *PrayerTimeService) Update(ctx context.Context, masjidID, id uuid.UUID, patch domain.PrayerTimePatch) (domain.PrayerTime, error) {
	if patch.IsEmpty() {
		return domain.PrayerTime{}, fmt.Errorf("service.PrayerTimeService.Update: %w",
			validationError([]string{"at least one field is required"}))
	}
	if err := s.validate.Struct(patch); err != nil {
		return domain.PrayerTime{}, fmt.Errorf("service.PrayerTimeService.Update: %w", validationError(describe(err)))
	}

	current, err := s.prayers.GetByID(ctx, masjidID, id)
	if err != nil {
		return domain.PrayerTime{}, fmt.Errorf("service.PrayerTimeService.Update: %w", err)
	}
	merged := applyPatch(current, patch)
	if merged.Date != current.Date {
		hijri, err := domain.HijriString(merged.Date, s.hijriAdjust)
		if err != nil {
			return domain.PrayerTime{}, fmt.Errorf("service.PrayerTimeService.Update: %w", err)
		}
		merged.HijriDate = hijri
	}

	updated, err := s.prayers.Update(ctx, merged)
	if err != nil {
		return domain.PrayerTime{}, fmt.Errorf("service.PrayerTimeService.Update: %w", err)
	}

	s.invalidate(ctx, domain.Invalidation{
		MasjidID: masjidID,
		Start:    min(current.Date, updated.Date),
		End:      max(current.Date, updated.Date),
	})
	return updated, nil
}

// Month returns every record of the masjid inside m, read through the month
// cache. Cache failures are logged and fall back to the repo.
func (s *PrayerTimeService) Month(ctx context.Context, masjidID uuid.UUID, m calendar.Month) ([]domain.PrayerTime, error) {
	key := m.String()
	version, cached := int64(0), s.cache != nil
	if cached {
		var err error
		if version, err = s.cache.Version(ctx, masjidID); err != nil {
			slog.WarnContext(ctx, "month cache unavailable", "masjid_id", masjidID, "error", err)
			cached = false
		}
	}
	if cached {
		recs, ok, err := s.cache.Get(ctx, masjidID, key, version)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "month cache read failed", "masjid_id", masjidID, "month", key, "error", err)
		case ok:
			return recs, nil
		}
	}

	start, end := m.Bounds()
	recs, err := s.List(ctx, masjidID, domain.Between(start, end))
	if err != nil {
		return nil, fmt.Errorf("service.PrayerTimeService.Month: %w", err)
	}
	if cached {
		if err := s.cache.Set(ctx, masjidID, key, version, recs); err != nil {
			slog.WarnContext(ctx, "month cache write failed", "masjid_id", masjidID, "month", key, "error", err)
		}
	}
	return recs, nil
}

func (s *PrayerTimeService) invalidate(ctx context.Context, inv domain.Invalidation) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, inv); err != nil {
		slog.WarnContext(ctx, "invalidation failed",
			"masjid_id", inv.MasjidID, "start", inv.Start, "end", inv.End, "error", err)
	}
}

func (s *PrayerTimeService) fromInput(masjidID uuid.UUID, in domain.PrayerTimeInput) (domain.PrayerTime, error) {
	hijri, err := domain.HijriString(in.Date, s.hijriAdjust)
	if err != nil {
		return domain.PrayerTime{}, err
	}
	return domain.PrayerTime{
		MasjidID:     masjidID,
		Date:         in.Date,
		HijriDate:    hijri,
		Active:       in.Active,
		FajrStart:    in.FajrStart,
		FajrJammat:   in.FajrJammat,
		Sunrise:      in.Sunrise,
		DhurStart:    in.DhurStart,
		DhurJammat:   in.DhurJammat,
		AsrStart:     in.AsrStart,
		AsrStart1:    in.AsrStart1,
		AsrJammat:    in.AsrJammat,
		MagribStart:  in.MagribStart,
		MagribJammat: in.MagribJammat,
		IshaStart:    in.IshaStart,
		IshaJammat:   in.IshaJammat,
	}, nil
}

func applyPatch(p domain.PrayerTime, patch domain.PrayerTimePatch) domain.PrayerTime {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Date, patch.Date)
	set(&p.FajrStart, patch.FajrStart)
	set(&p.FajrJammat, patch.FajrJammat)
	set(&p.Sunrise, patch.Sunrise)
	set(&p.DhurStart, patch.DhurStart)
	set(&p.DhurJammat, patch.DhurJammat)
	set(&p.AsrStart, patch.AsrStart)
	set(&p.AsrJammat, patch.AsrJammat)
	set(&p.MagribStart, patch.MagribStart)
	set(&p.MagribJammat, patch.MagribJammat)
	set(&p.IshaStart, patch.IshaStart)
	set(&p.IshaJammat, patch.IshaJammat)
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.AsrStart1 != nil {
		if *patch.AsrStart1 == "" {
			p.AsrStart1 = nil
		} else {
			v := *patch.AsrStart1
			p.AsrStart1 = &v
		}
	}
	return p
}
