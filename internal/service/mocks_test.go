package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/domain"
	"github.com/pkordes/masjid-admin/internal/repo"
	"github.com/pkordes/masjid-admin/internal/service"
)

// mockPrayerTimeRepo is a hand-written test double for repo.PrayerTimeRepo.
// Each method is a function field; set only the ones your test needs.
type mockPrayerTimeRepo struct {
	list        func(ctx context.Context, masjidID uuid.UUID, q domain.PrayerTimeQuery) ([]domain.PrayerTime, error)
	getByID     func(ctx context.Context, masjidID, id uuid.UUID) (domain.PrayerTime, error)
	batchUpsert func(ctx context.Context, masjidID uuid.UUID, records []domain.PrayerTime) (int, error)
	update      func(ctx context.Context, rec domain.PrayerTime) (domain.PrayerTime, error)
}

func (m *mockPrayerTimeRepo) List(ctx context.Context, masjidID uuid.UUID, q domain.PrayerTimeQuery) ([]domain.PrayerTime, error) {
	return m.list(ctx, masjidID, q)
}
func (m *mockPrayerTimeRepo) GetByID(ctx context.Context, masjidID, id uuid.UUID) (domain.PrayerTime, error) {
	return m.getByID(ctx, masjidID, id)
}
func (m *mockPrayerTimeRepo) BatchUpsert(ctx context.Context, masjidID uuid.UUID, records []domain.PrayerTime) (int, error) {
	return m.batchUpsert(ctx, masjidID, records)
}
func (m *mockPrayerTimeRepo) Update(ctx context.Context, rec domain.PrayerTime) (domain.PrayerTime, error) {
	return m.update(ctx, rec)
}

// compile-time check: mockPrayerTimeRepo must satisfy repo.PrayerTimeRepo.
var _ repo.PrayerTimeRepo = (*mockPrayerTimeRepo)(nil)

type mockMasjidRepo struct {
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Masjid, error)
	markHasTimes func(ctx context.Context, id uuid.UUID) error
	create       func(ctx context.Context, m domain.Masjid) (domain.Masjid, error)
}

func (m *mockMasjidRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Masjid, error) {
	return m.getByID(ctx, id)
}
func (m *mockMasjidRepo) MarkHasTimes(ctx context.Context, id uuid.UUID) error {
	return m.markHasTimes(ctx, id)
}
func (m *mockMasjidRepo) Create(ctx context.Context, ms domain.Masjid) (domain.Masjid, error) {
	return m.create(ctx, ms)
}

var _ repo.MasjidRepo = (*mockMasjidRepo)(nil)

// existingMasjid answers GetByID and MarkHasTimes for any id.
func existingMasjid() *mockMasjidRepo {
	return &mockMasjidRepo{
		getByID:      func(_ context.Context, id uuid.UUID) (domain.Masjid, error) { return domain.Masjid{ID: id}, nil },
		markHasTimes: func(context.Context, uuid.UUID) error { return nil },
	}
}

// recordingInvalidator remembers every invalidation it receives.
type recordingInvalidator struct {
	mu   sync.Mutex
	got  []domain.Invalidation
	err  error
	hook func()
}

func (r *recordingInvalidator) Invalidate(_ context.Context, inv domain.Invalidation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hook != nil {
		r.hook()
	}
	r.got = append(r.got, inv)
	return r.err
}

func (r *recordingInvalidator) calls() []domain.Invalidation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Invalidation(nil), r.got...)
}

var _ service.Invalidator = (*recordingInvalidator)(nil)

type mockBatchCreator struct {
	batchCreate func(ctx context.Context, masjidID uuid.UUID, inputs []domain.PrayerTimeInput) (domain.BatchResult, error)
}

func (m *mockBatchCreator) BatchCreate(ctx context.Context, masjidID uuid.UUID, inputs []domain.PrayerTimeInput) (domain.BatchResult, error) {
	return m.batchCreate(ctx, masjidID, inputs)
}

var _ service.BatchCreator = (*mockBatchCreator)(nil)

// ---- fixtures --------------------------------------------------------------

func validInput(date string) domain.PrayerTimeInput {
	return domain.PrayerTimeInput{
		Active:       true,
		Date:         date,
		FajrStart:    "05:12",
		FajrJammat:   "05:45",
		Sunrise:      "07:01",
		DhurStart:    "12:10",
		DhurJammat:   "13:00",
		AsrStart:     "14:20",
		AsrJammat:    "15:00",
		MagribStart:  "16:05",
		MagribJammat: "16:10",
		IshaStart:    "17:40",
		IshaJammat:   "19:30",
	}
}

func storedRecord(masjidID uuid.UUID, date string) domain.PrayerTime {
	return domain.PrayerTime{
		ID:           uuid.New(),
		MasjidID:     masjidID,
		Date:         date,
		HijriDate:    "1 Rajab 1446",
		Active:       true,
		FajrStart:    "05:12:00",
		FajrJammat:   "05:45:00",
		Sunrise:      "07:01:00",
		DhurStart:    "12:10:00",
		DhurJammat:   "13:00:00",
		AsrStart:     "14:20:00",
		AsrJammat:    "15:00:00",
		MagribStart:  "16:05:00",
		MagribJammat: "16:10:00",
		IshaStart:    "17:40:00",
		IshaJammat:   "19:30:00",
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ptr[T any](v T) *T { return &v }
