package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/masjid-admin/internal/domain"
	"github.com/pkordes/masjid-admin/internal/repo"
	"github.com/pkordes/masjid-admin/testutil"
)

// newTestRepos returns both repos on one rolled-back transaction plus a
// freshly inserted masjid to scope records to.
func newTestRepos(t *testing.T) (repo.PrayerTimeRepo, repo.MasjidRepo, domain.Masjid) {
	t.Helper()
	tx := testutil.NewTx(t)
	masjids := repo.NewMasjidRepo(tx)

	m, err := masjids.Create(context.Background(), domain.Masjid{Name: "Test Masjid", Active: true})
	require.NoError(t, err, "create masjid")

	return repo.NewPrayerTimeRepo(tx), masjids, m
}

func prayerTimeFixture(date string) domain.PrayerTime {
	return domain.PrayerTime{
		Date:         date,
		HijriDate:    "1 Rajab 1446",
		Active:       true,
		FajrStart:    "05:12",
		FajrJammat:   "05:45",
		Sunrise:      "07:58",
		DhurStart:    "12:10",
		DhurJammat:   "12:45",
		AsrStart:     "13:55",
		AsrJammat:    "14:30",
		MagribStart:  "16:02",
		MagribJammat: "16:07",
		IshaStart:    "17:40",
		IshaJammat:   "19:30",
	}
}

func TestPrayerTimeRepo_BatchUpsert_InsertsAndLists(t *testing.T) {
	r, _, m := newTestRepos(t)
	ctx := context.Background()

	n, err := r.BatchUpsert(ctx, m.ID, []domain.PrayerTime{
		prayerTimeFixture("2025-01-02"),
		prayerTimeFixture("2025-01-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := r.List(ctx, m.ID, domain.PrayerTimeQuery{})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-01", got[0].Date, "ordered by date ascending")
	assert.Equal(t, "05:12:00", got[0].FajrStart, "times come back as HH:MM:SS")
	assert.Equal(t, m.ID, got[0].MasjidID)
	assert.Nil(t, got[0].AsrStart1)
	assert.NotEqual(t, uuid.Nil, got[0].ID)
}

func TestPrayerTimeRepo_BatchUpsert_ReplacesExistingDate(t *testing.T) {
	r, _, m := newTestRepos(t)
	ctx := context.Background()

	_, err := r.BatchUpsert(ctx, m.ID, []domain.PrayerTime{prayerTimeFixture("2025-01-01")})
	require.NoError(t, err)

	again := prayerTimeFixture("2025-01-01")
	again.FajrJammat = "06:00"
	asr1 := "14:40"
	again.AsrStart1 = &asr1
	_, err = r.BatchUpsert(ctx, m.ID, []domain.PrayerTime{again})
	require.NoError(t, err)

	got, err := r.List(ctx, m.ID, domain.PrayerTimeQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "06:00:00", got[0].FajrJammat)
	require.NotNil(t, got[0].AsrStart1)
	assert.Equal(t, "14:40:00", *got[0].AsrStart1)
}

func TestPrayerTimeRepo_BatchUpsert_AllOrNothing(t *testing.T) {
	r, _, m := newTestRepos(t)
	ctx := context.Background()

	bad := prayerTimeFixture("2025-01-02")
	bad.IshaJammat = "25:99"

	_, err := r.BatchUpsert(ctx, m.ID, []domain.PrayerTime{prayerTimeFixture("2025-01-01"), bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := r.List(ctx, m.ID, domain.PrayerTimeQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPrayerTimeRepo_List_DateRangeAndLimit(t *testing.T) {
	r, _, m := newTestRepos(t)
	ctx := context.Background()

	var recs []domain.PrayerTime
	for _, d := range []string{"2024-12-31", "2025-01-01", "2025-01-15", "2025-01-31", "2025-02-01"} {
		recs = append(recs, prayerTimeFixture(d))
	}
	_, err := r.BatchUpsert(ctx, m.ID, recs)
	require.NoError(t, err)

	got, err := r.List(ctx, m.ID, domain.Between("2025-01-01", "2025-01-31"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-01-01", got[0].Date)
	assert.Equal(t, "2025-01-31", got[2].Date)

	limit := 2
	got, err = r.List(ctx, m.ID, domain.NewPrayerTimeQuery(nil, nil, &limit))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPrayerTimeRepo_List_ScopedToMasjid(t *testing.T) {
	r, masjids, m := newTestRepos(t)
	ctx := context.Background()

	other, err := masjids.Create(ctx, domain.Masjid{Name: "Other", Active: true})
	require.NoError(t, err)
	_, err = r.BatchUpsert(ctx, other.ID, []domain.PrayerTime{prayerTimeFixture("2025-01-01")})
	require.NoError(t, err)

	got, err := r.List(ctx, m.ID, domain.PrayerTimeQuery{})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPrayerTimeRepo_GetByID(t *testing.T) {
	r, _, m := newTestRepos(t)
	ctx := context.Background()
	_, err := r.BatchUpsert(ctx, m.ID, []domain.PrayerTime{prayerTimeFixture("2025-01-01")})
	require.NoError(t, err)
	list, err := r.List(ctx, m.ID, domain.PrayerTimeQuery{})
	require.NoError(t, err)

	got, err := r.GetByID(ctx, m.ID, list[0].ID)

	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", got.Date)
}

func TestPrayerTimeRepo_GetByID_WrongMasjid(t *testing.T) {
	r, _, m := newTestRepos(t)
	ctx := context.Background()
	_, err := r.BatchUpsert(ctx, m.ID, []domain.PrayerTime{prayerTimeFixture("2025-01-01")})
	require.NoError(t, err)
	list, err := r.List(ctx, m.ID, domain.PrayerTimeQuery{})
	require.NoError(t, err)

	_, err = r.GetByID(ctx, uuid.New(), list[0].ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPrayerTimeRepo_Update(t *testing.T) {
	r, _, m := newTestRepos(t)
	ctx := context.Background()
	_, err := r.BatchUpsert(ctx, m.ID, []domain.PrayerTime{prayerTimeFixture("2025-01-01")})
	require.NoError(t, err)
	list, err := r.List(ctx, m.ID, domain.PrayerTimeQuery{})
	require.NoError(t, err)

	rec := list[0]
	rec.IshaJammat = "20:00"
	got, err := r.Update(ctx, rec)

	require.NoError(t, err)
	assert.Equal(t, "20:00:00", got.IshaJammat)
	assert.Equal(t, rec.FajrStart, got.FajrStart)
}

func TestPrayerTimeRepo_Update_NotFound(t *testing.T) {
	r, _, m := newTestRepos(t)
	rec := prayerTimeFixture("2025-01-01")
	rec.ID = uuid.New()
	rec.MasjidID = m.ID

	_, err := r.Update(context.Background(), rec)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMasjidRepo_MarkHasTimes(t *testing.T) {
	_, masjids, m := newTestRepos(t)
	ctx := context.Background()
	require.False(t, m.HasTimes)

	require.NoError(t, masjids.MarkHasTimes(ctx, m.ID))

	got, err := masjids.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.HasTimes)
}

func TestMasjidRepo_NotFound(t *testing.T) {
	_, masjids, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := masjids.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, masjids.MarkHasTimes(ctx, uuid.New()), domain.ErrNotFound)
}
