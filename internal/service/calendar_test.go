package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/masjid-admin/internal/calendar"
	"github.com/pkordes/masjid-admin/internal/domain"
	"github.com/pkordes/masjid-admin/internal/service"
)

type mockMonthLoader struct {
	month func(ctx context.Context, masjidID uuid.UUID, m calendar.Month) ([]domain.PrayerTime, error)
}

func (m *mockMonthLoader) Month(ctx context.Context, masjidID uuid.UUID, mo calendar.Month) ([]domain.PrayerTime, error) {
	return m.month(ctx, masjidID, mo)
}

var _ service.MonthLoader = (*mockMonthLoader)(nil)

func loaderOf(recs ...domain.PrayerTime) *mockMonthLoader {
	return &mockMonthLoader{
		month: func(context.Context, uuid.UUID, calendar.Month) ([]domain.PrayerTime, error) { return recs, nil },
	}
}

func TestCalendarService_Grid(t *testing.T) {
	masjidID := uuid.New()
	svc := service.NewCalendarService(loaderOf(storedRecord(masjidID, "2025-01-15")), time.UTC)

	view, err := svc.Grid(context.Background(), masjidID, service.GridRequest{Month: "2025-01", Clock: "12h"})

	require.NoError(t, err)
	assert.Equal(t, "2025-01", view.Key)
	assert.Equal(t, "January 2025", view.Label)
	assert.Equal(t, "2024-12", view.Prev)
	assert.Equal(t, "2025-02", view.Next)
	assert.Equal(t, "UTC", view.Timezone)
	assert.False(t, view.Use24Hour)
	require.Len(t, view.Days, 31)
	assert.Equal(t, "5:45 AM", view.Days[14].Row.Fajr.Jamaat)
	assert.Len(t, view.Options, 14)
}

func TestCalendarService_Grid_DefaultsToCurrentMonthInZone(t *testing.T) {
	masjidID := uuid.New()
	var asked calendar.Month
	loader := &mockMonthLoader{
		month: func(_ context.Context, _ uuid.UUID, m calendar.Month) ([]domain.PrayerTime, error) {
			asked = m
			return []domain.PrayerTime{storedRecord(masjidID, "2025-02-01")}, nil
		},
	}
	svc := service.NewCalendarService(loader, time.UTC)
	// 23:30 UTC on 31 January is already 1 February in Karachi.
	service.SetCalendarClock(svc, time.Date(2025, 1, 31, 23, 30, 0, 0, time.UTC))

	view, err := svc.Grid(context.Background(), masjidID, service.GridRequest{TZ: "Asia/Karachi"})

	require.NoError(t, err)
	assert.Equal(t, calendar.Month{Year: 2025, Month: time.February}, asked)
	assert.True(t, view.Use24Hour)
	assert.Equal(t, 0, view.Today)
	assert.True(t, view.Days[0].IsToday)
	assert.Equal(t, "2025-01", view.Options[0].Value)
}

func TestCalendarService_Grid_Empty(t *testing.T) {
	svc := service.NewCalendarService(loaderOf(), time.UTC)

	view, err := svc.Grid(context.Background(), uuid.New(), service.GridRequest{Month: "2025-03-15"})

	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Empty(t, view.Days)
	assert.Equal(t, calendar.EmptyMessage, view.Message)
	assert.Equal(t, "2025-03", view.Key)
}

func TestCalendarService_Grid_Rejects(t *testing.T) {
	svc := service.NewCalendarService(loaderOf(), time.UTC)

	tests := map[string]service.GridRequest{
		"bad month": {Month: "March"},
		"bad clock": {Clock: "36h"},
		"bad zone":  {TZ: "Mars/Olympus"},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Grid(context.Background(), uuid.New(), req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
