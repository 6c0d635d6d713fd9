// Package domain contains the core data types for the masjid admin API.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (repo, service, handler, csvimport, calendar).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO calendar date format used for every date string in
// the API, the database projection and the import schema.
const DateLayout = "2006-01-02"

// PrayerTime is one calendar day's prayer schedule for one masjid.
// Date is unique per masjid. Time fields are "HH:MM" or "HH:MM:SS" strings;
// an empty string means the value is absent. AsrStart1 is the optional
// second (Hanafi) Asr start time.
type PrayerTime struct {
	ID           uuid.UUID
	MasjidID     uuid.UUID
	Date         string
	HijriDate    string
	Active       bool
	FajrStart    string
	FajrJammat   string
	Sunrise      string
	DhurStart    string
	DhurJammat   string
	AsrStart     string
	AsrStart1    *string
	AsrJammat    string
	MagribStart  string
	MagribJammat string
	IshaStart    string
	IshaJammat   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PrayerTimeInput is one row of a batch write. Values are carried as raw
// strings exactly as they arrived (from the import projection or a JSON body);
// the service validates them before anything reaches the repo.
type PrayerTimeInput struct {
	MasjidID     uuid.UUID `json:"masjid_id"`
	Active       bool      `json:"active"`
	Date         string    `json:"date" validate:"required,isodate"`
	FajrStart    string    `json:"fajr_start" validate:"required,clocktime"`
	FajrJammat   string    `json:"fajr_jammat" validate:"required,clocktime"`
	Sunrise      string    `json:"sunrise" validate:"required,clocktime"`
	DhurStart    string    `json:"dhur_start" validate:"required,clocktime"`
	DhurJammat   string    `json:"dhur_jammat" validate:"required,clocktime"`
	AsrStart     string    `json:"asr_start" validate:"required,clocktime"`
	AsrStart1    *string   `json:"asr_start_1,omitempty" validate:"omitempty,clocktime"`
	AsrJammat    string    `json:"asr_jammat" validate:"required,clocktime"`
	MagribStart  string    `json:"magrib_start" validate:"required,clocktime"`
	MagribJammat string    `json:"magrib_jammat" validate:"required,clocktime"`
	IshaStart    string    `json:"isha_start" validate:"required,clocktime"`
	IshaJammat   string    `json:"isha_jammat" validate:"required,clocktime"`
}

// PrayerTimePatch is a partial update. Nil fields are left unchanged.
// AsrStart1 pointing at "" clears the stored Hanafi time.
type PrayerTimePatch struct {
	Date         *string `json:"date,omitempty" validate:"omitempty,isodate"`
	Active       *bool   `json:"active,omitempty"`
	FajrStart    *string `json:"fajr_start,omitempty" validate:"omitempty,clocktime"`
	FajrJammat   *string `json:"fajr_jammat,omitempty" validate:"omitempty,clocktime"`
	Sunrise      *string `json:"sunrise,omitempty" validate:"omitempty,clocktime"`
	DhurStart    *string `json:"dhur_start,omitempty" validate:"omitempty,clocktime"`
	DhurJammat   *string `json:"dhur_jammat,omitempty" validate:"omitempty,clocktime"`
	AsrStart     *string `json:"asr_start,omitempty" validate:"omitempty,clocktime"`
	AsrStart1    *string `json:"asr_start_1,omitempty" validate:"omitempty,clocktime|len=0"`
	AsrJammat    *string `json:"asr_jammat,omitempty" validate:"omitempty,clocktime"`
	MagribStart  *string `json:"magrib_start,omitempty" validate:"omitempty,clocktime"`
	MagribJammat *string `json:"magrib_jammat,omitempty" validate:"omitempty,clocktime"`
	IshaStart    *string `json:"isha_start,omitempty" validate:"omitempty,clocktime"`
	IshaJammat   *string `json:"isha_jammat,omitempty" validate:"omitempty,clocktime"`
}

// IsEmpty reports whether the patch would change nothing.
func (p PrayerTimePatch) IsEmpty() bool {
	return p.Date == nil && p.Active == nil &&
		p.FajrStart == nil && p.FajrJammat == nil && p.Sunrise == nil &&
		p.DhurStart == nil && p.DhurJammat == nil &&
		p.AsrStart == nil && p.AsrStart1 == nil && p.AsrJammat == nil &&
		p.MagribStart == nil && p.MagribJammat == nil &&
		p.IshaStart == nil && p.IshaJammat == nil
}

// BatchResult acknowledges a successful batch write.
type BatchResult struct {
	Count     int    `json:"count"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Invalidation tells month-view consumers that prayer times for a masjid
// changed between Start and End (inclusive ISO dates).
type Invalidation struct {
	MasjidID uuid.UUID
	Start    string
	End      string
}
