package handler

import (
	"errors"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// PrayerTime is the JSON form of a stored record.
type PrayerTime struct {
	ID           openapi_types.UUID `json:"id"`
	MasjidID     openapi_types.UUID `json:"masjid_id"`
	Date         openapi_types.Date `json:"date"`
	HijriDate    string             `json:"hijri_date"`
	Active       bool               `json:"active"`
	FajrStart    string             `json:"fajr_start"`
	FajrJammat   string             `json:"fajr_jammat"`
	Sunrise      string             `json:"sunrise"`
	DhurStart    string             `json:"dhur_start"`
	DhurJammat   string             `json:"dhur_jammat"`
	AsrStart     string             `json:"asr_start"`
	AsrStart1    *string            `json:"asr_start_1"`
	AsrJammat    string             `json:"asr_jammat"`
	MagribStart  string             `json:"magrib_start"`
	MagribJammat string             `json:"magrib_jammat"`
	IshaStart    string             `json:"isha_start"`
	IshaJammat   string             `json:"isha_jammat"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// PrayerTimeList is the body of GET .../prayer-times.
type PrayerTimeList struct {
	Data  []PrayerTime `json:"data"`
	Count int          `json:"count"`
	Limit int          `json:"limit"`
}

// ListPrayerTimes handles GET /masjids/{masjidId}/prayer-times.
// Supports ?date=, ?end_date= (inclusive) and ?limit= (default and max 366).
func (s *Server) ListPrayerTimes(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := params.query()
	recs, err := s.prayers.List(r.Context(), masjidID(r), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := make([]PrayerTime, len(recs))
	for i, rec := range recs {
		data[i] = prayerTimeToResponse(rec)
	}
	writeJSON(w, http.StatusOK, PrayerTimeList{Data: data, Count: len(data), Limit: q.Limit})
}

// GetPrayerTime handles GET /masjids/{masjidId}/prayer-times/{id}, the edit seed.
func (s *Server) GetPrayerTime(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.prayers.GetByID(r.Context(), masjidID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prayerTimeToResponse(rec))
}

// BatchCreatePrayerTimes handles POST /masjids/{masjidId}/prayer-times/batch.
// The body is a JSON array of rows in the import schema.
func (s *Server) BatchCreatePrayerTimes(w http.ResponseWriter, r *http.Request) {
	var inputs []domain.PrayerTimeInput
	if err := decodeJSON(r, &inputs); err != nil {
		badBody(w, r, err)
		return
	}
	res, err := s.prayers.BatchCreate(r.Context(), masjidID(r), inputs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// UpdatePrayerTime handles PATCH /masjids/{masjidId}/prayer-times/{id}.
func (s *Server) UpdatePrayerTime(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch domain.PrayerTimePatch
	if err := decodeJSON(r, &patch); err != nil {
		badBody(w, r, err)
		return
	}
	updated, err := s.prayers.Update(r.Context(), masjidID(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prayerTimeToResponse(updated))
}

// badBody answers a body that could not be decoded.
func badBody(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, r, err)
		return
	}
	requestError(w, "invalid request body: "+err.Error())
}

// prayerTimeToResponse converts a domain.PrayerTime into its JSON form.
func prayerTimeToResponse(p domain.PrayerTime) PrayerTime {
	resp := PrayerTime{
		ID:           p.ID,
		MasjidID:     p.MasjidID,
		HijriDate:    p.HijriDate,
		Active:       p.Active,
		FajrStart:    p.FajrStart,
		FajrJammat:   p.FajrJammat,
		Sunrise:      p.Sunrise,
		DhurStart:    p.DhurStart,
		DhurJammat:   p.DhurJammat,
		AsrStart:     p.AsrStart,
		AsrStart1:    p.AsrStart1,
		AsrJammat:    p.AsrJammat,
		MagribStart:  p.MagribStart,
		MagribJammat: p.MagribJammat,
		IshaStart:    p.IshaStart,
		IshaJammat:   p.IshaJammat,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if t, err := time.Parse(domain.DateLayout, p.Date); err == nil {
		resp.Date = openapi_types.Date{Time: t}
	}
	return resp
}
