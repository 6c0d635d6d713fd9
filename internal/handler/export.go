// Package handler: export.go implements GET .../prayer-times/export.
// Returns one month of prayer times as CSV in the import schema.
package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/pkordes/masjid-admin/internal/calendar"
)

// ExportPrayerTimes handles GET /masjids/{masjidId}/prayer-times/export?month=.
// The CSV uses the import schema, so it can be edited and uploaded again.
func (s *Server) ExportPrayerTimes(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("month")
	if ref == "" {
		requestError(w, "month is required")
		return
	}
	m, err := calendar.ParseMonth(ref)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Buffer so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := s.export.Export(r.Context(), &buf, masjidID(r), m); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+s.export.Filename(m)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
