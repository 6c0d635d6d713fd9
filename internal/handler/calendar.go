package handler

import (
	"net/http"

	"github.com/pkordes/masjid-admin/internal/service"
)

// GetCalendar handles GET /masjids/{masjidId}/calendar?month=&clock=&tz=.
// Every parameter is optional: month defaults to the current month in tz,
// clock to 24h and tz to the server's zone.
func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := s.calendar.Grid(r.Context(), masjidID(r), service.GridRequest{
		Month: q.Get("month"),
		Clock: q.Get("clock"),
		TZ:    q.Get("tz"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
