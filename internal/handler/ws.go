package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/auth"
	"github.com/pkordes/masjid-admin/internal/domain"
	"github.com/pkordes/masjid-admin/internal/events"
)

// ServeEvents handles GET /ws?masjid_id=, the invalidation push channel.
// A masjid admin always listens to their own masjid; an admin may name one
// or omit masjid_id to hear every masjid.
func (s *Server) ServeEvents(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())

	id := uuid.Nil
	if raw := r.URL.Query().Get("masjid_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid masjid_id", domain.ErrValidation))
			return
		}
		id = parsed
	} else if sess.Role == auth.RoleMasjidAdmin {
		id = sess.MasjidID
	}
	if id != uuid.Nil || sess.Role != auth.RoleAdmin {
		if err := auth.Authorize(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
	}

	events.Serve(s.hub, w, r, id)
}
