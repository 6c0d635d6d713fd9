package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/masjid-admin/internal/auth"
	"github.com/pkordes/masjid-admin/internal/domain"
)

type masjidKey struct{}

// masjidScope binds {masjidId}, checks the session may manage it and stores
// it in the request context for the handlers below.
func masjidScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "masjidId")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := auth.Authorize(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), masjidKey{}, id)))
	})
}

// masjidID returns the id stored by masjidScope.
func masjidID(r *http.Request) openapi_types.UUID {
	id, _ := r.Context().Value(masjidKey{}).(openapi_types.UUID)
	return id
}

// pathUUID binds a UUID path parameter the way generated servers do.
func pathUUID(r *http.Request, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, fmt.Errorf("%w: invalid %s", domain.ErrValidation, name)
	}
	return id, nil
}

// listParams are the optional query parameters of GET .../prayer-times.
type listParams struct {
	Date    *openapi_types.Date
	EndDate *openapi_types.Date
	Limit   *int
}

func bindListParams(r *http.Request) (listParams, error) {
	var p listParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "date", q, &p.Date); err != nil {
		return p, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}
	if err := runtime.BindQueryParameter("form", true, false, "end_date", q, &p.EndDate); err != nil {
		return p, fmt.Errorf("%w: end_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return p, fmt.Errorf("%w: limit must be an integer", domain.ErrValidation)
	}
	return p, nil
}

// query converts the bound parameters into the repo query.
func (p listParams) query() domain.PrayerTimeQuery {
	return domain.NewPrayerTimeQuery(dateString(p.Date), dateString(p.EndDate), p.Limit)
}

func dateString(d *openapi_types.Date) *string {
	if d == nil {
		return nil
	}
	s := d.Format(domain.DateLayout)
	return &s
}
