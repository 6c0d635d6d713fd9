// Package handler implements the HTTP handlers for the masjid admin API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (prayertime.go, calendar.go, imports.go, ...) but share the same
// Server struct so they can reach its dependencies.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/calendar"
	"github.com/pkordes/masjid-admin/internal/csvimport"
	"github.com/pkordes/masjid-admin/internal/domain"
	"github.com/pkordes/masjid-admin/internal/events"
	"github.com/pkordes/masjid-admin/internal/service"
)

// PrayerTimeServicer defines the prayer time operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type PrayerTimeServicer interface {
	List(ctx context.Context, masjidID uuid.UUID, q domain.PrayerTimeQuery) ([]domain.PrayerTime, error)
	GetByID(ctx context.Context, masjidID, id uuid.UUID) (domain.PrayerTime, error)
	BatchCreate(ctx context.Context, masjidID uuid.UUID, inputs []domain.PrayerTimeInput) (domain.BatchResult, error)
	Update(ctx context.Context, masjidID, id uuid.UUID, patch domain.PrayerTimePatch) (domain.PrayerTime, error)
}

// CalendarServicer builds month views.
type CalendarServicer interface {
	Grid(ctx context.Context, masjidID uuid.UUID, req service.GridRequest) (service.MonthView, error)
}

// ImportServicer drives import sessions.
type ImportServicer interface {
	Open(ctx context.Context, masjidID uuid.UUID) (*csvimport.Session, error)
	Get(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error)
	UploadFile(ctx context.Context, masjidID, id uuid.UUID, r io.Reader, filename string) (*csvimport.Session, error)
	Assign(ctx context.Context, masjidID, id uuid.UUID, assignments map[string]string) (*csvimport.Session, error)
	Suggest(ctx context.Context, masjidID, id uuid.UUID) (map[string]string, error)
	Continue(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error)
	Back(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error)
	Review(ctx context.Context, masjidID, id uuid.UUID) (csvimport.Summary, error)
	Submit(ctx context.Context, masjidID, id uuid.UUID) (domain.BatchResult, error)
	Close(ctx context.Context, masjidID, id uuid.UUID) error
}

// Exporter writes a month in the import schema.
type Exporter interface {
	Export(ctx context.Context, w io.Writer, masjidID uuid.UUID, m calendar.Month) error
	Filename(m calendar.Month) string
}

// Server holds the dependencies of every handler.
type Server struct {
	prayers  PrayerTimeServicer
	calendar CalendarServicer
	imports  ImportServicer
	export   Exporter
	hub      *events.Hub
}

// NewServer constructs the Server with all its dependencies. Any of them may
// be nil in tests that only exercise other routes.
func NewServer(prayers PrayerTimeServicer, cal CalendarServicer, imports ImportServicer, export Exporter, hub *events.Hub) *Server {
	return &Server{prayers: prayers, calendar: cal, imports: imports, export: export, hub: hub}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil)
}

// Routes returns the API router. Everything except the health check and the
// OpenAPI document sits behind authn; routes under /masjids/{masjidId} are
// further limited to sessions that may manage that masjid.
func (s *Server) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Get("/ws", s.ServeEvents)

		r.Route("/masjids/{masjidId}", func(r chi.Router) {
			r.Use(masjidScope)

			r.Get("/calendar", s.GetCalendar)

			r.Route("/prayer-times", func(r chi.Router) {
				r.Get("/", s.ListPrayerTimes)
				r.Post("/batch", s.BatchCreatePrayerTimes)
				r.Get("/export", s.ExportPrayerTimes)
				r.Get("/{id}", s.GetPrayerTime)
				r.Patch("/{id}", s.UpdatePrayerTime)
			})

			r.Route("/imports", func(r chi.Router) {
				r.Post("/", s.OpenImport)
				r.Route("/{sessionId}", func(r chi.Router) {
					r.Get("/", s.GetImport)
					r.Delete("/", s.CloseImport)
					r.Post("/file", s.UploadImportFile)
					r.Put("/mapping", s.AssignImportMapping)
					r.Get("/suggestions", s.SuggestImportMapping)
					r.Post("/continue", s.ContinueImport)
					r.Post("/back", s.BackImport)
					r.Get("/review", s.ReviewImport)
					r.Post("/submit", s.SubmitImport)
				})
			})
		})
	})
	return r
}
