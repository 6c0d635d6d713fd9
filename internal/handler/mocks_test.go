package handler_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/masjid-admin/internal/auth"
	"github.com/pkordes/masjid-admin/internal/calendar"
	"github.com/pkordes/masjid-admin/internal/csvimport"
	"github.com/pkordes/masjid-admin/internal/domain"
	"github.com/pkordes/masjid-admin/internal/handler"
	"github.com/pkordes/masjid-admin/internal/middleware"
	"github.com/pkordes/masjid-admin/internal/service"
)

const testSecret = "handler-test-secret"

// mockPrayerTimeServicer is a test double for handler.PrayerTimeServicer.
// Set only the method fields your test needs.
type mockPrayerTimeServicer struct {
	list        func(ctx context.Context, masjidID uuid.UUID, q domain.PrayerTimeQuery) ([]domain.PrayerTime, error)
	getByID     func(ctx context.Context, masjidID, id uuid.UUID) (domain.PrayerTime, error)
	batchCreate func(ctx context.Context, masjidID uuid.UUID, inputs []domain.PrayerTimeInput) (domain.BatchResult, error)
	update      func(ctx context.Context, masjidID, id uuid.UUID, patch domain.PrayerTimePatch) (domain.PrayerTime, error)
}

func (m *mockPrayerTimeServicer) List(ctx context.Context, masjidID uuid.UUID, q domain.PrayerTimeQuery) ([]domain.PrayerTime, error) {
	return m.list(ctx, masjidID, q)
}
func (m *mockPrayerTimeServicer) GetByID(ctx context.Context, masjidID, id uuid.UUID) (domain.PrayerTime, error) {
	return m.getByID(ctx, masjidID, id)
}
func (m *mockPrayerTimeServicer) BatchCreate(ctx context.Context, masjidID uuid.UUID, inputs []domain.PrayerTimeInput) (domain.BatchResult, error) {
	return m.batchCreate(ctx, masjidID, inputs)
}
func (m *mockPrayerTimeServicer) Update(ctx context.Context, masjidID, id uuid.UUID, patch domain.PrayerTimePatch) (domain.PrayerTime, error) {
	return m.update(ctx, masjidID, id, patch)
}

// compile-time check: mockPrayerTimeServicer must satisfy handler.PrayerTimeServicer.
var _ handler.PrayerTimeServicer = (*mockPrayerTimeServicer)(nil)

type mockCalendarServicer struct {
	grid func(ctx context.Context, masjidID uuid.UUID, req service.GridRequest) (service.MonthView, error)
}

func (m *mockCalendarServicer) Grid(ctx context.Context, masjidID uuid.UUID, req service.GridRequest) (service.MonthView, error) {
	return m.grid(ctx, masjidID, req)
}

var _ handler.CalendarServicer = (*mockCalendarServicer)(nil)

type mockImportServicer struct {
	open       func(ctx context.Context, masjidID uuid.UUID) (*csvimport.Session, error)
	get        func(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error)
	uploadFile func(ctx context.Context, masjidID, id uuid.UUID, r io.Reader, filename string) (*csvimport.Session, error)
	assign     func(ctx context.Context, masjidID, id uuid.UUID, a map[string]string) (*csvimport.Session, error)
	suggest    func(ctx context.Context, masjidID, id uuid.UUID) (map[string]string, error)
	cont       func(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error)
	back       func(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error)
	review     func(ctx context.Context, masjidID, id uuid.UUID) (csvimport.Summary, error)
	submit     func(ctx context.Context, masjidID, id uuid.UUID) (domain.BatchResult, error)
	close      func(ctx context.Context, masjidID, id uuid.UUID) error
}

func (m *mockImportServicer) Open(ctx context.Context, masjidID uuid.UUID) (*csvimport.Session, error) {
	return m.open(ctx, masjidID)
}
func (m *mockImportServicer) Get(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error) {
	return m.get(ctx, masjidID, id)
}
func (m *mockImportServicer) UploadFile(ctx context.Context, masjidID, id uuid.UUID, r io.Reader, filename string) (*csvimport.Session, error) {
	return m.uploadFile(ctx, masjidID, id, r, filename)
}
func (m *mockImportServicer) Assign(ctx context.Context, masjidID, id uuid.UUID, a map[string]string) (*csvimport.Session, error) {
	return m.assign(ctx, masjidID, id, a)
}
func (m *mockImportServicer) Suggest(ctx context.Context, masjidID, id uuid.UUID) (map[string]string, error) {
	return m.suggest(ctx, masjidID, id)
}
func (m *mockImportServicer) Continue(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error) {
	return m.cont(ctx, masjidID, id)
}
func (m *mockImportServicer) Back(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error) {
	return m.back(ctx, masjidID, id)
}
func (m *mockImportServicer) Review(ctx context.Context, masjidID, id uuid.UUID) (csvimport.Summary, error) {
	return m.review(ctx, masjidID, id)
}
func (m *mockImportServicer) Submit(ctx context.Context, masjidID, id uuid.UUID) (domain.BatchResult, error) {
	return m.submit(ctx, masjidID, id)
}
func (m *mockImportServicer) Close(ctx context.Context, masjidID, id uuid.UUID) error {
	return m.close(ctx, masjidID, id)
}

var _ handler.ImportServicer = (*mockImportServicer)(nil)

type mockExporter struct {
	export func(ctx context.Context, w io.Writer, masjidID uuid.UUID, m calendar.Month) error
}

func (m *mockExporter) Export(ctx context.Context, w io.Writer, masjidID uuid.UUID, mo calendar.Month) error {
	return m.export(ctx, w, masjidID, mo)
}
func (m *mockExporter) Filename(mo calendar.Month) string {
	return "prayer-times-" + mo.String() + ".csv"
}

var _ handler.Exporter = (*mockExporter)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires srv behind the real JWT middleware, the same way
// main.go does.
func newHTTPHandler(srv *handler.Server) http.Handler {
	return srv.Routes(middleware.NewAuthHandler(testSecret))
}

// tokenFor issues a bearer token for a masjid admin of masjidID, or for a
// global admin when masjidID is uuid.Nil.
func tokenFor(t *testing.T, masjidID uuid.UUID) string {
	t.Helper()
	s := auth.Session{UserID: uuid.New(), Email: "admin@example.org", Role: auth.RoleAdmin}
	if masjidID != uuid.Nil {
		s.Role = auth.RoleMasjidAdmin
		s.MasjidID = masjidID
	}
	tok, err := auth.IssueToken(s, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

// authed sets the bearer token of a masjid admin of masjidID on req.
func authed(t *testing.T, req *http.Request, masjidID uuid.UUID) *http.Request {
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, masjidID))
	return req
}
