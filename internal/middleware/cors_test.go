package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/masjid-admin/internal/middleware"
)

const adminUI = "http://localhost:5173"

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSHandler(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		path          string
		origin        string
		requestMethod string
		// rs/cors compares Access-Control-Request-Headers verbatim against its
		// lowercased allow list, as browsers send them lowercased.
		requestHeaders string
		wantOrigin     string
		wantMethods    string
	}{
		{
			name: "calendar read from the admin UI", method: http.MethodGet,
			path: "/masjids/m/calendar", origin: adminUI, wantOrigin: adminUI,
		},
		{
			name: "unknown origin gets no allow header", method: http.MethodGet,
			path: "/masjids/m/calendar", origin: "http://evil.example.com",
		},
		{
			name: "batch upload preflight", method: http.MethodOptions,
			path: "/masjids/m/prayer-times/batch", origin: adminUI,
			requestMethod: http.MethodPost, requestHeaders: "authorization,content-type",
			wantOrigin: adminUI, wantMethods: http.MethodPost,
		},
		{
			name: "edit preflight allows PATCH", method: http.MethodOptions,
			path: "/masjids/m/prayer-times/p", origin: adminUI,
			requestMethod: http.MethodPatch, wantOrigin: adminUI, wantMethods: http.MethodPatch,
		},
		{
			name: "closing an import allows DELETE", method: http.MethodOptions,
			path: "/masjids/m/imports/s", origin: adminUI,
			requestMethod: http.MethodDelete, wantOrigin: adminUI, wantMethods: http.MethodDelete,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := middleware.NewCORSHandler([]string{adminUI})(okHandler)

			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Origin", tc.origin)
			if tc.requestMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tc.requestMethod)
			}
			if tc.requestHeaders != "" {
				req.Header.Set("Access-Control-Request-Headers", tc.requestHeaders)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Less(t, rec.Code, 300)
			assert.Equal(t, tc.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tc.wantMethods != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), tc.wantMethods)
			}
		})
	}
}

func TestCORSHandler_ExposesContentDisposition(t *testing.T) {
	h := middleware.NewCORSHandler([]string{adminUI})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="prayer-times-2025-01.csv"`)
	}))

	req := httptest.NewRequest(http.MethodGet, "/masjids/m/prayer-times/export?month=2025-01", nil)
	req.Header.Set("Origin", adminUI)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
