package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/platform/auth"
)

// mockRecorder collects audit entries for assertions.
type mockRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (m *mockRecorder) RecordAccess(entry AuditEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

func (m *mockRecorder) last() AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[len(m.entries)-1]
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// newTestContext creates an echo context with optional auth context values set.
func newTestContext(method, path string, opts ...func(*http.Request)) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func withAuth(userID int, username string) func(*http.Request) {
	return func(req *http.Request) {
		ctx := req.Context()
		ctx = context.WithValue(ctx, auth.UserIDKey, userID)
		ctx = context.WithValue(ctx, auth.UsernameKey, username)
		*req = *req.WithContext(ctx)
	}
}

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAudit_RecordsMutation(t *testing.T) {
	rec := &mockRecorder{}
	mw := Audit(testLogger(), rec)

	c, _ := newTestContext(http.MethodPost, "/api/patients", withAuth(3, "rrazera"))
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.count() != 1 {
		t.Fatalf("expected 1 audit entry, got %d", rec.count())
	}
	entry := rec.last()
	if entry.Action != "create" {
		t.Errorf("expected action create, got %s", entry.Action)
	}
	if entry.Resource != "patients" {
		t.Errorf("expected resource patients, got %s", entry.Resource)
	}
	if entry.UserID != 3 {
		t.Errorf("expected user id 3, got %d", entry.UserID)
	}
	if entry.Username != "rrazera" {
		t.Errorf("expected username rrazera, got %s", entry.Username)
	}
}

func TestAudit_SkipsReads(t *testing.T) {
	rec := &mockRecorder{}
	mw := Audit(testLogger(), rec)

	c, _ := newTestContext(http.MethodGet, "/api/patients/5", withAuth(1, "dev"))
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.count() != 0 {
		t.Errorf("expected no persisted entries for reads, got %d", rec.count())
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	rec := &mockRecorder{}
	mw := Audit(testLogger(), rec)

	c, _ := newTestContext(http.MethodPost, "/health")
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.count() != 0 {
		t.Errorf("expected no entries for non-API paths, got %d", rec.count())
	}
}

func TestHTTPMethodToAction(t *testing.T) {
	cases := map[string]string{
		http.MethodGet:    "read",
		http.MethodHead:   "read",
		http.MethodPost:   "create",
		http.MethodPut:    "update",
		http.MethodPatch:  "update",
		http.MethodDelete: "delete",
		"TRACE":           "read",
	}
	for method, want := range cases {
		if got := httpMethodToAction(method); got != want {
			t.Errorf("httpMethodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}

func TestParseResourcePath(t *testing.T) {
	cases := []struct {
		path     string
		resource string
		id       int
	}{
		{"/api/patients/12", "patients", 12},
		{"/api/patients", "patients", 0},
		{"/api/antibiotics/3/stop", "antibiotics", 3},
		{"/api/v1/cultures/7", "cultures", 7},
		{"/api/patients/abc", "patients", 0},
		{"/api/", "unknown", 0},
	}
	for _, tc := range cases {
		resource, id := parseResourcePath(tc.path)
		if resource != tc.resource || id != tc.id {
			t.Errorf("parseResourcePath(%s) = (%s, %d), want (%s, %d)",
				tc.path, resource, id, tc.resource, tc.id)
		}
	}
}

func TestExtractPatientID(t *testing.T) {
	c, _ := newTestContext(http.MethodDelete, "/api/patients/9")
	if got := extractPatientID(c); got != 9 {
		t.Errorf("expected patient id 9 from path, got %d", got)
	}

	c, _ = newTestContext(http.MethodPost, "/api/evolutions?patientId=4")
	if got := extractPatientID(c); got != 4 {
		t.Errorf("expected patient id 4 from query, got %d", got)
	}

	c, _ = newTestContext(http.MethodPost, "/api/evolutions")
	if got := extractPatientID(c); got != 0 {
		t.Errorf("expected 0 when absent, got %d", got)
	}
}

func TestAudit_RecordsExports(t *testing.T) {
	rec := &mockRecorder{}
	mw := Audit(testLogger(), rec)

	// Spreadsheet download is a GET, document export a POST; both are
	// persisted as exports.
	c, _ := newTestContext(http.MethodGet, "/api/v1/dashboard/timeline/export", withAuth(2, "dev"))
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, _ = newTestContext(http.MethodPost, "/api/v1/evolutions/7/export", withAuth(2, "dev"))
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.count() != 2 {
		t.Fatalf("expected 2 audit entries, got %d", rec.count())
	}
	for _, entry := range rec.entries {
		if entry.Action != "export" {
			t.Errorf("expected action export, got %s", entry.Action)
		}
	}
}

func TestAudit_CapturesUserAgent(t *testing.T) {
	rec := &mockRecorder{}
	mw := Audit(testLogger(), rec)

	c, _ := newTestContext(http.MethodPost, "/api/v1/patients", withAuth(1, "dev"),
		func(req *http.Request) {
			req.Header.Set("User-Agent", "consult-client/1.0")
		})
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.last().UserAgent; got != "consult-client/1.0" {
		t.Errorf("user agent = %q", got)
	}
}
