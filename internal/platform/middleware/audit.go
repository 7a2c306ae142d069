package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/platform/auth"
)

// AuditEntry captures who touched what, when, from where, and how.
type AuditEntry struct {
	UserID     int
	Username   string
	Resource   string
	ResourceID int
	PatientID  int
	Action     string // read, create, update, delete, export
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder persists audit entries. The concrete implementation lives in
// the audit domain package; this interface keeps the middleware decoupled so
// tests can provide a mock.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry)
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry)

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) {
	f(entry)
}

// Audit returns middleware that records every mutating request under /api/
// to the audit trail. Reads are logged but not persisted, which keeps the
// audit table focused on state changes while the structured log still shows
// the full access history.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !strings.HasPrefix(path, "/api/") {
				return next(c)
			}

			// Execute the handler first so we capture the response status
			err := next(c)

			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
			}

			ctx := req.Context()
			entry.UserID = auth.UserIDFromContext(ctx)
			entry.Username = auth.UsernameFromContext(ctx)

			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			entry.Action = auditAction(req.Method, path)
			entry.Resource, entry.ResourceID = parseResourcePath(path)
			entry.PatientID = extractPatientID(c)

			if entry.Action != "read" && len(recorders) > 0 && recorders[0] != nil {
				recorders[0].RecordAccess(entry)
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Int("user_id", entry.UserID).
				Str("username", entry.Username).
				Str("resource", entry.Resource).
				Int("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("api_access")

			return err
		}
	}
}

// auditAction maps a request to an audit action code. Document and
// spreadsheet downloads are tracked as exports regardless of method.
func auditAction(method, path string) string {
	if strings.HasSuffix(path, "/export") {
		return "export"
	}
	return httpMethodToAction(method)
}

// httpMethodToAction maps HTTP methods to audit action codes.
func httpMethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// parseResourcePath extracts the resource name and numeric id from an API
// path such as /api/patients/12 or /api/v1/antibiotics/3/stop.
func parseResourcePath(path string) (string, int) {
	trimmed := strings.TrimPrefix(path, "/api/")
	trimmed = strings.TrimPrefix(trimmed, "v1/")
	segments := strings.Split(trimmed, "/")
	if len(segments) == 0 || segments[0] == "" {
		return "unknown", 0
	}
	resource := segments[0]
	if len(segments) > 1 {
		if id, err := strconv.Atoi(segments[1]); err == nil {
			return resource, id
		}
	}
	return resource, 0
}

// extractPatientID attempts to find a patient identifier in the request,
// either from a /patients/<id> path segment or a patientId query parameter.
func extractPatientID(c echo.Context) int {
	path := c.Request().URL.Path

	if resource, id := parseResourcePath(path); resource == "patients" && id > 0 {
		return id
	}

	if raw := c.QueryParam("patientId"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			return id
		}
	}

	return 0
}
