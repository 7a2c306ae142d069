package middleware

import (
	"github.com/labstack/echo/v4"
)

// apiSecurityHeaders are set on every response. The consult API serves only
// JSON and file downloads to the clinical frontend, so the policy is
// deny-everything: no embedding, no resource loading, no referrer leakage,
// and no caching of responses that carry patient data.
var apiSecurityHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	// Legacy XSS filter off; the CSP below is the real control.
	"X-XSS-Protection":          "0",
	"Content-Security-Policy":   "default-src 'none'; frame-ancestors 'none'",
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	"Referrer-Policy":           "no-referrer",
	"Permissions-Policy":        "camera=(), microphone=(), geolocation=()",
	"Cache-Control":             "no-store",
}

// SecurityHeaders returns middleware that applies apiSecurityHeaders to
// every response before the handler runs.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for name, value := range apiSecurityHeaders {
				h.Set(name, value)
			}
			return next(c)
		}
	}
}
