package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToHTTP converts a service error into an echo HTTPError. Validation errors
// carry the offending field in the response body so clients can highlight it.
func ToHTTP(err error) *echo.HTTPError {
	var ae *Error
	if !errors.As(err, &ae) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	body := map[string]any{"message": ae.Msg}
	if ae.Field != "" {
		body["field"] = ae.Field
	}

	switch ae.Kind {
	case KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, body)
	case KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, body)
	case KindUnauthorized:
		return echo.NewHTTPError(http.StatusUnauthorized, body)
	case KindConflict:
		return echo.NewHTTPError(http.StatusConflict, body)
	case KindGeneration:
		return echo.NewHTTPError(http.StatusBadGateway, body)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, body)
	}
}
