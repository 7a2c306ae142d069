package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	if KindOf(Validation("name", "name is required")) != KindValidation {
		t.Error("expected validation kind")
	}
	if KindOf(fmt.Errorf("plain")) != KindInternal {
		t.Error("expected internal kind for plain errors")
	}
	wrapped := fmt.Errorf("context: %w", NotFound("patient", 7))
	if !IsNotFound(wrapped) {
		t.Error("expected IsNotFound to see through wrapping")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Generation("openai request failed", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestToHTTP(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("age", "age must be positive"), http.StatusBadRequest},
		{NotFound("patient", 1), http.StatusNotFound},
		{Unauthorized("invalid credentials"), http.StatusUnauthorized},
		{Conflict("username already taken"), http.StatusConflict},
		{Generation("model error", nil), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		he := ToHTTP(tc.err)
		if he.Code != tc.status {
			t.Errorf("ToHTTP(%v): got status %d, want %d", tc.err, he.Code, tc.status)
		}
	}
}

func TestToHTTP_IncludesField(t *testing.T) {
	he := ToHTTP(Validation("leito", "leito is required"))
	body, ok := he.Message.(map[string]any)
	if !ok {
		t.Fatalf("expected map body, got %T", he.Message)
	}
	if body["field"] != "leito" {
		t.Errorf("expected field leito, got %v", body["field"])
	}
}
