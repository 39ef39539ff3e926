package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{BadRequest("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{Unavailable("x"), http.StatusServiceUnavailable},
		{New(KindInternal, "x"), http.StatusInternalServerError},
		{New(KindUnknown, "x"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("kind %d: expected %d, got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestIsSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("set status: %w", NotFound("lead not found"))
	if !Is(err, KindNotFound) {
		t.Fatalf("expected wrapped error to be classified as not found")
	}
	if Is(errors.New("plain"), KindNotFound) {
		t.Fatalf("plain errors must not be classified")
	}
}

func TestValidationCarriesViolations(t *testing.T) {
	err := Validation("Validation failed", FieldViolation{Field: "logline", Message: "too short"})
	details, ok := err.Details.([]FieldViolation)
	if !ok || len(details) != 1 || details[0].Field != "logline" {
		t.Fatalf("unexpected details: %#v", err.Details)
	}
}
