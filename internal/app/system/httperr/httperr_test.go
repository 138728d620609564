package httperr_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"go.uber.org/zap"
)

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return body.Message
}

func TestValidationFailed(t *testing.T) {
	e := httperr.NewErrorLogger(zap.NewNop())
	req := httptest.NewRequest("POST", "/api/projects", nil)
	rec := httptest.NewRecorder()

	e.ValidationFailed(rec, req, []string{"name", "manager_id"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := decodeMessage(t, rec); got != "missing required fields: name, manager_id" {
		t.Errorf("message: got %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
}

func TestUnauthorized_GenericMessage(t *testing.T) {
	e := httperr.NewErrorLogger(zap.NewNop())

	// Two different failure causes must produce identical bodies.
	req := httptest.NewRequest("POST", "/api/auth/login", nil)

	recA := httptest.NewRecorder()
	e.Unauthorized(recA, req, "unknown login id")
	recB := httptest.NewRecorder()
	e.Unauthorized(recB, req, "password mismatch")

	if recA.Code != http.StatusUnauthorized || recB.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d and %d, want 401", recA.Code, recB.Code)
	}
	if recA.Body.String() != recB.Body.String() {
		t.Errorf("bodies differ: %q vs %q", recA.Body.String(), recB.Body.String())
	}
}

func TestNotFound(t *testing.T) {
	e := httperr.NewErrorLogger(zap.NewNop())
	req := httptest.NewRequest("GET", "/api/teams/abc", nil)
	rec := httptest.NewRecorder()

	e.NotFound(rec, req, "team")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := decodeMessage(t, rec); got != "team not found" {
		t.Errorf("message: got %q", got)
	}
}

func TestInternal_HidesDetail(t *testing.T) {
	e := httperr.NewErrorLogger(zap.NewNop())
	req := httptest.NewRequest("GET", "/api/users", nil)
	rec := httptest.NewRecorder()

	e.Internal(rec, req, "mongo query failed", context.DeadlineExceeded)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := decodeMessage(t, rec); got != "server error" {
		t.Errorf("message leaked detail: %q", got)
	}
}
