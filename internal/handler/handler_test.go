package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scribe/scribe/internal/handler/dto"
	"github.com/scribe/scribe/internal/metrics"
	"github.com/scribe/scribe/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("NotFound status = %d, want 404", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "NOT_FOUND" {
		t.Errorf("NotFound code = %s, want NOT_FOUND", got)
	}

	rec = httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/blog/posts", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed status = %d, want 405", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}
}

func TestHandleServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &service.ValidationError{Field: "title", Message: "is required"}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("create: %w", &service.ValidationError{Field: "email", Message: "is invalid"}), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"email taken", service.ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
		{"invalid credentials", fmt.Errorf("%w: %s", service.ErrInvalidCredentials, service.ReasonWrongPassword), http.StatusBadRequest, "INVALID_CREDENTIALS"},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"not found", service.ErrPostNotFound, http.StatusNotFound, "POST_NOT_FOUND"},
		{"unavailable", fmt.Errorf("get post: %w: dial tcp: refused", service.ErrUnavailable), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unexpected", errors.New("pq: syntax error at position 42"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			handleServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), discardLogger(), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := rec.Body.String()
			if !strings.Contains(body, `"code":"`+tt.wantCode+`"`) {
				t.Errorf("body = %s, want code %s", body, tt.wantCode)
			}
			for _, leak := range []string{"pq:", "dial tcp", service.ReasonWrongPassword} {
				if strings.Contains(body, leak) {
					t.Errorf("body leaks internal detail %q: %s", leak, body)
				}
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"title":"Hi","content":"body"}`, false},
		{"unknown fields ignored", `{"title":"Hi","content":"body","author_id":"someone"}`, false},
		{"trailing whitespace", "{\"title\":\"Hi\"}\n", false},
		{"empty", ``, true},
		{"malformed", `{"title":`, true},
		{"wrong type", `{"title":42}`, true},
		{"two values", `{"title":"a"}{"title":"b"}`, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req dto.PostRequest
			err := decodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)), &req)
			if (err != nil) != tt.wantErr {
				t.Errorf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteDecodeError_TooLarge(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeDecodeError(rec, &http.MaxBytesError{Limit: 10})

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "PAYLOAD_TOO_LARGE" {
		t.Errorf("code = %s, want PAYLOAD_TOO_LARGE", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	t.Run("in-memory snapshot", func(t *testing.T) {
		t.Parallel()

		recorder := metrics.NewInMemory()
		recorder.IncPostCreated()
		recorder.IncLogin(metrics.LoginFailure)

		rec := httptest.NewRecorder()
		NewMetricsHandler(recorder).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		body := rec.Body.String()
		for _, want := range []string{
			`scribe_post_operations_total{operation="create"} 1`,
			`scribe_logins_total{result="failure"} 1`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("metrics output missing %q", want)
			}
		}
	})

	t.Run("prometheus registry", func(t *testing.T) {
		t.Parallel()

		recorder := metrics.NewPrometheus()
		recorder.IncUserRegistered()

		rec := httptest.NewRecorder()
		NewMetricsHandler(recorder).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		if !strings.Contains(rec.Body.String(), "scribe_users_registered_total 1") {
			t.Errorf("metrics output missing registered counter:\n%s", rec.Body.String())
		}
	})

	t.Run("no snapshot support", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		NewMetricsHandler(metrics.NewNoop()).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}
