package middleware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scribe/scribe/internal/auth"
	"github.com/scribe/scribe/internal/model"
	"github.com/scribe/scribe/internal/service"
)

type stubResolver struct {
	caller *service.Caller
	err    error
	header string
}

func (s *stubResolver) ResolveCaller(_ context.Context, authorization string) (*service.Caller, error) {
	s.header = authorization
	return s.caller, s.err
}

func TestAuth(t *testing.T) {
	t.Parallel()

	user := &model.User{ID: model.NewID(), Name: "Ann", Email: "ann@x.com"}

	tests := []struct {
		name        string
		resolver    *stubResolver
		wantStatus  int
		wantCode    string
		wantReissue string
	}{
		{
			name:       "valid caller",
			resolver:   &stubResolver{caller: &service.Caller{User: user}},
			wantStatus: http.StatusOK,
		},
		{
			name:        "reissued token exposed",
			resolver:    &stubResolver{caller: &service.Caller{User: user, ReissuedToken: "fresh"}},
			wantStatus:  http.StatusOK,
			wantReissue: "fresh",
		},
		{
			name:       "expired token",
			resolver:   &stubResolver{err: fmt.Errorf("%w: token is expired", service.ErrUnauthenticated)},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "forged token",
			resolver:   &stubResolver{err: fmt.Errorf("%w: signature is invalid", service.ErrUnauthenticated)},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "store down",
			resolver:   &stubResolver{err: fmt.Errorf("resolve: %w", service.ErrUnavailable)},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name:       "unexpected error",
			resolver:   &stubResolver{err: fmt.Errorf("boom")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			var seen *model.User
			handler := Auth(tt.resolver, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = auth.CallerFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/blog/posts", nil)
			req.Header.Set("Authorization", "Bearer abc")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.resolver.header != "Bearer abc" {
				t.Errorf("resolver saw header %q", tt.resolver.header)
			}
			if got := rec.Header().Get(AccessTokenHeader); got != tt.wantReissue {
				t.Errorf("%s = %q, want %q", AccessTokenHeader, got, tt.wantReissue)
			}

			if tt.wantStatus == http.StatusOK {
				if seen == nil || seen.ID != user.ID {
					t.Errorf("caller in context = %+v, want %+v", seen, user)
				}
				return
			}

			if seen != nil {
				t.Error("next handler should not run on auth failure")
			}
			if !strings.Contains(rec.Body.String(), `"code":"`+tt.wantCode+`"`) {
				t.Errorf("body = %s, want code %s", rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestAuth_FailureBodiesAreIdentical(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reasons := []string{"missing authorization header", "token is expired", "signature is invalid", "subject no longer exists"}

	var bodies []string
	for _, reason := range reasons {
		resolver := &stubResolver{err: fmt.Errorf("%w: %s", service.ErrUnauthenticated, reason)}
		handler := Auth(resolver, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/blog/posts/x", nil))

		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Error("WWW-Authenticate header missing")
		}
		if strings.Contains(rec.Body.String(), reason) {
			t.Errorf("body leaks reason %q: %s", reason, rec.Body.String())
		}
		bodies = append(bodies, rec.Body.String())
	}

	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("body %d = %s, want %s", i, bodies[i], bodies[0])
		}
	}
}
