package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/scribe/scribe/internal/auth"
	"github.com/scribe/scribe/internal/service"
)

// AccessTokenHeader carries a reissued access token on responses.
const AccessTokenHeader = "X-Access-Token"

// CallerResolver resolves the raw Authorization header to a caller.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, authorization string) (*service.Caller, error)
}

// Auth returns a middleware that requires a valid bearer token.
// The resolved user is stored in the request context; handlers read it
// with auth.CallerFromContext and never trust client-supplied owner fields.
func Auth(resolver CallerResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := resolver.ResolveCaller(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				attrs := []any{
					slog.String("error", err.Error()),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				}

				switch {
				case errors.Is(err, service.ErrUnauthenticated):
					logger.Warn("authentication failed", attrs...)
					writeAuthError(w)
				case errors.Is(err, service.ErrUnavailable):
					logger.Error("store unavailable during auth", attrs...)
					writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
				default:
					logger.Error("auth error", attrs...)
					writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				}
				return
			}

			if caller.ReissuedToken != "" {
				w.Header().Set(AccessTokenHeader, caller.ReissuedToken)
			}

			ctx := auth.ContextWithCaller(r.Context(), caller.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="scribe"`)
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
}
