package handler

import (
	"fmt"
	"net/http"

	"github.com/scribe/scribe/internal/metrics"
)

// exposer is implemented by recorders that serve their own exposition format.
type exposer interface {
	Handler() http.Handler
}

// MetricsHandler exposes recorder metrics.
type MetricsHandler struct {
	recorder metrics.Recorder
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(recorder metrics.Recorder) *MetricsHandler {
	return &MetricsHandler{recorder: recorder}
}

// Metrics returns metrics in Prometheus exposition format.
// A Prometheus recorder serves its registry; an in-memory one is rendered
// from its snapshot.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	switch rec := h.recorder.(type) {
	case exposer:
		rec.Handler().ServeHTTP(w, r)
	case metrics.Snapshotter:
		writeSnapshot(w, rec.Snapshot())
	default:
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

func writeSnapshot(w http.ResponseWriter, snap metrics.Snapshot) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "scribe_http_requests_total %d\n", snap.Requests)
	writeMetric(w, "scribe_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestTotalNs)/1e9)

	writeMetric(w, "scribe_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "scribe_logins_total{result=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "scribe_logins_total{result=\"failure\"} %d\n", snap.LoginFailures)
	writeMetric(w, "scribe_tokens_rejected_total %d\n", snap.TokensRejected)
	writeMetric(w, "scribe_tokens_reissued_total %d\n", snap.TokensReissued)

	writeMetric(w, "scribe_post_operations_total{operation=\"create\"} %d\n", snap.PostsCreated)
	writeMetric(w, "scribe_post_operations_total{operation=\"update\"} %d\n", snap.PostsUpdated)
	writeMetric(w, "scribe_post_operations_total{operation=\"delete\"} %d\n", snap.PostsDeleted)
	writeMetric(w, "scribe_ownership_denied_total %d\n", snap.OwnershipDenied)

	writeMetric(w, "scribe_post_cache_lookups_total{result=\"hit\"} %d\n", snap.PostCacheHits)
	writeMetric(w, "scribe_post_cache_lookups_total{result=\"miss\"} %d\n", snap.PostCacheMisses)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
