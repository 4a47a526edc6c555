package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exposes Recorder events as Prometheus collectors
// on a private registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	usersRegistered prometheus.Counter
	logins          *prometheus.CounterVec
	tokensRejected  prometheus.Counter
	tokensReissued  prometheus.Counter
	postOperations  *prometheus.CounterVec
	ownershipDenied prometheus.Counter
	postCache       *prometheus.CounterVec
}

// NewPrometheus creates a recorder with Go runtime and process collectors registered.
func NewPrometheus() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scribe_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scribe_users_registered_total",
			Help: "Users registered",
		}),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scribe_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		tokensRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scribe_tokens_rejected_total",
			Help: "Bearer tokens rejected",
		}),
		tokensReissued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scribe_tokens_reissued_total",
			Help: "Access tokens reissued on use",
		}),
		postOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scribe_post_operations_total",
				Help: "Post mutations by operation",
			},
			[]string{"operation"},
		),
		ownershipDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scribe_ownership_denied_total",
			Help: "Mutations rejected because the caller does not own the post",
		}),
		postCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scribe_post_cache_lookups_total",
				Help: "Post cache lookups by result",
			},
			[]string{"result"},
		),
	}

	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.requestDuration,
		p.usersRegistered,
		p.logins,
		p.tokensRejected,
		p.tokensReissued,
		p.postOperations,
		p.ownershipDenied,
		p.postCache,
	)

	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// ObserveRequest records request duration by route pattern.
func (p *PrometheusRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// IncUserRegistered increments the registration counter.
func (p *PrometheusRecorder) IncUserRegistered() {
	p.usersRegistered.Inc()
}

// IncLogin increments the login counter for result.
func (p *PrometheusRecorder) IncLogin(result string) {
	p.logins.WithLabelValues(result).Inc()
}

// IncTokenRejected increments the rejected token counter.
func (p *PrometheusRecorder) IncTokenRejected() {
	p.tokensRejected.Inc()
}

// IncTokenReissued increments the reissued token counter.
func (p *PrometheusRecorder) IncTokenReissued() {
	p.tokensReissued.Inc()
}

// IncPostCreated increments post created counter.
func (p *PrometheusRecorder) IncPostCreated() {
	p.postOperations.WithLabelValues("create").Inc()
}

// IncPostUpdated increments post updated counter.
func (p *PrometheusRecorder) IncPostUpdated() {
	p.postOperations.WithLabelValues("update").Inc()
}

// IncPostDeleted increments post deleted counter.
func (p *PrometheusRecorder) IncPostDeleted() {
	p.postOperations.WithLabelValues("delete").Inc()
}

// IncOwnershipDenied increments the forbidden mutation counter.
func (p *PrometheusRecorder) IncOwnershipDenied() {
	p.ownershipDenied.Inc()
}

// IncPostCacheHit increments cache hit counter.
func (p *PrometheusRecorder) IncPostCacheHit() {
	p.postCache.WithLabelValues("hit").Inc()
}

// IncPostCacheMiss increments cache miss counter.
func (p *PrometheusRecorder) IncPostCacheMiss() {
	p.postCache.WithLabelValues("miss").Inc()
}
