// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes passed to IncLogin.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// HTTP metrics
	ObserveRequest(method, route string, status int, duration time.Duration)

	// Authentication metrics
	IncUserRegistered()
	IncLogin(result string) // result: LoginSuccess or LoginFailure
	IncTokenRejected()
	IncTokenReissued()

	// Post metrics
	IncPostCreated()
	IncPostUpdated()
	IncPostDeleted()
	IncOwnershipDenied()
	IncPostCacheHit()
	IncPostCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
