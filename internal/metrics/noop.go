package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequest is a no-op.
func (n *NoopRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(result string) {}

// IncTokenRejected is a no-op.
func (n *NoopRecorder) IncTokenRejected() {}

// IncTokenReissued is a no-op.
func (n *NoopRecorder) IncTokenReissued() {}

// IncPostCreated is a no-op.
func (n *NoopRecorder) IncPostCreated() {}

// IncPostUpdated is a no-op.
func (n *NoopRecorder) IncPostUpdated() {}

// IncPostDeleted is a no-op.
func (n *NoopRecorder) IncPostDeleted() {}

// IncOwnershipDenied is a no-op.
func (n *NoopRecorder) IncOwnershipDenied() {}

// IncPostCacheHit is a no-op.
func (n *NoopRecorder) IncPostCacheHit() {}

// IncPostCacheMiss is a no-op.
func (n *NoopRecorder) IncPostCacheMiss() {}
