package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Requests        uint64
	RequestTotalNs  int64
	UsersRegistered uint64
	LoginSuccesses  uint64
	LoginFailures   uint64
	TokensRejected  uint64
	TokensReissued  uint64
	PostsCreated    uint64
	PostsUpdated    uint64
	PostsDeleted    uint64
	OwnershipDenied uint64
	PostCacheHits   uint64
	PostCacheMisses uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	requests        atomic.Uint64
	requestTotalNs  atomic.Int64
	usersRegistered atomic.Uint64
	loginSuccesses  atomic.Uint64
	loginFailures   atomic.Uint64
	tokensRejected  atomic.Uint64
	tokensReissued  atomic.Uint64
	postsCreated    atomic.Uint64
	postsUpdated    atomic.Uint64
	postsDeleted    atomic.Uint64
	ownershipDenied atomic.Uint64
	postCacheHits   atomic.Uint64
	postCacheMisses atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Requests:        m.requests.Load(),
		RequestTotalNs:  m.requestTotalNs.Load(),
		UsersRegistered: m.usersRegistered.Load(),
		LoginSuccesses:  m.loginSuccesses.Load(),
		LoginFailures:   m.loginFailures.Load(),
		TokensRejected:  m.tokensRejected.Load(),
		TokensReissued:  m.tokensReissued.Load(),
		PostsCreated:    m.postsCreated.Load(),
		PostsUpdated:    m.postsUpdated.Load(),
		PostsDeleted:    m.postsDeleted.Load(),
		OwnershipDenied: m.ownershipDenied.Load(),
		PostCacheHits:   m.postCacheHits.Load(),
		PostCacheMisses: m.postCacheMisses.Load(),
	}
}

// ObserveRequest records a request duration.
func (m *InMemoryRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requests.Add(1)
	m.requestTotalNs.Add(duration.Nanoseconds())
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	m.usersRegistered.Add(1)
}

// IncLogin increments the login counter for result.
func (m *InMemoryRecorder) IncLogin(result string) {
	if result == LoginSuccess {
		m.loginSuccesses.Add(1)
		return
	}
	m.loginFailures.Add(1)
}

// IncTokenRejected increments the rejected token counter.
func (m *InMemoryRecorder) IncTokenRejected() {
	m.tokensRejected.Add(1)
}

// IncTokenReissued increments the reissued token counter.
func (m *InMemoryRecorder) IncTokenReissued() {
	m.tokensReissued.Add(1)
}

// IncPostCreated increments post created counter.
func (m *InMemoryRecorder) IncPostCreated() {
	m.postsCreated.Add(1)
}

// IncPostUpdated increments post updated counter.
func (m *InMemoryRecorder) IncPostUpdated() {
	m.postsUpdated.Add(1)
}

// IncPostDeleted increments post deleted counter.
func (m *InMemoryRecorder) IncPostDeleted() {
	m.postsDeleted.Add(1)
}

// IncOwnershipDenied increments the forbidden mutation counter.
func (m *InMemoryRecorder) IncOwnershipDenied() {
	m.ownershipDenied.Add(1)
}

// IncPostCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncPostCacheHit() {
	m.postCacheHits.Add(1)
}

// IncPostCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncPostCacheMiss() {
	m.postCacheMisses.Add(1)
}
