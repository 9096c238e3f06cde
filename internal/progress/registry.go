// Package progress implements the in-process registry tracking bulk upload
// sessions. The registry is the single shared mutable resource between the
// background ingestion task and any number of live progress subscribers; it
// owns session lifecycle, update broadcast, and timed expiry.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an upload session.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// IsTerminal reports whether no further transitions occur.
func (s Status) IsTerminal() bool { return s == StatusComplete || s == StatusError }

// Snapshot is the full externally visible state of a session. This is the
// exact payload streamed to subscribers.
type Snapshot struct {
	Status Status `json:"status"`
	Saved  int    `json:"saved"`
	Total  int    `json:"total"`
	Error  string `json:"error,omitempty"`
}

// Update carries a partial state change; nil fields are left untouched.
type Update struct {
	Status *Status
	Saved  *int
	Total  *int
	Error  *string
}

// Subscriber is a live progress listener. Snapshots arrive on C; the channel
// is closed when the session is purged from the registry.
type Subscriber struct {
	ch chan Snapshot
}

// C returns the snapshot delivery channel.
func (s *Subscriber) C() <-chan Snapshot { return s.ch }

const subscriberBuffer = 16

type session struct {
	snapshot    Snapshot
	createdAt   time.Time
	subscribers []*Subscriber
	expiring    bool
}

// Registry maps session ids to mutable progress records. All methods are
// safe for concurrent use; updates within one session are applied and
// broadcast in the order received.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	grace    time.Duration

	// afterFunc is swappable so tests can trigger expiry synchronously.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewRegistry creates a registry whose terminal sessions are purged after
// the given grace period. A grace of 0 uses the 5 minute default.
func NewRegistry(grace time.Duration) *Registry {
	if grace <= 0 {
		grace = 5 * time.Minute
	}
	return &Registry{
		sessions:  make(map[string]*session),
		grace:     grace,
		afterFunc: time.AfterFunc,
	}
}

// Create allocates a new pending session and returns its id. The id is an
// opaque short-lived handle, not a security boundary.
func (r *Registry) Create() string {
	id := fmt.Sprintf("upload_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	r.mu.Lock()
	r.sessions[id] = &session{
		snapshot:  Snapshot{Status: StatusPending},
		createdAt: time.Now(),
	}
	r.mu.Unlock()
	return id
}

// Get returns the current snapshot for a session.
func (r *Registry) Get(id string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Snapshot{}, false
	}
	return s.snapshot, true
}

// Update merges the partial update into the session state and broadcasts the
// resulting snapshot to every attached subscriber. An unknown id is a silent
// no-op: callers legitimately race with expiry. Reaching a terminal status
// schedules deletion after the grace period.
func (r *Registry) Update(id string, u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return
	}

	if u.Status != nil {
		s.snapshot.Status = *u.Status
	}
	if u.Saved != nil {
		s.snapshot.Saved = *u.Saved
	}
	if u.Total != nil {
		s.snapshot.Total = *u.Total
	}
	if u.Error != nil {
		s.snapshot.Error = *u.Error
	}

	// Per-subscriber buffered channels: a saturated subscriber drops
	// intermediate snapshots rather than blocking the update or the other
	// subscribers. Terminal snapshots must still land, otherwise a slow
	// stream would show stale state until the grace-period purge; sends are
	// serialized under mu, so evicting one buffered snapshot guarantees room.
	for _, sub := range s.subscribers {
		select {
		case sub.ch <- s.snapshot:
			continue
		default:
		}
		if !s.snapshot.Status.IsTerminal() {
			continue
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- s.snapshot:
		default:
		}
	}

	if s.snapshot.Status.IsTerminal() && !s.expiring {
		s.expiring = true
		r.afterFunc(r.grace, func() { r.purge(id) })
	}
}

// Attach registers a subscriber and atomically returns the current snapshot,
// so a caller can render state-so-far without racing a concurrent update.
// Returns ok=false if the session does not exist; callers must surface
// "not found" rather than silently succeeding.
func (r *Registry) Attach(id string) (*Subscriber, Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, Snapshot{}, false
	}
	sub := &Subscriber{ch: make(chan Snapshot, subscriberBuffer)}
	s.subscribers = append(s.subscribers, sub)
	return sub, s.snapshot, true
}

// Detach removes a subscriber from a session. Idempotent; never errors.
func (r *Registry) Detach(id string, sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return
	}
	for i, existing := range s.subscribers {
		if existing == sub {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// purge drops the session and closes all subscriber channels so attached
// streams terminate.
func (r *Registry) purge(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return
	}
	for _, sub := range s.subscribers {
		close(sub.ch)
	}
	delete(r.sessions, id)
}

// Len reports the number of live sessions. Used by the health endpoint.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Helpers for building partial updates without local pointer noise.

// St wraps a Status for use in Update.
func St(s Status) *Status { return &s }

// N wraps an int for use in Update.
func N(n int) *int { return &n }

// Str wraps a string for use in Update.
func Str(s string) *string { return &s }
