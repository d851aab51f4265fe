package realtime

import (
	"sync"
)

// streamBuffer is how many undelivered events a stream may hold before Push
// starts dropping. Delivery is best effort; the client's next fetch of the
// conversation is the consistency fallback.
const streamBuffer = 16

// Registry maps a user id to that user's open event stream. At most one
// stream per user: a reconnect replaces the previous handle and the old
// stream is closed so its writer terminates. The registry is shared by every
// request handler, so all access goes through the mutex.
type Registry struct {
	mu      sync.RWMutex
	streams map[string]chan []byte
}

func NewRegistry() *Registry {
	return &Registry{streams: make(map[string]chan []byte)}
}

// Register creates a stream for userID, replacing and closing any previous
// one. The returned channel is owned by the registry; consumers must stop
// reading once it is closed.
func (r *Registry) Register(userID string) chan []byte {
	ch := make(chan []byte, streamBuffer)

	r.mu.Lock()
	if old, ok := r.streams[userID]; ok {
		close(old)
	}
	r.streams[userID] = ch
	r.mu.Unlock()

	return ch
}

// Unregister removes userID's stream, but only if ch is still the registered
// handle. A stale writer racing a fresh Register must not evict the new
// connection.
func (r *Registry) Unregister(userID string, ch chan []byte) {
	r.mu.Lock()
	if cur, ok := r.streams[userID]; ok && cur == ch {
		delete(r.streams, userID)
		close(cur)
	}
	r.mu.Unlock()
}

// Lookup returns the current stream for userID, if any.
func (r *Registry) Lookup(userID string) (chan []byte, bool) {
	r.mu.RLock()
	ch, ok := r.streams[userID]
	r.mu.RUnlock()
	return ch, ok
}

// Push delivers one event to userID's stream if one is registered and has
// buffer space. It reports whether the event was handed off; a false return
// means the recipient is offline or too far behind, and the event is dropped.
func (r *Registry) Push(userID string, event []byte) bool {
	// The read lock is held across the send attempt: channels are only
	// closed under the write lock, so a registered channel cannot be
	// closed out from under the send.
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.streams[userID]
	if !ok {
		return false
	}

	select {
	case ch <- event:
		return true
	default:
		return false
	}
}

// Connected reports how many streams are currently open.
func (r *Registry) Connected() int {
	r.mu.RLock()
	n := len(r.streams)
	r.mu.RUnlock()
	return n
}
