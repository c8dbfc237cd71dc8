package http

import (
	"sync"
	"time"
)

const (
	// mutationLimit caps mutating requests per client and window. Reads are
	// never limited; a dashboard polling reports must not starve writes.
	mutationLimit  = 60
	limitWindow    = time.Minute
	limiterGC      = 5 * time.Minute
	limiterStaleAt = 10 * time.Minute
)

// mutationLimiter counts mutating requests per client IP in fixed windows.
// Stale clients are swept inline on the mutation path, so the limiter needs
// no background goroutine and nothing to shut down.
type mutationLimiter struct {
	mu        sync.Mutex
	windows   map[string]*limitWindowState
	lastSweep time.Time
}

type limitWindowState struct {
	started time.Time
	count   int
}

func newMutationLimiter() *mutationLimiter {
	return &mutationLimiter{
		windows:   make(map[string]*limitWindowState),
		lastSweep: time.Now(),
	}
}

// allow records one mutation attempt for the client and reports whether it
// fits the current window.
func (ml *mutationLimiter) allow(clientIP string) bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := time.Now()
	if now.Sub(ml.lastSweep) > limiterGC {
		ml.sweep(now)
	}

	w, ok := ml.windows[clientIP]
	if !ok || now.Sub(w.started) > limitWindow {
		ml.windows[clientIP] = &limitWindowState{started: now, count: 1}
		return true
	}

	w.count++
	return w.count <= mutationLimit
}

// sweep drops clients whose window started long enough ago that keeping the
// entry only wastes memory. Caller holds the lock.
func (ml *mutationLimiter) sweep(now time.Time) {
	for ip, w := range ml.windows {
		if now.Sub(w.started) > limiterStaleAt {
			delete(ml.windows, ip)
		}
	}
	ml.lastSweep = now
}
