package realtime

import (
	"sync"
	"time"
)

// OriginQuota admits a bounded amount of work per client network origin in a
// sliding one-minute window. Exceeding the quota rejects new work; it never
// disconnects the client. The counter resets when the window rolls over.
type OriginQuota struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	origins map[string]*quotaWindow
	now     func() time.Time
}

type quotaWindow struct {
	start time.Time
	count int
}

func NewOriginQuota(limit int, window time.Duration) *OriginQuota {
	return &OriginQuota{
		limit:   limit,
		window:  window,
		origins: make(map[string]*quotaWindow),
		now:     time.Now,
	}
}

func (q *OriginQuota) Allow(origin string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	w, ok := q.origins[origin]
	if !ok || now.Sub(w.start) >= q.window {
		q.origins[origin] = &quotaWindow{start: now, count: 1}
		q.prune(now)
		return true
	}
	if w.count >= q.limit {
		return false
	}
	w.count++
	return true
}

// prune drops expired windows so long-gone origins do not accumulate.
// Called with the mutex held.
func (q *OriginQuota) prune(now time.Time) {
	if len(q.origins) < 1024 {
		return
	}
	for origin, w := range q.origins {
		if now.Sub(w.start) >= q.window {
			delete(q.origins, origin)
		}
	}
}
