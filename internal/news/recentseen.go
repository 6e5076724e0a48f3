package news

import "sync"

// RecentSeen is the poller's bounded fingerprint set: once article_id has
// been observed it is never republished. When the set grows past highWater
// it is pruned, oldest-first, down to lowWater so memory stays bounded
// across a long-running process.
type RecentSeen struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	order     []string
	highWater int
	lowWater  int
}

// NewRecentSeen constructs a bounded set with defaults of 10000/8000 when
// highWater/lowWater are zero.
func NewRecentSeen(highWater, lowWater int) *RecentSeen {
	if highWater <= 0 {
		highWater = 10000
	}
	if lowWater <= 0 || lowWater >= highWater {
		lowWater = 8000
	}
	return &RecentSeen{
		seen:      make(map[string]struct{}),
		highWater: highWater,
		lowWater:  lowWater,
	}
}

// Contains reports whether id has already been observed.
func (r *RecentSeen) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[id]
	return ok
}

// Insert records id as seen, pruning the oldest entries down to lowWater if
// the set has grown past highWater.
func (r *RecentSeen) Insert(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[id]; ok {
		return
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
	if len(r.order) > r.highWater {
		drop := len(r.order) - r.lowWater
		for _, old := range r.order[:drop] {
			delete(r.seen, old)
		}
		r.order = append([]string(nil), r.order[drop:]...)
	}
}

// Len reports the current number of tracked fingerprints.
func (r *RecentSeen) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
