// Package dedup holds the in-memory tier of notification deduplication.
//
// The set is intentionally non-durable: it lives for one process lifetime
// and is empty again after a restart, at which point still-due alerts are
// surfaced once more. The durable tier is the persisted flags on the
// entities themselves.
package dedup

import "sync"

// Set records entity ids that were already surfaced this session.
// Safe for concurrent use. Growth is unbounded over the process lifetime,
// which is acceptable at the expected cardinality (one actor's open tasks).
type Set struct {
	mu   sync.Mutex
	seen map[int64]struct{}
}

func NewSet() *Set {
	return &Set{seen: make(map[int64]struct{})}
}

func (s *Set) Seen(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

func (s *Set) MarkSeen(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[id] = struct{}{}
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Reset empties the set. Tests use it between cases.
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[int64]struct{})
}
