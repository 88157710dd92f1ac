package dedup

import (
	"sync"
	"testing"
)

func TestSet_SeenAndMarkSeen(t *testing.T) {
	t.Parallel()

	s := NewSet()

	if s.Seen(1) {
		t.Fatalf("expected id 1 unseen in fresh set")
	}

	s.MarkSeen(1)
	if !s.Seen(1) {
		t.Fatalf("expected id 1 seen after MarkSeen")
	}
	if s.Seen(2) {
		t.Fatalf("expected id 2 unseen")
	}

	// Marking twice is a no-op.
	s.MarkSeen(1)
	if s.Len() != 1 {
		t.Fatalf("expected Len()=1, got %d", s.Len())
	}
}

func TestSet_Reset(t *testing.T) {
	t.Parallel()

	s := NewSet()
	s.MarkSeen(1)
	s.MarkSeen(2)

	s.Reset()

	if s.Len() != 0 {
		t.Fatalf("expected empty set after Reset, got %d", s.Len())
	}
	if s.Seen(1) || s.Seen(2) {
		t.Fatalf("expected ids forgotten after Reset")
	}
}

func TestSet_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := NewSet()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for j := int64(0); j < 100; j++ {
				id := base*100 + j
				s.MarkSeen(id)
				if !s.Seen(id) {
					t.Errorf("expected id %d seen", id)
				}
			}
		}(int64(i))
	}
	wg.Wait()

	if s.Len() != 1000 {
		t.Fatalf("expected 1000 entries, got %d", s.Len())
	}
}
