package session

import "sync/atomic"

var emptyFrame = &Frame{}

// Store holds the most recently published frame. Readers always see a
// complete frame. A frame replaces the held one unless it is an older
// snapshot (smaller Seq), so publishers racing each other cannot roll the
// view back.
type Store struct {
	frame   atomic.Pointer[Frame]
	updated chan struct{}
}

func NewStore() *Store {
	return &Store{updated: make(chan struct{}, 1)}
}

// Publish replaces the current frame and signals Updated. It reports
// false if f is older than the held frame and was dropped.
func (s *Store) Publish(f *Frame) bool {
	for {
		cur := s.frame.Load()
		if cur != nil && f.Seq < cur.Seq {
			return false
		}
		if s.frame.CompareAndSwap(cur, f) {
			break
		}
	}
	select {
	case s.updated <- struct{}{}:
	default:
	}
	return true
}

// Load returns the latest frame, or an empty one before the first publish.
func (s *Store) Load() *Frame {
	if f := s.frame.Load(); f != nil {
		return f
	}
	return emptyFrame
}

// Updated receives a value after one or more publishes. Bursts collapse
// into a single signal.
func (s *Store) Updated() <-chan struct{} { return s.updated }
