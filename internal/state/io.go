package state

import (
	"sync"
	"time"
)

// IoState records worker-side bookkeeping for the playback poller.
type IoState struct {
	mu                sync.Mutex
	lastPlaybackFetch time.Time
}

// LastPlaybackFetch returns the instant of the last completed playback fetch. ok is false if none has completed.
func (s *IoState) LastPlaybackFetch() (t time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPlaybackFetch, !s.lastPlaybackFetch.IsZero()
}

// MarkPlaybackFetch records a completed playback fetch at t.
func (s *IoState) MarkPlaybackFetch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPlaybackFetch = t
}

// NextDue returns when the next automatic playback fetch is due:
// interval after the last fetch, or interval after fallback if no fetch has completed.
func (s *IoState) NextDue(fallback time.Time, interval time.Duration) time.Time {
	if last, ok := s.LastPlaybackFetch(); ok {
		return last.Add(interval)
	}
	return fallback.Add(interval)
}
