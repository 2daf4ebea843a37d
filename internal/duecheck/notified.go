package duecheck

import (
	"context"
	"sync"
)

// NotifiedSet records the calls already alerted in this session. Ids are only
// ever added.
type NotifiedSet interface {
	Contains(ctx context.Context, callID int64) (bool, error)
	Add(ctx context.Context, callID int64) error
	Len() int
}

// MemoryNotifiedSet lives as long as the scheduler that owns it; a restart
// starts from empty.
type MemoryNotifiedSet struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

func NewMemoryNotifiedSet() *MemoryNotifiedSet {
	return &MemoryNotifiedSet{ids: make(map[int64]struct{})}
}

func (s *MemoryNotifiedSet) Contains(_ context.Context, callID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[callID]
	return ok, nil
}

func (s *MemoryNotifiedSet) Add(_ context.Context, callID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[callID] = struct{}{}
	return nil
}

func (s *MemoryNotifiedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
