package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	repository "github.com/ds124wfegd/showcaller/internal/database/postgres"
	"github.com/ds124wfegd/showcaller/internal/entity"

	"github.com/sirupsen/logrus"
)

// SnapshotStore holds the latest copy of shows, calls and groups. Readers get
// an immutable snapshot without locking; Refresh swaps in a new one.
type SnapshotStore struct {
	showRepo  repository.ShowRepository
	callRepo  repository.CallRepository
	groupRepo repository.GroupRepository

	current atomic.Pointer[entity.Snapshot]
	loading sync.Mutex
	now     func() time.Time
}

func NewSnapshotStore(
	showRepo repository.ShowRepository,
	callRepo repository.CallRepository,
	groupRepo repository.GroupRepository,
) *SnapshotStore {
	return &SnapshotStore{
		showRepo:  showRepo,
		callRepo:  callRepo,
		groupRepo: groupRepo,
		now:       time.Now,
	}
}

// Snapshot returns false until the first successful Refresh.
func (s *SnapshotStore) Snapshot() (*entity.Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Refresh loads everything and replaces the snapshot. On error the previous
// snapshot stays in place.
func (s *SnapshotStore) Refresh(ctx context.Context) error {
	s.loading.Lock()
	defer s.loading.Unlock()

	shows, err := s.showRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load shows: %w", err)
	}
	calls, err := s.callRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load calls: %w", err)
	}
	groups, err := s.groupRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}

	snap := &entity.Snapshot{
		Shows:    make([]entity.Show, 0, len(shows)),
		Calls:    make([]entity.Call, 0, len(calls)),
		Groups:   make([]entity.Group, 0, len(groups)),
		LoadedAt: s.now(),
	}
	for _, show := range shows {
		snap.Shows = append(snap.Shows, *show)
	}
	for _, call := range calls {
		snap.Calls = append(snap.Calls, *call)
	}
	for _, group := range groups {
		snap.Groups = append(snap.Groups, *group)
	}

	s.current.Store(snap)
	logrus.WithFields(logrus.Fields{
		"shows":  len(snap.Shows),
		"calls":  len(snap.Calls),
		"groups": len(snap.Groups),
	}).Debug("Snapshot refreshed")
	return nil
}
