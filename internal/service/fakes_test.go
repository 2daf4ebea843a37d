package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ds124wfegd/showcaller/internal/entity"
)

type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	shows  map[int64]entity.Show
	calls  map[int64]entity.Call
	groups map[int64]entity.Group
	failed error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		shows:  make(map[int64]entity.Show),
		calls:  make(map[int64]entity.Call),
		groups: make(map[int64]entity.Group),
	}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

type fakeShowRepo struct{ *memoryStore }

func (r fakeShowRepo) Create(_ context.Context, show *entity.Show) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	show.ID = r.id()
	r.shows[show.ID] = *show
	return nil
}

func (r fakeShowRepo) GetByID(_ context.Context, id int64) (*entity.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	show, ok := r.shows[id]
	if !ok {
		return nil, entity.ErrShowNotFound
	}
	return &show, nil
}

func (r fakeShowRepo) GetAll(context.Context) ([]*entity.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failed != nil {
		return nil, r.failed
	}
	var out []*entity.Show
	for _, show := range r.shows {
		show := show
		out = append(out, &show)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeShowRepo) Update(_ context.Context, show *entity.Show) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shows[show.ID]; !ok {
		return entity.ErrShowNotFound
	}
	r.shows[show.ID] = *show
	return nil
}

func (r fakeShowRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shows[id]; !ok {
		return entity.ErrShowNotFound
	}
	delete(r.shows, id)
	return nil
}

type fakeCallRepo struct{ *memoryStore }

func (r fakeCallRepo) Create(_ context.Context, call *entity.Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	call.ID = r.id()
	r.calls[call.ID] = *call
	return nil
}

func (r fakeCallRepo) GetByID(_ context.Context, id int64) (*entity.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	call, ok := r.calls[id]
	if !ok {
		return nil, entity.ErrCallNotFound
	}
	return &call, nil
}

func (r fakeCallRepo) GetAll(ctx context.Context) ([]*entity.Call, error) {
	return r.filter(func(entity.Call) bool { return true }), nil
}

func (r fakeCallRepo) GetByShowID(_ context.Context, showID int64) ([]*entity.Call, error) {
	return r.filter(func(c entity.Call) bool { return c.ShowID == showID }), nil
}

func (r fakeCallRepo) filter(keep func(entity.Call) bool) []*entity.Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Call
	for _, call := range r.calls {
		if keep(call) {
			call := call
			out = append(out, &call)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeCallRepo) Update(_ context.Context, call *entity.Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calls[call.ID]; !ok {
		return entity.ErrCallNotFound
	}
	r.calls[call.ID] = *call
	return nil
}

func (r fakeCallRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calls[id]; !ok {
		return entity.ErrCallNotFound
	}
	delete(r.calls, id)
	return nil
}

type fakeGroupRepo struct{ *memoryStore }

func (r fakeGroupRepo) Create(_ context.Context, group *entity.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	group.ID = r.id()
	r.groups[group.ID] = *group
	return nil
}

func (r fakeGroupRepo) GetByID(_ context.Context, id int64) (*entity.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[id]
	if !ok {
		return nil, entity.ErrGroupNotFound
	}
	return &group, nil
}

func (r fakeGroupRepo) GetAll(context.Context) ([]*entity.Group, error) {
	return r.filter(func(entity.Group) bool { return true }), nil
}

func (r fakeGroupRepo) GetVisibleTo(_ context.Context, showID int64) ([]*entity.Group, error) {
	return r.filter(func(g entity.Group) bool { return g.VisibleTo(showID) }), nil
}

func (r fakeGroupRepo) filter(keep func(entity.Group) bool) []*entity.Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Group
	for _, group := range r.groups {
		if keep(group) {
			group := group
			out = append(out, &group)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeGroupRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return entity.ErrGroupNotFound
	}
	delete(r.groups, id)
	return nil
}

type countingRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

var errBoom = errors.New("boom")

// fixture wires the services over one in-memory store seeded with the
// default groups.
type fixture struct {
	store     *memoryStore
	refresher *countingRefresher
	services  *Services
}

func newFixture() *fixture {
	store := newMemoryStore()
	for _, name := range entity.DefaultGroupNames {
		id := store.id()
		store.groups[id] = entity.Group{ID: id, Name: name}
	}

	refresher := &countingRefresher{}
	return &fixture{
		store:     store,
		refresher: refresher,
		services:  NewServices(fakeShowRepo{store}, fakeCallRepo{store}, fakeGroupRepo{store}, refresher),
	}
}
