package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/ds124wfegd/showcaller/internal/entity"

	"github.com/google/uuid"
)

const DefaultBannerTTL = 5 * time.Second

// BannerBoard is the in-app fallback for hosts without a native channel.
// Banners are independent: each one auto-dismisses after the TTL, can be
// dismissed by hand, and several may be on screen at once.
type BannerBoard struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	banners map[string]entity.Banner
	timers  map[string]*time.Timer
	closed  bool
}

func NewBannerBoard(ttl time.Duration) *BannerBoard {
	if ttl <= 0 {
		ttl = DefaultBannerTTL
	}
	return &BannerBoard{
		ttl:     ttl,
		now:     time.Now,
		banners: make(map[string]entity.Banner),
		timers:  make(map[string]*time.Timer),
	}
}

// Show inserts a banner and returns its id.
func (b *BannerBoard) Show(title, body string) string {
	created := b.now()
	banner := entity.Banner{
		ID:        uuid.New().String(),
		Title:     title,
		Body:      body,
		CreatedAt: created,
		ExpiresAt: created.Add(b.ttl),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ""
	}

	b.banners[banner.ID] = banner
	b.timers[banner.ID] = time.AfterFunc(b.ttl, func() {
		b.Dismiss(banner.ID)
	})
	return banner.ID
}

// Dismiss removes a banner; false if it was already gone.
func (b *BannerBoard) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.banners[id]; !ok {
		return false
	}
	delete(b.banners, id)
	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	return true
}

// Active lists the banners on screen, oldest first.
func (b *BannerBoard) Active() []entity.Banner {
	b.mu.Lock()
	list := make([]entity.Banner, 0, len(b.banners))
	for _, banner := range b.banners {
		list = append(list, banner)
	}
	b.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Close clears the board and stops pending auto-dismiss timers.
func (b *BannerBoard) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
	b.banners = make(map[string]entity.Banner)
	b.closed = true
}
