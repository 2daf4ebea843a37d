// Package cache keeps the notified-call set in Redis so it survives a restart.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const DefaultNotifiedKey = "showcaller:notified"

// NotifiedSet is a Redis set of call ids with a local layer in front of it.
// The local layer answers first, so a Redis outage never makes a call fire
// twice within the same process.
type NotifiedSet struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	mu    sync.RWMutex
	local map[int64]struct{}

	log *logrus.Entry
}

func NewNotifiedSet(client *redis.Client, key string, ttl time.Duration) *NotifiedSet {
	if key == "" {
		key = DefaultNotifiedKey
	}
	return &NotifiedSet{
		client: client,
		key:    key,
		ttl:    ttl,
		local:  make(map[int64]struct{}),
		log:    logrus.WithField("component", "notified-redis"),
	}
}

func (s *NotifiedSet) Contains(ctx context.Context, callID int64) (bool, error) {
	if s.hasLocal(callID) {
		return true, nil
	}

	ok, err := s.client.SIsMember(ctx, s.key, strconv.FormatInt(callID, 10)).Result()
	if err != nil {
		s.log.WithError(err).WithField("call_id", callID).Warn("Redis lookup failed, using local state")
		return false, nil
	}
	if ok {
		s.addLocal(callID)
	}
	return ok, nil
}

func (s *NotifiedSet) Add(ctx context.Context, callID int64) error {
	s.addLocal(callID)

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.key, strconv.FormatInt(callID, 10))
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to persist notified call %d: %w", callID, err)
	}
	return nil
}

// Len counts the ids known to this process.
func (s *NotifiedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.local)
}

// Warm loads the ids already stored in Redis into the local layer.
func (s *NotifiedSet) Warm(ctx context.Context) (int, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to load notified calls: %w", err)
	}

	loaded := 0
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			s.log.WithField("member", m).Warn("Skipping malformed notified member")
			continue
		}
		s.addLocal(id)
		loaded++
	}
	return loaded, nil
}

func (s *NotifiedSet) hasLocal(callID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.local[callID]
	return ok
}

func (s *NotifiedSet) addLocal(callID int64) {
	s.mu.Lock()
	s.local[callID] = struct{}{}
	s.mu.Unlock()
}
