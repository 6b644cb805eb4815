package notify

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// FiredSet records which (window, occurrence) pairs have already alerted.
// MarkOnce returns true exactly once per key between resets, giving the
// at-most-once-per-window guarantee.
type FiredSet interface {
	MarkOnce(key string) bool
	Reset()
}

// memoryFired is the default process-local fired-set.
type memoryFired struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewMemoryFired() FiredSet {
	return &memoryFired{seen: make(map[string]bool)}
}

func (m *memoryFired) MarkOnce(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[key] {
		return false
	}
	m.seen[key] = true
	return true
}

func (m *memoryFired) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = make(map[string]bool)
}

// redisFired shares the fired-set across desk stations via SETNX, so two
// coordinators running the dashboard do not both sound the same alert. Keys
// carry the occurrence date, so expiry handles the daily reset.
type redisFired struct {
	rdb *redis.Client
}

func NewRedisFired(addr, username, password string) FiredSet {
	return &redisFired{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       0,
	})}
}

func (r *redisFired) MarkOnce(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := r.rdb.SetNX(ctx, "showdesk:fired:"+key, 1, 48*time.Hour).Result()
	if err != nil {
		// fail open: a duplicate alert beats a silent miss
		log.Error().Err(err).Str("key", key).Msg("fired-set SETNX failed")
		return true
	}
	return ok
}

// Reset is a no-op: occurrence keys embed the date and expire on their own.
func (r *redisFired) Reset() {}
