package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type memBucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process memory. Buckets idle for longer than
// the stale threshold are swept periodically.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*memBucket
	now     func() time.Time

	every time.Duration
	stale time.Duration
	stop  chan struct{}
	once  sync.Once
}

type MemoryStoreOption func(*MemoryStore)

// WithSweep sets how often idle buckets are removed and after how long a
// bucket counts as idle. A zero interval disables sweeping.
func WithSweep(interval, stale time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.every = interval
		ms.stale = stale
	}
}

func withClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) { ms.now = now }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets: make(map[string]*memBucket),
		now:     time.Now,
		every:   5 * time.Minute,
		stale:   time.Hour,
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.every > 0 {
		ms.stop = make(chan struct{})
		go ms.sweep(ms.every)
	}
	return ms
}

func (ms *MemoryStore) Take(_ context.Context, key string, tokens int, cfg Config) (bool, int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	b, ok := ms.buckets[key]
	if !ok {
		b = &memBucket{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}
	b.lastAccess = now

	if intervals := int(now.Sub(b.lastRefill) / cfg.RefillInterval); intervals > 0 {
		// cap before multiplying so long idle periods cannot overflow
		intervals = min(intervals, cfg.Capacity/cfg.RefillRate+1)
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
		if b.tokens == cfg.Capacity {
			b.lastRefill = now
		}
	}

	resetAt := b.lastRefill.Add(cfg.RefillInterval)
	if b.tokens < tokens {
		return false, b.tokens, resetAt, nil
	}
	b.tokens -= tokens
	return true, b.tokens, resetAt, nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.buckets, key)
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (ms *MemoryStore) Close() {
	ms.once.Do(func() {
		if ms.stop != nil {
			close(ms.stop)
		}
	})
}

func (ms *MemoryStore) sweep(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			ms.removeStale()
		case <-ms.stop:
			return
		}
	}
}

func (ms *MemoryStore) removeStale() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	cutoff := ms.now().Add(-ms.stale)
	for k, b := range ms.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(ms.buckets, k)
		}
	}
}
