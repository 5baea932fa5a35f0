// Package throttle provides per-key token bucket limiters.
package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed holds one rate limiter per key (chat id, client address)
type Keyed struct {
	limiters map[string]*entry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

// NewKeyed creates a keyed limiter allowing perSecond events with burst
func NewKeyed(perSecond float64, burst int) *Keyed {
	return &Keyed{
		limiters: make(map[string]*entry),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// limiter returns the rate limiter for the given key
func (k *Keyed) limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, exists := k.limiters[key]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(k.rate, k.burst)}
		k.limiters[key] = e
	}
	e.lastSeen = k.now()
	return e.limiter
}

// Allow reports whether an event for key may happen now
func (k *Keyed) Allow(key string) bool {
	return k.limiter(key).Allow()
}

// Wait blocks until an event for key may happen or ctx is done
func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.limiter(key).Wait(ctx)
}

// Prune forgets keys not seen for longer than idle and returns how many
// were removed. A forgotten key starts again with a full bucket.
func (k *Keyed) Prune(idle time.Duration) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-idle)
	removed := 0
	for key, e := range k.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(k.limiters, key)
			removed++
		}
	}
	return removed
}

// PruneEvery calls Prune(idle) on every interval until ctx is done
func PruneEvery(ctx context.Context, interval, idle time.Duration, limits ...*Keyed) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, k := range limits {
				k.Prune(idle)
			}
		}
	}
}
