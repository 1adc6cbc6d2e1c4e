package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Class groups endpoints with a shared rate budget. Auth endpoints are
// throttled hard to blunt password guessing; sync traffic gets a budget
// generous enough for several devices behind one address.
type Class struct {
	Name  string
	Limit rate.Limit
	Burst int
}

var (
	LoginClass = Class{Name: "login", Limit: 0.5, Burst: 2}
	SyncClass  = Class{Name: "sync", Limit: 10, Burst: 20}
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per (class, client address) pair.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*clientLimiter)}
}

// Allow reports whether ip may make another request in the given class.
func (rl *RateLimiter) Allow(ip string, c Class) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := c.Name + "|" + ip
	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(c.Limit, c.Burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for key, cl := range rl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}
