package http

import (
	"sync"
	"time"

	"spendlog/internal/cache"
)

// maxTrackedClients bounds how many client IPs the limiter remembers at once.
const maxTrackedClients = 1024

// rateLimiter counts mutating requests per client IP over a fixed one-minute
// window. Counters live in a TTL'd LRU: a window opens at the client's first
// request and ends when the entry expires; an evicted client simply starts a
// fresh window.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	clients *cache.LRUCache[*clientCounter]
}

type clientCounter struct {
	requests int
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		limit:   perMinute,
		clients: cache.NewLRUCache[*clientCounter](maxTrackedClients, time.Minute),
	}
}

// allow records a request from the client and reports whether it fits the
// per-minute allowance.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	counter, ok := rl.clients.Get(clientIP)
	if !ok {
		rl.clients.Set(clientIP, &clientCounter{requests: 1})
		return true
	}

	counter.requests++
	return counter.requests <= rl.limit
}
