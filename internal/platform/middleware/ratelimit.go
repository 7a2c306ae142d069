package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// Default limits for the consult API. Generous for interactive use; the
// point is to stop runaway clients and credential stuffing, not to meter
// normal ward traffic.
const (
	DefaultRequestsPerSecond = 100
	DefaultBurstSize         = 200
)

// bucketIdleTTL is how long an IP's bucket survives without traffic before
// the store drops it.
const bucketIdleTTL = 10 * time.Minute

// tokenBucket is a classic refill-on-read token bucket.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (b *tokenBucket) retryAfter() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refillRate <= 0 {
		return 1
	}
	return int((1-b.tokens)/b.refillRate) + 1
}

// bucketStore keeps one bucket per client IP and prunes idle ones so the
// map does not grow with every address that ever hit the API.
type bucketStore struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	lastSeen  map[string]time.Time
	rate      float64
	burst     int
	lastPrune time.Time
}

func newBucketStore(rate float64, burst int) *bucketStore {
	return &bucketStore{
		buckets:   make(map[string]*tokenBucket),
		lastSeen:  make(map[string]time.Time),
		rate:      rate,
		burst:     burst,
		lastPrune: time.Now(),
	}
}

func (s *bucketStore) get(key string) *tokenBucket {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastPrune) > bucketIdleTTL {
		for k, seen := range s.lastSeen {
			if now.Sub(seen) > bucketIdleTTL {
				delete(s.buckets, k)
				delete(s.lastSeen, k)
			}
		}
		s.lastPrune = now
	}

	s.lastSeen[key] = now
	if b, ok := s.buckets[key]; ok {
		return b
	}
	b := newTokenBucket(s.rate, s.burst)
	s.buckets[key] = b
	return b
}

// RateLimit returns middleware enforcing a per-client-IP token bucket of
// rps requests per second with the given burst headroom.
func RateLimit(rps float64, burst int) echo.MiddlewareFunc {
	store := newBucketStore(rps, burst)
	limitHeader := strconv.FormatFloat(rps, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bucket := store.get(c.RealIP())

			c.Response().Header().Set("X-RateLimit-Limit", limitHeader)
			if !bucket.allow() {
				c.Response().Header().Set("Retry-After", strconv.Itoa(bucket.retryAfter()))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
