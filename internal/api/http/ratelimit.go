package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/plankit/project-service/pkg/util"
)

// clientLimiter tracks a per-client token bucket.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-IP token bucket to credential endpoints to
// slow brute forcing. Idle clients are evicted periodically.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	lastSwep time.Time
}

// NewRateLimiter allows perMinute requests with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &RateLimiter{
		clients:  make(map[string]*clientLimiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		lastSwep: time.Now(),
	}
}

// Handle rejects callers that exceed their bucket with 429.
func (rl *RateLimiter) Handle(c *fiber.Ctx) error {
	if !rl.allow(c.IP()) {
		return apperrors.NewRateLimited("too many requests")
	}
	return c.Next()
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSwep) > 10*time.Minute {
		for key, client := range rl.clients {
			if now.Sub(client.lastSeen) > 10*time.Minute {
				delete(rl.clients, key)
			}
		}
		rl.lastSwep = now
	}

	client, ok := rl.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.Allow()
}
