package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// UserRateLimiter keeps one token bucket per user id.
type UserRateLimiter struct {
	mu      sync.Mutex
	users   map[string]*limiterEntry
	r       rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter allows perMinute events per user with the given burst.
func NewUserRateLimiter(perMinute int, burst int) *UserRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &UserRateLimiter{
		users:   make(map[string]*limiterEntry),
		r:       rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idleTTL: 3 * time.Minute,
		now:     time.Now,
	}
}

func (rl *UserRateLimiter) Allow(userID string) bool {
	return rl.limiter(userID).AllowN(rl.now(), 1)
}

func (rl *UserRateLimiter) limiter(userID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.users[userID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.users[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Cleanup drops idle buckets every minute until ctx is done.
func (rl *UserRateLimiter) Cleanup(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.prune()
		}
	}
}

func (rl *UserRateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.idleTTL)
	for id, e := range rl.users {
		if e.lastSeen.Before(cutoff) {
			delete(rl.users, id)
		}
	}
}

// RateLimit rejects requests from users over their budget with 429. It must
// run after Auth.
func RateLimit(rl *UserRateLimiter, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			userID = c.ClientIP()
		}
		if !rl.Allow(userID) {
			log.Warn("rate limit exceeded",
				zap.String("user_id", userID),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": "Rate limit exceeded. Please slow down.",
			})
			return
		}
		c.Next()
	}
}
