package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UserLimiter enforces a minimum gap between requests per user. Each
// user gets their own token bucket; buckets idle past the prune age are
// dropped so the map does not grow with every user ever seen.
type UserLimiter struct {
	mu       sync.Mutex
	users    map[string]*userBucket
	limit    rate.Limit
	burst    int
	pruneAge time.Duration
}

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserLimiter creates a limiter allowing one request per interval per
// user, with the given burst.
func NewUserLimiter(interval time.Duration, burst int) *UserLimiter {
	if interval <= 0 {
		interval = time.Minute
	}
	if burst <= 0 {
		burst = 1
	}
	return &UserLimiter{
		users:    make(map[string]*userBucket),
		limit:    rate.Every(interval),
		burst:    burst,
		pruneAge: 10 * interval,
	}
}

// Allow reports whether the user may make a request now.
func (l *UserLimiter) Allow(user string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.users[user]
	if !ok {
		b = &userBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[user] = b
	}
	b.lastSeen = now

	l.prune(now)
	return b.limiter.Allow()
}

// prune drops buckets idle past the prune age. Caller holds the lock.
func (l *UserLimiter) prune(now time.Time) {
	for user, b := range l.users {
		if now.Sub(b.lastSeen) > l.pruneAge {
			delete(l.users, user)
		}
	}
}
