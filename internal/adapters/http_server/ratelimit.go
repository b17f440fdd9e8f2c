package httpserver

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"pollen_tracker/internal/adapters/observability"
)

// SubmitLimiter throttles review submissions per client IP. Each IP gets
// its own token bucket; buckets idle for longer than visitorTTL are
// dropped by a background janitor so the map stays bounded.
type SubmitLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

const (
	visitorTTL   = 10 * time.Minute
	janitorEvery = time.Minute
)

func NewSubmitLimiter(rps, burst int) *SubmitLimiter {
	l := &SubmitLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	go l.janitor()
	return l
}

func (l *SubmitLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.seen = time.Now()
	return v.lim.Allow()
}

func (l *SubmitLimiter) janitor() {
	for range time.Tick(janitorEvery) {
		cutoff := time.Now().Add(-visitorTTL)
		l.mu.Lock()
		for ip, v := range l.visitors {
			if v.seen.Before(cutoff) {
				delete(l.visitors, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Middleware rejects the request with 429 once the caller's bucket is empty.
func (l *SubmitLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(remoteIP(r)) {
			observability.ObserveRateLimited()
			writeProblem(w, http.StatusTooManyRequests, "Too Many Requests",
				"review submission rate exceeded, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
