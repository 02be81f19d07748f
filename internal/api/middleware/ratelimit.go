package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const (
	// visitorTTL is how long an idle client keeps its bucket before the
	// sweeper reclaims it.
	visitorTTL    = 3 * time.Minute
	sweepInterval = time.Minute
)

// bucket tracks per-client tokens for the token-bucket limiter.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*bucket
	rate    float64 // tokens refilled per second
	burst   float64 // bucket capacity
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*bucket),
		rate:    rps,
		burst:   float64(burst),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr

		rl.mu.Lock()
		b, ok := rl.clients[ip]
		if !ok {
			b = &bucket{tokens: rl.burst, lastSeen: time.Now()}
			rl.clients[ip] = b
		}

		// Refill proportionally to time since the last request, capped at
		// the burst size.
		b.tokens += time.Since(b.lastSeen).Seconds() * rl.rate
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
		b.lastSeen = time.Now()

		if b.tokens < 1 {
			rl.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}

		b.tokens--
		rl.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// sweep periodically drops buckets for clients idle longer than visitorTTL.
func (rl *RateLimiter) sweep() {
	for {
		time.Sleep(sweepInterval)
		rl.mu.Lock()
		for ip, b := range rl.clients {
			if time.Since(b.lastSeen) > visitorTTL {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}
