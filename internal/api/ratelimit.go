package api

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimiter is a Redis-backed fixed-window limiter for the public
// access-code endpoints. Counters are keyed by client IP and minute; keys
// expire on their own so there is nothing to sweep.
type rateLimiter struct {
	client *redis.Client
	limit  int
}

func newRateLimiter(client *redis.Client, perMinute int) *rateLimiter {
	return &rateLimiter{client: client, limit: perMinute}
}

// Middleware rejects clients that exceed the per-minute limit with 429.
// If Redis is unreachable the request is allowed through: the limiter
// protects against brute-forcing invitation codes, and a cache outage must
// not take the public site down with it.
func (rl *rateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		key := fmt.Sprintf("ratelimit:%s:%s", ip, time.Now().UTC().Format("200601021504"))

		pipe := rl.client.Pipeline()
		countCmd := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, 2*time.Minute)
		if _, err := pipe.Exec(r.Context()); err != nil {
			log.Printf("[RateLimit] Redis unavailable, allowing request: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		if countCmd.Val() > int64(rl.limit) {
			respondError(w, http.StatusTooManyRequests, "Too many attempts, please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP trusts chi's RealIP middleware to have rewritten RemoteAddr from
// X-Forwarded-For when behind the load balancer.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
