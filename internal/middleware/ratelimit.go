package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL is how long a client's bucket survives without requests.
	limiterIdleTTL = 10 * time.Minute
	// maxTrackedClients caps the bucket map. At the cap idle buckets are swept,
	// and if none are idle new clients share one overflow bucket.
	maxTrackedClients = 10000
	overflowKey       = "\x00overflow"
)

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter limits requests per client IP using a token bucket per IP.
// The key is the host part of r.RemoteAddr. Forwarded headers are only
// honored when chi's RealIP middleware runs earlier in the chain.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewIPRateLimiter creates a per-IP rate limiter. limit is events per second;
// for N per minute use rate.Limit(float64(N)/60.0). burst is max tokens per bucket.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if v, ok := l.visitors[ip]; ok {
		v.lastSeen = now
		return v.lim
	}

	if len(l.visitors) >= maxTrackedClients {
		l.sweep(now)
	}
	if len(l.visitors) >= maxTrackedClients {
		ip = overflowKey
		if v, ok := l.visitors[ip]; ok {
			v.lastSeen = now
			return v.lim
		}
	}

	v := &visitor{lim: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
	l.visitors[ip] = v
	return v.lim
}

// sweep drops buckets idle for longer than limiterIdleTTL. Callers hold mu.
func (l *IPRateLimiter) sweep(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(l.visitors, ip)
		}
	}
}

// tracked reports the number of buckets held.
func (l *IPRateLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// clientIP returns r.RemoteAddr without its port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware returns a chi-compatible middleware that returns 429 when the client IP exceeds the rate.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := l.getLimiter(clientIP(r))
		if !lim.Allow() {
			retry := time.Duration(float64(time.Second) / float64(l.limit))
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			writeJSONError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthRateLimiter returns a limiter for register/login/token: perMinute requests per IP with the given burst.
func AuthRateLimiter(perMinute, burst int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return NewIPRateLimiter(rate.Limit(float64(perMinute)/60.0), burst)
}
