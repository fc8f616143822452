package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit bounds requests per client address. It runs before
// authentication so unauthenticated abuse is also counted. Each address
// gets a token bucket holding max tokens refilled over window, which
// behaves as a smoothed sliding window.
type RateLimit struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	max      int
	window   time.Duration
	status   int
}

func NewRateLimit(max int, window time.Duration) *RateLimit {
	rl := &RateLimit{
		visitors: make(map[string]*visitor),
		max:      max,
		window:   window,
		status:   http.StatusTooManyRequests,
	}
	go rl.evictLoop()
	return rl
}

// WithStatus overrides the response code sent when the limit is exceeded.
func (rl *RateLimit) WithStatus(status int) *RateLimit {
	rl.status = status
	return rl
}

func (rl *RateLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining := rl.take(clientAddr(r))

		w.Header().Set("RateLimit-Limit", strconv.Itoa(rl.max))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("RateLimit-Reset", strconv.Itoa(int(rl.window.Seconds())))

		if !allowed {
			writeMessage(w, rl.status, "too many requests from this IP, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimit) take(addr string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[addr]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.max)), rl.max),
		}
		rl.visitors[addr] = v
	}
	v.lastSeen = time.Now()

	allowed := v.limiter.Allow()
	remaining := int(v.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

// evictLoop drops counters for addresses idle longer than the window so
// the visitor map does not grow without bound.
func (rl *RateLimit) evictLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for addr, v := range rl.visitors {
			if time.Since(v.lastSeen) > rl.window {
				delete(rl.visitors, addr)
			}
		}
		rl.mu.Unlock()
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
