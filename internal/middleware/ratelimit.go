package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type clientInfo struct {
	count   int
	resetAt time.Time
}

type rateLimiter struct {
	mtx       sync.Mutex
	clients   map[string]*clientInfo
	rpm       int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// allow возвращает остаток и момент сброса окна
func (l *rateLimiter) allow(key string) (bool, int, time.Time) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	now := l.now()
	l.sweepLocked(now)

	info, exists := l.clients[key]
	if !exists || now.After(info.resetAt) {
		info = &clientInfo{count: 0, resetAt: now.Add(l.window)}
		l.clients[key] = info
	}
	if info.count >= l.rpm {
		return false, 0, info.resetAt
	}
	info.count++
	return true, l.rpm - info.count, info.resetAt
}

// sweepLocked раз в окно выкидывает клиентов с истёкшим окном
func (l *rateLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// RateLimit - не больше rpm запросов в минуту с одного адреса
func RateLimit(rpm int) func(http.Handler) http.Handler {
	limiter := &rateLimiter{
		clients: make(map[string]*clientInfo),
		rpm:     rpm,
		window:  time.Minute,
		now:     time.Now,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, resetAt := limiter.allow(getIp(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "Слишком много запросов. Попробуйте позже.",
					"retry_after": int(time.Until(resetAt).Seconds()),
					"request_id":  GetRequestID(r.Context()),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
