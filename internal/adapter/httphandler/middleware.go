package httphandler

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/niksmo/storefront/internal/core/cart"
	"golang.org/x/time/rate"
)

func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
		if strings.TrimSpace(mediaType) != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "invalid media type")
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

// defaultLimiterIdle is how long a client IP may stay silent before its
// bucket is dropped.
const defaultLimiterIdle = 10 * time.Minute

type RateLimiterOpt func(*RateLimiter)

func LimiterIdleOpt(d time.Duration) RateLimiterOpt {
	return func(l *RateLimiter) {
		l.idle = d
	}
}

func LimiterClockOpt(now func() time.Time) RateLimiterOpt {
	return func(l *RateLimiter) {
		l.now = now
	}
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// A RateLimiter keeps a token bucket per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewRateLimiter returns nil for non-positive rps, [RateLimiter.Middleware]
// of a nil limiter passes all requests.
//
// The idle window is never shorter than a full bucket refill, so a dropped
// bucket is indistinguishable from a kept one.
func NewRateLimiter(rps float64, burst int, opts ...RateLimiterOpt) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	l := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     defaultLimiterIdle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	refill := time.Duration(float64(burst) / rps * float64(time.Second))
	l.idle = max(l.idle, refill)
	return l
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	hf := func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.allow(ip) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			slog.Debug("request rejected", "op", "RateLimiter.Middleware", "ip", ip)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		for key, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.idle {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.limiters[ip]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// Len reports the number of tracked client IPs.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const sessionIDKey = "sid"

type StoreOpener interface {
	Open(sessionID string) *cart.Store
}

// NewSessionStore returns a cookie store signing with secret.
func NewSessionStore(secret []byte, maxAge time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Session resolves the cart of the session cookie cookieName and puts it
// into the request context. A missing or tampered cookie starts a new
// session.
func Session(
	store sessions.Store, cookieName string, carts StoreOpener,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hf := func(w http.ResponseWriter, r *http.Request) {
			const op = "Session"
			log := slog.With("op", op)

			sess, err := store.Get(r, cookieName)
			if err != nil {
				log.Debug("session cookie rejected", "err", err)
			}

			sid, _ := sess.Values[sessionIDKey].(string)
			if sid == "" {
				sid = uuid.NewString()
				sess.Values[sessionIDKey] = sid
				if err := sess.Save(r, w); err != nil {
					writeError(w, http.StatusInternalServerError, "internal error")
					log.Error("failed to save session", "err", err)
					return
				}
				log.Debug("session started", "session", sid)
			}

			ctx := cart.WithStore(r.Context(), carts.Open(sid))
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hf)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func LogRequests(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"dur", time.Since(start),
		)
	}
	return http.HandlerFunc(hf)
}
