package middleware

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/transport"
	"golang.org/x/time/rate"
)

// ErrLimitExceeded is returned by Acquire when the window is spent and the
// queue is full.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// FixedWindowLimiter grants permitLimit permits per window to every caller of
// the policy. Once a window is spent up to queueLimit callers wait for the
// next window and are served oldest first.
type FixedWindowLimiter struct {
	permitLimit int
	queueLimit  int
	window      time.Duration

	mu          sync.Mutex
	windowStart time.Time
	used        int
	queue       []chan struct{}
	timer       *time.Timer
}

func NewFixedWindowLimiter(permitLimit int, window time.Duration, queueLimit int) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		permitLimit: permitLimit,
		queueLimit:  queueLimit,
		window:      window,
		windowStart: time.Now(),
	}
}

// Acquire blocks until a permit is granted, the queue is full, or ctx ends.
func (l *FixedWindowLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	if time.Since(l.windowStart) >= l.window {
		l.resetLocked()
	}

	if l.used < l.permitLimit && len(l.queue) == 0 {
		l.used++
		l.mu.Unlock()
		return nil
	}

	if len(l.queue) >= l.queueLimit {
		l.mu.Unlock()
		return ErrLimitExceeded
	}

	granted := make(chan struct{})
	l.queue = append(l.queue, granted)
	l.scheduleLocked()
	l.mu.Unlock()

	select {
	case <-granted:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, ch := range l.queue {
			if ch == granted {
				l.queue = append(l.queue[:i], l.queue[i+1:]...)
				return ctx.Err()
			}
		}
		// granted between ctx ending and taking the lock
		return nil
	}
}

// Queued reports how many callers are waiting for the next window.
func (l *FixedWindowLimiter) Queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// RetryAfter is the time left in the current window.
func (l *FixedWindowLimiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	left := l.window - time.Since(l.windowStart)
	if left < 0 {
		return 0
	}
	return left
}

func (l *FixedWindowLimiter) replenish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timer = nil
	l.resetLocked()
	if len(l.queue) > 0 {
		l.scheduleLocked()
	}
}

// resetLocked opens a new window and hands its permits to waiters first.
func (l *FixedWindowLimiter) resetLocked() {
	l.windowStart = time.Now()
	l.used = 0
	for l.used < l.permitLimit && len(l.queue) > 0 {
		close(l.queue[0])
		l.queue = l.queue[1:]
		l.used++
	}
}

func (l *FixedWindowLimiter) scheduleLocked() {
	if l.timer != nil {
		return
	}
	wait := l.window - time.Since(l.windowStart)
	if wait < 0 {
		wait = 0
	}
	l.timer = time.AfterFunc(wait, l.replenish)
}

// Stop cancels the pending replenish timer.
func (l *FixedWindowLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

// RateLimit admits requests through limiter and answers 429 with the
// standard error envelope when it refuses.
func RateLimit(limiter *FixedWindowLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	// a burst of rejected logins should not flood the log
	warn := &rate.Sometimes{First: 1, Interval: 10 * time.Second}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := limiter.Acquire(r.Context()); err != nil {
				if errors.Is(err, ErrLimitExceeded) {
					warn.Do(func() {
						base.Logger.WarnContext(r.Context(), "rate limit exceeded",
							"path", r.URL.Path,
							"remote_addr", r.RemoteAddr)
					})
					retry := int(math.Ceil(limiter.RetryAfter().Seconds()))
					w.Header().Set("Retry-After", strconv.Itoa(retry))
					base.WriteAppError(w, internal.NewRateLimitedError("Too many requests, please try again later"))
				}
				// client went away while queued
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
