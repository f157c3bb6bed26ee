package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/frahmantamala/labtrack/internal/testsupport"
	"github.com/frahmantamala/labtrack/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FixedWindowLimiter", func() {
	var limiter *middleware.FixedWindowLimiter

	AfterEach(func() {
		limiter.Stop()
	})

	It("grants permitLimit permits per window", func() {
		limiter = middleware.NewFixedWindowLimiter(5, time.Hour, 0)
		for i := 0; i < 5; i++ {
			Expect(limiter.Acquire(context.Background())).To(Succeed())
		}
		Expect(limiter.Acquire(context.Background())).To(MatchError(middleware.ErrLimitExceeded))
	})

	It("queues up to queueLimit callers and serves them oldest first", func() {
		limiter = middleware.NewFixedWindowLimiter(1, 150*time.Millisecond, 2)
		Expect(limiter.Acquire(context.Background())).To(Succeed())

		var (
			mu    sync.Mutex
			order []string
			wg    sync.WaitGroup
		)
		wait := func(name string) {
			defer GinkgoRecover()
			defer wg.Done()
			Expect(limiter.Acquire(context.Background())).To(Succeed())
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}

		wg.Add(2)
		go wait("first")
		Eventually(limiter.Queued).Should(Equal(1))
		go wait("second")
		Eventually(limiter.Queued).Should(Equal(2))

		// the queue is full
		Expect(limiter.Acquire(context.Background())).To(MatchError(middleware.ErrLimitExceeded))

		wg.Wait()
		Expect(order).To(Equal([]string{"first", "second"}))
	})

	It("drops a waiter whose context ends", func() {
		limiter = middleware.NewFixedWindowLimiter(1, time.Hour, 1)
		Expect(limiter.Acquire(context.Background())).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		Expect(limiter.Acquire(ctx)).To(MatchError(context.DeadlineExceeded))
		Expect(limiter.Queued()).To(BeZero())
	})

	It("starts a fresh window once the old one has passed", func() {
		limiter = middleware.NewFixedWindowLimiter(1, 30*time.Millisecond, 0)
		Expect(limiter.Acquire(context.Background())).To(Succeed())
		Expect(limiter.Acquire(context.Background())).To(MatchError(middleware.ErrLimitExceeded))

		Eventually(func() error {
			return limiter.Acquire(context.Background())
		}).WithTimeout(time.Second).Should(Succeed())
	})
})

var _ = Describe("RateLimit middleware", func() {
	It("answers 429 with the error envelope once the window and queue are spent", func() {
		limiter := middleware.NewFixedWindowLimiter(2, time.Hour, 0)
		defer limiter.Stop()

		handler := middleware.RateLimit(limiter, testsupport.Logger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
			Expect(w.Code).To(Equal(http.StatusOK))
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		Expect(w.Code).To(Equal(http.StatusTooManyRequests))
		Expect(w.Header().Get("Retry-After")).NotTo(BeEmpty())

		var body map[string]map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body["error"]).To(HaveKeyWithValue("code", "RATE_LIMIT_EXCEEDED"))
	})
})
