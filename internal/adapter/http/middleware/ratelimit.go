package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RateLimitMessage текст отказа при превышении лимита
const RateLimitMessage = "Too many requests from this IP, please try again in an hour."

// RateLimiter ограничивает число запросов с одного IP.
// Окно скользящее (sliding window counter из httprate): текущее окно
// плюс взвешенный остаток предыдущего, поэтому на стыке окон лимит
// не превышается так, как при фиксированном окне.
// Счётчики живут в экземпляре; Reset начинает их заново.
type RateLimiter struct {
	requests int
	window   time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	limiter *httprate.RateLimiter
}

// NewRateLimiter создаёт ограничитель requests запросов за window
func NewRateLimiter(requests int, window time.Duration, logger *zap.Logger) *RateLimiter {
	l := &RateLimiter{
		requests: requests,
		window:   window,
		logger:   logger,
	}
	l.limiter = l.newLimiter()
	return l
}

func (l *RateLimiter) newLimiter() *httprate.RateLimiter {
	return httprate.NewRateLimiter(l.requests, l.window,
		// RemoteAddr: адрес соединения, либо клиента, если роутер доверяет прокси
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(l.reject),
	)
}

// Handler middleware для chi
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.mu.RLock()
		limiter := l.limiter
		l.mu.RUnlock()

		limiter.Handler(next).ServeHTTP(w, r)
	})
}

// Reset сбрасывает все счётчики
func (l *RateLimiter) Reset() {
	limiter := l.newLimiter()

	l.mu.Lock()
	l.limiter = limiter
	l.mu.Unlock()
}

func (l *RateLimiter) reject(w http.ResponseWriter, r *http.Request) {
	l.logger.Warn("Rate limit exceeded",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(RateLimitMessage))
}
