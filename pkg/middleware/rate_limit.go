package middleware

import (
	"net/http"
	"strconv"
	"time"

	apperrors "akoben/pkg/errors"
	httputil "akoben/pkg/http"
	"akoben/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	PhoneHeader     = "X-Phone-Number"
	rateLimitPrefix = "rate_limit"
)

// NewRateLimiter allows requests per window for each caller. With a Redis
// client the counters are shared across replicas, otherwise they live in
// process memory.
func NewRateLimiter(rdb *redis.Client, requests int, window time.Duration) (*limiter.Limiter, error) {
	rate := limiter.Rate{Period: window, Limit: int64(requests)}

	if rdb == nil {
		store := memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: window,
		})
		return limiter.New(store, rate), nil
	}

	store, err := redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

// RateLimit keys callers by X-Phone-Number when present, else by client IP.
// A failing store lets the request through.
func RateLimit(l *limiter.Limiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(l, r)

			lc, err := l.Get(r.Context(), key)
			if err != nil {
				log.Warn("Rate limit store unavailable",
					"request_id", RequestIDFromContext(r.Context()),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))

			if lc.Reached {
				log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"key", key,
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.TooManyRequests())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(l *limiter.Limiter, r *http.Request) string {
	if phone := r.Header.Get(PhoneHeader); phone != "" {
		return "phone:" + phone
	}
	return "ip:" + l.GetIPKey(r)
}
