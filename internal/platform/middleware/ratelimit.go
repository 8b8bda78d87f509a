package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"attest/internal/platform/config"
	"attest/pkg/platform/httputil"
	"attest/pkg/requestcontext"
)

// RateLimiter applies a per-IP fixed window limit backed by Redis. When Redis
// is unavailable the limiter fails open: availability of the credential APIs
// wins over strict limiting.
type RateLimiter struct {
	client  *redis.Client
	cfg     config.RateLimitConfig
	logger  *slog.Logger
	rp      *httputil.Responder
	service string
}

// NewRateLimiter builds the limiter. A nil client disables limiting entirely.
func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig, logger *slog.Logger, rp *httputil.Responder, service string) *RateLimiter {
	return &RateLimiter{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		rp:      rp,
		service: service,
	}
}

// Handler is the chi middleware.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.client == nil || !l.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)

		count, err := l.hit(ctx, ip)
		if err != nil {
			l.logger.WarnContext(ctx, "rate limit check failed, allowing request",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		remaining := l.cfg.Limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > l.cfg.Limit {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.cfg.Window.Seconds())))
			l.rp.Write(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// hit increments the caller's window counter, creating it with a TTL on first
// use. INCR then EXPIRE NX keeps the pair atomic enough for a fixed window;
// the worst case on a lost EXPIRE is a counter that never resets, which the
// pipeline guards against by always re-sending EXPIRE NX.
func (l *RateLimiter) hit(ctx context.Context, ip string) (int64, error) {
	key := fmt.Sprintf("ratelimit:%s:%s:%d", l.service, ip, time.Now().Unix()/int64(l.cfg.Window.Seconds()))

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
