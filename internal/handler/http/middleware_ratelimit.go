package http

import (
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/MKhiriev/go-trip-keeper/internal/app"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
)

// rateLimiter keeps one token bucket per user. A non-positive rate turns
// limiting off.
type rateLimiter struct {
	limiters sync.Map // map[int64]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiter{limit: rate.Limit(rps), burst: burst}
}

func (l *rateLimiter) getLimiter(userID int64) *rate.Limiter {
	if v, ok := l.limiters.Load(userID); ok {
		return v.(*rate.Limiter)
	}

	actual, _ := l.limiters.LoadOrStore(userID, rate.NewLimiter(l.limit, l.burst))
	return actual.(*rate.Limiter)
}

// withRateLimit answers 429 once a user exceeds the configured request
// rate. It runs after auth, so the user id is always known.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, found := utils.GetUserIDFromContext(r.Context())
		if !found {
			next.ServeHTTP(w, r)
			return
		}

		limiter := h.limiter.getLimiter(userID)
		if !limiter.Allow() {
			logger.FromRequest(r).Warn().
				Str("func", "*Handler.withRateLimit").
				Int64("user_id", userID).
				Msg("rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limiter)))
			http.Error(w, app.MsgTooManyRequests, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(l *rate.Limiter) int {
	if l.Limit() <= 0 {
		return 1
	}
	seconds := int(1 / float64(l.Limit()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
