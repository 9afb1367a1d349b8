package http

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware rejects clients over their quota with 429 and a
// Retry-After header. Clients are keyed by remote IP.
func RateLimitMiddleware(limiter *RateLimiter, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			ok, wait := limiter.Allow(ip)
			if !ok {
				logger.WithFields(logrus.Fields{
					"client": ip,
					"path":   r.URL.Path,
				}).Warn("rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
