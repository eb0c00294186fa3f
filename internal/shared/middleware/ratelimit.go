package middleware

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"checkout/internal/shared/ratelimit"
)

// RateLimit enforces the per-IP budget on every route except the webhook.
// Gateway pushes must never be throttled; losing one loses a payment
// confirmation.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, webhookPathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			decision, err := limiter.Allow(r.Context(), ClientIP(r))
			if err != nil {
				// A broken limiter store must not take the API down.
				log.Printf("rate limit check failed: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				w.Header().Set("Retry-After", fmt.Sprintf("%.0f", decision.RetryAfter.Seconds()))
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))
				w.Header().Set("X-RateLimit-Window", fmt.Sprintf("%.0f", limiter.Window().Seconds()))
				writeEnvelopeError(w, http.StatusTooManyRequests, "muitas requisições, tente novamente em instantes")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the caller's address, honoring X-Forwarded-For from the
// load balancer. The first hop in the list is the original client.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
