package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// webhookPathPrefix is exempt from CORS enforcement. Gateway servers call it
// directly with no Origin header and must never be blocked by browser
// policy.
const webhookPathPrefix = "/webhook/"

// CORS enforces a strict origin policy. An empty allowedHosts list allows
// any origin; otherwise a request carrying a disallowed Origin is rejected
// outright, not just left without CORS headers.
func CORS(allowedHosts []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, webhookPathPrefix) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")

			switch {
			case len(allowedHosts) == 0:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin == "":
				// Non-browser clients carry no Origin; nothing to enforce.
			case isOriginAllowed(origin, allowedHosts):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			default:
				writeEnvelopeError(w, http.StatusForbidden, "origem não permitida")
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isOriginAllowed matches the Origin's hostname against allowedHosts,
// either host:port exactly or hostname alone ignoring the port.
func isOriginAllowed(origin string, allowedHosts []string) bool {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	originHost := strings.ToLower(parsed.Host)
	originHostname := strings.ToLower(parsed.Hostname())

	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}
		if allowed == originHost || allowed == originHostname {
			return true
		}
	}
	return false
}
