package middleware

import (
	"net/http"
	"strings"
)

// corsAllowedMethods and corsAllowedHeaders cover everything the admin panel
// frontend sends. The header list must include Authorization or the browser
// strips the bearer token from cross-origin calls.
const (
	corsAllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowedHeaders = "Accept, Authorization, Content-Type, X-Correlation-ID"
	corsMaxAge         = "600"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists the origins the frontend is served from. A "*"
	// entry allows any origin, but only outside credentialed mode.
	AllowedOrigins []string

	// AllowCredentials permits cookies and Authorization headers on
	// cross-origin requests. Incompatible with a literal "*" origin, so in
	// credentialed mode the matched origin is echoed back instead.
	AllowCredentials bool

	// Environment widens origin matching to any origin in "development".
	Environment string
}

// CORS returns middleware that answers preflights and stamps CORS headers on
// actual responses. Origins not in the allow list get no CORS headers at all;
// the request itself still runs, the browser just refuses to expose the result.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	anyOrigin := cfg.Environment == "development"
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			anyOrigin = true
			continue
		}
		allowed[strings.TrimSuffix(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			w.Header().Add("Vary", "Origin")

			match := origin != "" && (anyOrigin || allowed[origin])
			if match {
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				} else if anyOrigin {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if match {
					w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
					w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
					w.Header().Set("Access-Control-Max-Age", corsMaxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
