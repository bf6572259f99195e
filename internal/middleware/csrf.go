package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// AllowedOrigins should match the site's own origin plus CORS allowed origins.
	AllowedOrigins []string
}

// CSRF returns middleware that validates Origin/Referer headers on
// state-changing requests. Session cookies are sent automatically by
// browsers, so form posts from other origins must be rejected.
func CSRF(config CSRFConfig) func(http.Handler) http.Handler {
	allowedSet := make(map[string]bool)
	for _, origin := range config.AllowedOrigins {
		allowedSet[normalizeOrigin(origin)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			logger := GetLogger(r.Context())

			if origin := r.Header.Get("Origin"); origin != "" {
				if !allowedSet[normalizeOrigin(origin)] {
					logger.Warn("CSRF validation failed: invalid origin", "origin", origin)
					http.Error(w, "CSRF validation failed: invalid origin", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if referer := r.Header.Get("Referer"); referer != "" {
				if !allowedSet[normalizeOrigin(extractOrigin(referer))] {
					logger.Warn("CSRF validation failed: invalid referer", "referer", referer)
					http.Error(w, "CSRF validation failed: invalid referer", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("CSRF validation failed: missing origin", "path", r.URL.Path)
			http.Error(w, "CSRF validation failed: missing origin", http.StatusForbidden)
		})
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(origin), "/")
}

// extractOrigin extracts scheme://host[:port] from a URL.
func extractOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
