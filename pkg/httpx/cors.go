package httpx

import (
	"net/http"
	"strings"
)

// CORSConfig describes the cross-origin policy applied to every response.
type CORSConfig struct {
	// AllowedOrigin is echoed in Access-Control-Allow-Origin. "*" allows any origin.
	AllowedOrigin string
	Methods       []string
	Headers       []string
}

// CORS answers preflight requests with 204 and decorates all other responses
// with the configured allow headers.
func CORS(cfg CORSConfig) Middleware {
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{http.MethodPost, http.MethodGet, http.MethodOptions}
	}
	if len(cfg.Headers) == 0 {
		cfg.Headers = []string{"Content-Type", "Authorization"}
	}
	methods := strings.Join(cfg.Methods, ", ")
	headers := strings.Join(cfg.Headers, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", cfg.AllowedOrigin)
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.AllowedOrigin != "*" {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
