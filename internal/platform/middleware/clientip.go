package middleware

import (
	"net/http"
	"strings"

	"sentinela/pkg/requestcontext"
)

// ClientIP derives the source address and user agent from transport headers
// and stores them in the request context. Body-supplied values are never
// consulted, which keeps the provenance of security records spoof-resistant.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientIP(r.Context(), clientIP(r))
		ctx = requestcontext.WithUserAgent(ctx, r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP resolves the caller address with the forwarded-for header taking
// precedence, matching the gateway's forwarding contract. Falls back to the
// literal "unknown" so records never carry an empty field.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the original client.
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	return "unknown"
}
