package middleware

import (
	"net/http"
	"path"
	"strings"
)

const (
	apiCSP  = "default-src 'none'; base-uri 'none'; form-action 'none'; frame-ancestors 'none'"
	fileCSP = "default-src 'none'; img-src 'self'; object-src 'self'; frame-ancestors 'none'; sandbox"
)

// inlineFileTypes are stored documents a browser may render in place.
var inlineFileTypes = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
}

// SecureHeaders sets the response headers shared by every route.
func SecureHeaders(isProd bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("X-Frame-Options", "DENY")
			headers.Set("Referrer-Policy", "no-referrer")
			headers.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			headers.Set("Content-Security-Policy", apiCSP)
			headers.Set("Cross-Origin-Opener-Policy", "same-origin")
			headers.Set("Cross-Origin-Resource-Policy", "same-origin")
			if isProd {
				headers.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StoredFileHeaders sandboxes uploaded documents served from the API origin.
// Anything that is not an image or PDF is sent as an opaque download.
func StoredFileHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("Content-Security-Policy", fileCSP)
		headers.Set("Cross-Origin-Resource-Policy", "cross-origin")
		headers.Set("Cache-Control", "private, max-age=3600")
		if !inlineFileTypes[strings.ToLower(path.Ext(r.URL.Path))] {
			headers.Set("Content-Disposition", "attachment")
			headers.Set("Content-Type", "application/octet-stream")
		}
		next.ServeHTTP(w, r)
	})
}
