package middleware

import (
	"net/http"
	"strings"
)

// BodyLimit caps request bodies at maxBytes, or at multipartBytes for
// multipart uploads.
func BodyLimit(maxBytes, multipartBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				limit := maxBytes
				if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/") {
					limit = multipartBytes
				}
				if limit > 0 {
					r.Body = http.MaxBytesReader(w, r.Body, limit)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
