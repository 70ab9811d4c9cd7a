package http

import "net/http"

// withBodyLimit caps the bytes a handler can read from the request body.
// Reading past limit fails with *http.MaxBytesError. limit <= 0 disables it.
func withBodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
