package middleware

import "net/http"

// DefaultMaxRequestSize caps request bodies at 16 MiB.
const DefaultMaxRequestSize int64 = 16 << 20

// BodyLimit rejects bodies larger than limit. Declared lengths over the limit
// are refused up front; streamed bodies fail on read with *http.MaxBytesError.
func BodyLimit(limit int64, onTooLarge func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxRequestSize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				onTooLarge(w, r, &http.MaxBytesError{Limit: limit})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
