package middleware

import "net/http"

// BodyLimit caps the request body to maxBytes using http.MaxBytesReader,
// per spec §6 (60 KB on ingestion, smaller on decoy endpoints).
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
