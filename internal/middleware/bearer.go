package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chomnr/brute-go/internal/apperr"
)

// BearerAuth rejects requests whose Authorization header does not present
// the exact configured token, before any other handling runs — per spec
// §4.1, authorization is checked before validation. Rejections are built
// as an apperr.AuthorizationFailure so the response status stays in sync
// with the rest of the pipeline's error-kind-to-status mapping.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || presented != token {
				writeAuthError(w, apperr.Authorization("invalid or missing bearer token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, err *apperr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Message})
}
