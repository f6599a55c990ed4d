package middleware

import (
	"net/http"

	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

// MaxBodyBytes caps request body size; the ceiling is sized for lecture PDF
// uploads. Requests declaring an oversize length are rejected up front,
// chunked ones when the reader trips the limit.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength != -1 && r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, domain.ErrCodeValidation, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
