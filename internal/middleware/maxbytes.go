package middleware

import (
	"net/http"
)

// DefaultMaxBodyBytes is the default maximum request body size (64 KiB).
// Phonebook payloads are a few short strings.
const DefaultMaxBodyBytes = 64 << 10

// MaxBytes limits the body size of POST, PUT and PATCH requests. Once the limit
// is exceeded, reads fail and the JSON decoder in the handler reports a 400.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if r.Body != nil {
					r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
