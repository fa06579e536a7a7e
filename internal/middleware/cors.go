package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// DefaultCORSAllowedMethods is the default set of methods allowed for CORS.
var DefaultCORSAllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

// DefaultCORSAllowedHeaders is the default set of request headers allowed for CORS.
var DefaultCORSAllowedHeaders = []string{"Accept", "Authorization", "Content-Type"}

// CORS returns a middleware that sets CORS response headers and answers preflight
// requests for the given origins. "*" allows any origin; credentials are only
// allowed when origins are listed explicitly. When origins is empty the middleware is a no-op.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   DefaultCORSAllowedMethods,
		AllowedHeaders:   DefaultCORSAllowedHeaders,
		AllowCredentials: !wildcard,
		MaxAge:           86400,
	})
	return c.Handler
}
