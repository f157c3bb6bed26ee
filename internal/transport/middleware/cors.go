package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var (
	corsAllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsAllowedHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}
)

// CORS allows the configured frontend origins. Credentials are only allowed
// when every origin is named explicitly; a "*" entry opens the API to any
// origin without cookies or auth headers being shared.
func CORS(origins []string) func(http.Handler) http.Handler {
	credentials := true
	for _, o := range origins {
		if o == "*" {
			credentials = false
			break
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   corsAllowedMethods,
		AllowedHeaders:   corsAllowedHeaders,
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: credentials,
		MaxAge:           600,
	})
}
