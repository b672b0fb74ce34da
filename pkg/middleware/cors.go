package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS restricts browser access to the campaign API and event feed.
// The surface is GET and POST only; authentication lives upstream, so no
// credential or CSRF headers are allowed through.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	return c.Handler
}
