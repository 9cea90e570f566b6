package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

const defaultFrontendURL = "http://localhost:3000"

// CORS restricts browser access to the dashboard origin.
func CORS(frontendURL string) func(http.Handler) http.Handler {
	origin := strings.TrimRight(strings.TrimSpace(frontendURL), "/")
	if origin == "" {
		origin = defaultFrontendURL
	}
	return cors.New(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
