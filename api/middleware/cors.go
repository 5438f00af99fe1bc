package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://tubeboost.io",
	"https://www.tubeboost.io",
	"https://tubeboost.vercel.app",
}

// CORS returns middleware that applies the storefront's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-ID", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
